package calculator

// 等效导热系数
// harmonicMean is the interface conductivity between two materials whose
// nodes sit at equal distance from the interface.
func harmonicMean(k1, k2 float64) float64 {
	if k1+k2 == 0 {
		return 0
	}
	return 2 * k1 * k2 / (k1 + k2)
}

// interfaceCoefficient is k_eff·face/spacing.
func interfaceCoefficient(gamma, neighbor, face, spacing float64) float64 {
	if spacing <= 0 {
		return 0
	}
	return harmonicMean(gamma, neighbor) * face / spacing
}
