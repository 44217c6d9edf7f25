package export

import (
	"math"

	"tem/model"
)

// DefaultScale quantizes temperatures to 0.01 K.
const DefaultScale = 100

// Encode quantizes phi and stores the first value plus the difference of
// each value to its predecessor. Neighbouring nodes have close temperatures
// so the differences stay small in the JSON payload.
func Encode(phi []float64, scale int) model.EncodedField {
	if scale <= 0 {
		scale = DefaultScale
	}
	enc := model.EncodedField{Scale: scale, Data: make([]int32, len(phi))}
	if len(phi) == 0 {
		return enc
	}
	pre := int32(math.Round(phi[0] * float64(scale)))
	enc.Start = int(pre)
	for i, v := range phi {
		q := int32(math.Round(v * float64(scale)))
		enc.Data[i] = q - pre
		pre = q
	}
	return enc
}

// Decode reverses Encode up to the quantization step.
func Decode(src model.EncodedField) []float64 {
	res := make([]float64, 0, len(src.Data))
	scale := float64(src.Scale)
	if scale <= 0 {
		scale = DefaultScale
	}
	start := src.Start
	for _, d := range src.Data {
		start += int(d)
		res = append(res, float64(start)/scale)
	}
	return res
}
