package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHarmonicMean(t *testing.T) {
	assert.InDelta(t, 16.0, harmonicMean(10, 40), 1e-12)
	assert.InDelta(t, 40.0, harmonicMean(40, 40), 1e-12)
	assert.Equal(t, harmonicMean(12, 400), harmonicMean(400, 12))
	assert.Zero(t, harmonicMean(0, 0))
	assert.Zero(t, harmonicMean(0, 400))
}

func TestInterfaceCoefficient(t *testing.T) {
	// 16 W/(m·K) over a 0.3 m face, 0.8 m apart
	assert.InDelta(t, 6.0, interfaceCoefficient(10, 40, 0.3, 0.8), 1e-12)
	assert.Zero(t, interfaceCoefficient(10, 40, 0.3, 0))
}
