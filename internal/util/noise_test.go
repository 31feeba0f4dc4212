package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoise_DeterministicAndBounded(t *testing.T) {
	a := NewNoise(42)
	b := NewNoise(42)

	for i := 0; i < 50; i++ {
		x := float64(i) * 0.37
		y := float64(i) * 0.11
		z := float64(i) * 0.73

		v2 := a.At2D(x, y)
		v3 := a.At3D(x, y, z)

		assert.Equal(t, v2, b.At2D(x, y), "Одинаковый сид должен давать одинаковый шум")
		assert.Equal(t, v3, b.At3D(x, y, z))
		assert.GreaterOrEqual(t, v2, 0.0)
		assert.LessOrEqual(t, v2, 1.0)
		assert.GreaterOrEqual(t, v3, 0.0)
		assert.LessOrEqual(t, v3, 1.0)
	}
}
