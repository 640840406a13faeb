package wavetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSineTableRange(t *testing.T) {
	table := Table(Sine)
	for _, v := range table {
		assert.LessOrEqual(t, v, float32(1.0))
		assert.GreaterOrEqual(t, v, float32(-1.0))
	}
}

func TestSquareTableAmplitude(t *testing.T) {
	assert.Equal(t, float32(0.5), Lookup(Square, 0))
	assert.Equal(t, float32(-0.5), Lookup(Square, Size/2))
}

func TestSawTableRamp(t *testing.T) {
	assert.InDelta(t, -1.0, Lookup(Saw, 0), 1e-6)
	assert.InDelta(t, 1.0, Lookup(Saw, Size-1), 1.0/float64(Size)+1e-3)
}

func TestTriangleTableSymmetry(t *testing.T) {
	quarter := Lookup(Triangle, Size/4)
	assert.InDelta(t, 1.0, quarter, 1e-3)
	threeQuarter := Lookup(Triangle, 3*Size/4)
	assert.InDelta(t, -1.0, threeQuarter, 1e-3)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "sine", Sine.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
