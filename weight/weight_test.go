package weight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniform(t *testing.T) {
	tests := []struct {
		name      string
		distances []float64
		expected  []float64
	}{
		{"Simple", []float64{0.5, 1.5, 3.0}, []float64{1, 1, 1}},
		{"WithZero", []float64{0, 2}, []float64{1, 1}},
		{"Empty", []float64{}, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Uniform().Weigh(tt.distances)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestInverseDistance(t *testing.T) {
	tests := []struct {
		name      string
		distances []float64
		expected  []float64
	}{
		{"Simple", []float64{0.5, 2, 4}, []float64{2, 0.5, 0.25}},
		{"SingleZero", []float64{0.1, 0, 0.9}, []float64{0, 1, 0}},
		{"MultipleZeros", []float64{0, 0.5, 0}, []float64{1, 0, 1}},
		{"AllZeros", []float64{0, 0}, []float64{1, 1}},
		{"Empty", []float64{}, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InverseDistance().Weigh(tt.distances)
			assert.InDeltaSlice(t, tt.expected, got, 1e-12)
		})
	}
}

func TestInverseDistanceDoesNotMutateInput(t *testing.T) {
	distances := []float64{0.5, 0, 2}
	_ = InverseDistance().Weigh(distances)
	assert.Equal(t, []float64{0.5, 0, 2}, distances)
}

func TestCustom(t *testing.T) {
	t.Run("UserFunction", func(t *testing.T) {
		fn := Custom(func(distances []float64) []float64 {
			w := make([]float64, len(distances))
			for i, d := range distances {
				w[i] = d * 2
			}
			return w
		})
		assert.Equal(t, []float64{2, 4}, fn.Weigh([]float64{1, 2}))
		assert.Equal(t, NameCustom, fn.Name())
	})

	t.Run("NilFunctionFallsBackToUniform", func(t *testing.T) {
		fn := Custom(nil)
		assert.Equal(t, []float64{1, 1, 1}, fn.Weigh([]float64{1, 2, 3}))
	})

	t.Run("NilReturnFallsBackToUniform", func(t *testing.T) {
		fn := Custom(func([]float64) []float64 { return nil })
		assert.Equal(t, []float64{1, 1}, fn.Weigh([]float64{4, 5}))
	})
}

func TestByName(t *testing.T) {
	t.Run("Uniform", func(t *testing.T) {
		fn, err := ByName("uniform")
		require.NoError(t, err)
		assert.Equal(t, NameUniform, fn.Name())
	})

	t.Run("Distance", func(t *testing.T) {
		fn, err := ByName("distance")
		require.NoError(t, err)
		assert.Equal(t, NameDistance, fn.Name())
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := ByName("gaussian")
		require.Error(t, err)

		var unknown *ErrUnknownName
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "gaussian", unknown.Name)
	})
}
