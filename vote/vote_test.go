package vote

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulate(t *testing.T) {
	tests := []struct {
		name       string
		labels     []int
		weights    []float64
		numClasses int
		expected   []float64
	}{
		{"UniformVotes", []int{0, 0, 1}, []float64{1, 1, 1}, 2, []float64{2, 1}},
		{"WeightedVotes", []int{0, 1, 1}, []float64{2, 0.5, 0.5}, 2, []float64{2, 1}},
		{"RepeatedLabelAccumulates", []int{1, 1, 1}, []float64{1, 1, 1}, 3, []float64{0, 3, 0}},
		{"EmptyNeighborSet", nil, nil, 2, []float64{0, 0}},
		{"UnvotedClassStaysZero", []int{2}, []float64{4}, 3, []float64{0, 0, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Accumulate(tt.labels, tt.weights, tt.numClasses)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPosterior(t *testing.T) {
	t.Run("EmpiricalPriorCancels", func(t *testing.T) {
		// prior[c] = count[c]/n cancels against the count division, so
		// the result is pure vote normalization.
		votes := []float64{2, 1}
		counts := []int{2, 2}
		prior := []float64{0.5, 0.5}

		got := Posterior(votes, counts, prior)
		assert.InDeltaSlice(t, []float64{2.0 / 3.0, 1.0 / 3.0}, got, 1e-9)
	})

	t.Run("ExplicitPriorSkewsResult", func(t *testing.T) {
		// Raw votes {0:2, 1:1}, counts {0:2, 1:2}, prior [0.75, 0.25]:
		// adjusted = {0.75, 0.125} -> normalized ~ {0.857, 0.143}.
		got := Posterior([]float64{2, 1}, []int{2, 2}, []float64{0.75, 0.25})
		assert.InDeltaSlice(t, []float64{6.0 / 7.0, 1.0 / 7.0}, got, 1e-9)
	})

	t.Run("UnevenClassCounts", func(t *testing.T) {
		// Votes divided by class size before normalization.
		got := Posterior([]float64{3, 1}, []int{3, 1}, []float64{0.5, 0.5})
		assert.InDeltaSlice(t, []float64{0.5, 0.5}, got, 1e-9)
	})

	t.Run("RowSumsToOne", func(t *testing.T) {
		got := Posterior([]float64{1.5, 0.25, 4}, []int{10, 2, 7}, []float64{0.2, 0.5, 0.3})
		var sum float64
		for _, p := range got {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	})

	t.Run("ZeroVotesPropagateNaN", func(t *testing.T) {
		got := Posterior([]float64{0, 0}, []int{2, 2}, []float64{0.5, 0.5})
		for _, p := range got {
			assert.True(t, math.IsNaN(p))
		}
	})
}

func TestArgMax(t *testing.T) {
	tests := []struct {
		name     string
		row      []float64
		expected int
	}{
		{"Simple", []float64{0.1, 0.7, 0.2}, 1},
		{"First", []float64{0.9, 0.05, 0.05}, 0},
		{"TieBreaksLow", []float64{0.5, 0.5}, 0},
		{"ThreeWayTie", []float64{0.2, 0.4, 0.4}, 1},
		{"SingleClass", []float64{1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ArgMax(tt.row))
		})
	}
}

func TestArgMaxDeterministicOnTies(t *testing.T) {
	row := []float64{0.25, 0.25, 0.25, 0.25}
	for range 100 {
		assert.Equal(t, 0, ArgMax(row))
	}
}
