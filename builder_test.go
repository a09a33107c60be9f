package knngo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knngo/neighbors"
	"github.com/hupe1980/knngo/prior"
	"github.com/hupe1980/knngo/weight"
)

func TestKNNBuilder(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		clf, err := KNN(5).Build()
		require.NoError(t, err)

		assert.Equal(t, 5, clf.K())
		assert.Equal(t, weight.NameUniform, clf.base.weights.Name())
		assert.Equal(t, prior.NameDefault, clf.base.prior.Name())
	})

	t.Run("InvalidK", func(t *testing.T) {
		_, err := KNN(0).Build()
		require.ErrorIs(t, err, ErrInvalidK)

		_, err = KNN(-3).Build()
		require.ErrorIs(t, err, ErrInvalidK)
	})

	t.Run("UnknownWeightName", func(t *testing.T) {
		_, err := KNN(3).WeightsByName("bogus").Build()
		require.ErrorIs(t, err, ErrConfiguration)

		var unknown *weight.ErrUnknownName
		require.ErrorAs(t, err, &unknown)
	})

	t.Run("UnknownPriorName", func(t *testing.T) {
		_, err := KNN(3).ClassPriorByName("bogus").Build()
		require.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("NonPositiveExplicitPrior", func(t *testing.T) {
		_, err := KNN(3).ExplicitPrior([]float64{0.5, 0.0}).Build()
		require.ErrorIs(t, err, ErrConfiguration)

		var entry *prior.ErrNonPositiveEntry
		require.ErrorAs(t, err, &entry)
		assert.Equal(t, 1, entry.Index)
	})

	t.Run("Immutable", func(t *testing.T) {
		base := KNN(3)
		withFlat := base.ClassPriorByName("flat")

		clf, err := base.Build()
		require.NoError(t, err)
		assert.Equal(t, prior.NameDefault, clf.base.prior.Name())

		clf, err = withFlat.Build()
		require.NoError(t, err)
		assert.Equal(t, prior.NameFlat, clf.base.prior.Name())
	})

	t.Run("Metric", func(t *testing.T) {
		clf, err := KNN(3).Metric(neighbors.MetricManhattan).Build()
		require.NoError(t, err)

		bf, ok := clf.searcher.(*neighbors.BruteForce)
		require.True(t, ok)
		assert.Equal(t, neighbors.MetricManhattan, bf.Metric())
	})
}

func TestRadiusBuilder(t *testing.T) {
	t.Run("InvalidRadius", func(t *testing.T) {
		_, err := Radius(0).Build()
		require.ErrorIs(t, err, ErrInvalidRadius)

		_, err = Radius(-1.5).Build()
		require.ErrorIs(t, err, ErrInvalidRadius)
	})

	t.Run("UnknownWeightName", func(t *testing.T) {
		_, err := Radius(1.0).WeightsByName("bogus").Build()
		require.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("OutlierLabel", func(t *testing.T) {
		clf, err := Radius(1.0).OutlierLabel(-1).Build()
		require.NoError(t, err)

		require.NotNil(t, clf.outlierLabel)
		assert.Equal(t, -1, *clf.outlierLabel)
	})

	t.Run("NoOutlierLabelByDefault", func(t *testing.T) {
		clf, err := Radius(1.0).Build()
		require.NoError(t, err)
		assert.Nil(t, clf.outlierLabel)
	})
}
