package knngo

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knngo/codec"
	"github.com/hupe1980/knngo/modelstore"
	"github.com/hupe1980/knngo/weight"
)

func TestSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("KNNRoundtrip", func(t *testing.T) {
		clf := fitKNN(t, KNN(3).WeightsByName(weight.NameDistance))

		var buf bytes.Buffer
		require.NoError(t, clf.SaveToWriter(&buf))

		loaded, err := LoadKNNFromReader(&buf)
		require.NoError(t, err)

		assert.Equal(t, 3, loaded.K())
		assert.Equal(t, clf.Classes(), loaded.Classes())

		queries := [][]float64{{0.4}, {1.3}, {2.2}}

		want, err := clf.PredictProba(ctx, queries)
		require.NoError(t, err)

		got, err := loaded.PredictProba(ctx, queries)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("KNNRoundtripZstd", func(t *testing.T) {
		clf := fitKNN(t, KNN(3).Compression(codec.Zstd{}))

		var buf bytes.Buffer
		require.NoError(t, clf.SaveToWriter(&buf))

		loaded, err := LoadKNNFromReader(&buf)
		require.NoError(t, err)
		assert.Equal(t, "zstd", loaded.base.compression.Name())

		labels, err := loaded.Predict(ctx, [][]float64{{1.1}})
		require.NoError(t, err)
		assert.Equal(t, []int{0}, labels)
	})

	t.Run("RadiusRoundtripViaStore", func(t *testing.T) {
		store := modelstore.NewMemory()

		clf := fitRadius(t, Radius(1.0).
			OutlierLabel(-1).
			ExplicitPrior([]float64{0.2, 0.8}).
			Compression(codec.LZ4{}))

		require.NoError(t, clf.Save(ctx, store, "radius-model"))

		loaded, err := LoadRadius(ctx, store, "radius-model")
		require.NoError(t, err)

		assert.Equal(t, 1.0, loaded.RadiusValue())
		require.NotNil(t, loaded.outlierLabel)
		assert.Equal(t, -1, *loaded.outlierLabel)

		labels, err := loaded.Predict(ctx, [][]float64{{1.5}, {10.0}})
		require.NoError(t, err)
		assert.Equal(t, []int{1, -1}, labels)
	})

	t.Run("FileRoundtrip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.knng")

		clf := fitKNN(t, KNN(3))
		require.NoError(t, clf.SaveToFile(path))

		loaded, err := LoadKNNFromFile(path)
		require.NoError(t, err)

		labels, err := loaded.Predict(ctx, [][]float64{{0.9}})
		require.NoError(t, err)
		assert.Equal(t, []int{0}, labels)
	})

	t.Run("CustomWeightsNotSerializable", func(t *testing.T) {
		clf := fitKNN(t, KNN(3).Weights(weight.Custom(func(distances []float64) []float64 {
			return nil
		})))

		var buf bytes.Buffer
		require.ErrorIs(t, clf.SaveToWriter(&buf), ErrNotSerializable)
	})

	t.Run("NotFitted", func(t *testing.T) {
		clf, err := KNN(3).Build()
		require.NoError(t, err)

		var buf bytes.Buffer
		require.ErrorIs(t, clf.SaveToWriter(&buf), ErrNotFitted)
	})

	t.Run("KindMismatch", func(t *testing.T) {
		clf := fitKNN(t, KNN(3))

		var buf bytes.Buffer
		require.NoError(t, clf.SaveToWriter(&buf))

		_, err := LoadRadiusFromReader(&buf)
		require.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("BadMagic", func(t *testing.T) {
		_, err := LoadKNNFromReader(bytes.NewReader([]byte("XXXX rest")))
		require.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("MissingFromStore", func(t *testing.T) {
		store := modelstore.NewMemory()

		_, err := LoadKNN(ctx, store, "missing")
		require.ErrorIs(t, err, modelstore.ErrNotFound)
	})
}
