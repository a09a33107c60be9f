// Package neighbors defines the search collaborator contract consumed
// by the classifiers and provides an exact brute-force implementation.
//
// The classifiers only consume query results: distances plus training
// row indices. Any index structure (k-d tree, ball tree, HNSW, a remote
// service) can serve as the collaborator by implementing KNNSearcher or
// RadiusSearcher.
package neighbors

import "context"

// KNNSearcher answers fixed-size nearest neighbor queries.
type KNNSearcher interface {
	// KNeighbors returns, for every query point, the distances to its k
	// nearest training rows and the matching row indices, both n x k.
	// Distances are non-negative; indices reference positions in the
	// training set.
	KNeighbors(ctx context.Context, queries [][]float64, k int) (distances [][]float64, indices [][]int, err error)
}

// RadiusSearcher answers radius-bounded neighbor queries.
type RadiusSearcher interface {
	// RadiusNeighbors returns, for every query point, the distances to
	// all training rows within radius and the matching row indices.
	// Rows are ragged and may be empty.
	RadiusNeighbors(ctx context.Context, queries [][]float64, radius float64) (distances [][]float64, indices [][]int, err error)
}

// Trainable is an optional interface for searchers that own the
// training vectors. The classifiers call Train during Fit.
type Trainable interface {
	Train(ctx context.Context, vectors [][]float64) error
}

// Snapshotter is an optional interface for searchers whose fitted state
// can be captured in a model snapshot.
type Snapshotter interface {
	// SnapshotVectors returns the fitted training vectors. The caller
	// must not mutate the result.
	SnapshotVectors() [][]float64
}
