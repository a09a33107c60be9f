package neighbors

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Compile-time checks to ensure BruteForce satisfies the collaborator
// contract.
var _ KNNSearcher = (*BruteForce)(nil)
var _ RadiusSearcher = (*BruteForce)(nil)
var _ Trainable = (*BruteForce)(nil)
var _ Snapshotter = (*BruteForce)(nil)

var (
	// ErrNotTrained is returned when a query runs before Train.
	ErrNotTrained = errors.New("searcher has no training vectors")

	// ErrInvalidK is returned when k is not positive or exceeds the
	// training set size.
	ErrInvalidK = errors.New("k must be positive and at most the training set size")

	// ErrInvalidRadius is returned when the query radius is negative.
	ErrInvalidRadius = errors.New("radius must be non-negative")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	// MetricSquaredL2 is the squared Euclidean distance. It is the
	// default: neighbor ranking is identical to Euclidean while
	// avoiding the square root.
	MetricSquaredL2 Metric = iota
	// MetricEuclidean is the Euclidean (Minkowski p=2) distance.
	MetricEuclidean
	// MetricManhattan is the Manhattan (Minkowski p=1) distance.
	MetricManhattan
)

func (m Metric) String() string {
	switch m {
	case MetricSquaredL2:
		return "SquaredL2"
	case MetricEuclidean:
		return "Euclidean"
	case MetricManhattan:
		return "Manhattan"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// MetricByName returns a metric by its stable name.
func MetricByName(name string) (Metric, bool) {
	switch name {
	case "SquaredL2":
		return MetricSquaredL2, true
	case "Euclidean":
		return MetricEuclidean, true
	case "Manhattan":
		return MetricManhattan, true
	default:
		return 0, false
	}
}

// DistanceFunc is a function type for distance calculation.
type DistanceFunc func(a, b []float64) float64

// SquaredL2 calculates the squared L2 (Euclidean) distance between two
// vectors. Assumes vectors are the same length (caller's
// responsibility).
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Euclidean calculates the L2 distance between two vectors.
func Euclidean(a, b []float64) float64 {
	return math.Sqrt(SquaredL2(a, b))
}

// Manhattan calculates the L1 distance between two vectors.
func Manhattan(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// Provider returns the distance function for the given metric.
func Provider(m Metric) (DistanceFunc, error) {
	switch m {
	case MetricSquaredL2:
		return SquaredL2, nil
	case MetricEuclidean:
		return Euclidean, nil
	case MetricManhattan:
		return Manhattan, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// BruteForceOptions contains configuration options for the brute-force
// searcher.
type BruteForceOptions struct {
	// Metric selects the distance function used for ranking.
	Metric Metric
}

// DefaultBruteForceOptions contains the default configuration options
// for the brute-force searcher.
var DefaultBruteForceOptions = BruteForceOptions{
	Metric: MetricSquaredL2,
}

// BruteForce is an exact searcher that compares every query against
// every training vector. It answers both fixed-k and radius queries
// with 100% recall and is the default collaborator for the
// classifiers.
//
// Training vectors are immutable after Train, so concurrent queries
// need no locking.
type BruteForce struct {
	opts    BruteForceOptions
	dist    DistanceFunc
	vectors [][]float64
	dim     int
}

// NewBruteForce creates a new brute-force searcher.
func NewBruteForce(optFns ...func(o *BruteForceOptions)) (*BruteForce, error) {
	opts := DefaultBruteForceOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	dist, err := Provider(opts.Metric)
	if err != nil {
		return nil, err
	}

	return &BruteForce{
		opts: opts,
		dist: dist,
	}, nil
}

// Metric returns the configured distance metric.
func (b *BruteForce) Metric() Metric { return b.opts.Metric }

// Train stores the training vectors. All vectors must share the same
// dimension.
func (b *BruteForce) Train(_ context.Context, vectors [][]float64) error {
	if len(vectors) == 0 {
		return ErrNotTrained
	}

	dim := len(vectors[0])
	for _, v := range vectors {
		if len(v) != dim {
			return &ErrDimensionMismatch{Expected: dim, Actual: len(v)}
		}
	}

	b.vectors = vectors
	b.dim = dim
	return nil
}

// SnapshotVectors implements Snapshotter.
func (b *BruteForce) SnapshotVectors() [][]float64 { return b.vectors }

// KNeighbors implements KNNSearcher. Neighbors are returned in
// ascending distance order; equidistant neighbors rank by ascending
// training row, so results are deterministic.
func (b *BruteForce) KNeighbors(ctx context.Context, queries [][]float64, k int) ([][]float64, [][]int, error) {
	if len(b.vectors) == 0 {
		return nil, nil, ErrNotTrained
	}
	if k < 1 || k > len(b.vectors) {
		return nil, nil, fmt.Errorf("%w: k=%d, n=%d", ErrInvalidK, k, len(b.vectors))
	}

	distances := make([][]float64, len(queries))
	indices := make([][]int, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, query := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(query) != b.dim {
				return &ErrDimensionMismatch{Expected: b.dim, Actual: len(query)}
			}

			all := make([]float64, len(b.vectors))
			order := make([]int, len(b.vectors))
			for j, v := range b.vectors {
				all[j] = b.dist(query, v)
				order[j] = j
			}
			sort.SliceStable(order, func(x, y int) bool {
				return all[order[x]] < all[order[y]]
			})

			dist := make([]float64, k)
			ind := make([]int, k)
			for j := range k {
				ind[j] = order[j]
				dist[j] = all[order[j]]
			}
			distances[i] = dist
			indices[i] = ind
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return distances, indices, nil
}

// RadiusNeighbors implements RadiusSearcher. Rows are ragged: each
// query yields every training row within radius (inclusive), in
// ascending training row order. A query with no neighbors yields an
// empty row.
func (b *BruteForce) RadiusNeighbors(ctx context.Context, queries [][]float64, radius float64) ([][]float64, [][]int, error) {
	if len(b.vectors) == 0 {
		return nil, nil, ErrNotTrained
	}
	if radius < 0 {
		return nil, nil, fmt.Errorf("%w: radius=%v", ErrInvalidRadius, radius)
	}

	// Radius is expressed in the configured metric's units, so the
	// threshold for squared L2 is radius^2 to keep the caller-facing
	// radius in Euclidean units.
	threshold := radius
	if b.opts.Metric == MetricSquaredL2 {
		threshold = radius * radius
	}

	distances := make([][]float64, len(queries))
	indices := make([][]int, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, query := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(query) != b.dim {
				return &ErrDimensionMismatch{Expected: b.dim, Actual: len(query)}
			}

			dist := make([]float64, 0)
			ind := make([]int, 0)
			for j, v := range b.vectors {
				if d := b.dist(query, v); d <= threshold {
					dist = append(dist, d)
					ind = append(ind, j)
				}
			}
			distances[i] = dist
			indices[i] = ind
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return distances, indices, nil
}
