package knngo

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/knngo/codec"
	"github.com/hupe1980/knngo/labelset"
	"github.com/hupe1980/knngo/neighbors"
	"github.com/hupe1980/knngo/prior"
	"github.com/hupe1980/knngo/vote"
	"github.com/hupe1980/knngo/weight"
)

// base carries the configuration and fitted state shared by both
// classifier modes. The label set is written once by Fit and read-only
// afterwards, so concurrent predict calls need no locking.
type base struct {
	weights     weight.Function
	prior       prior.Policy
	brute       *neighbors.BruteForce
	logger      *Logger
	metrics     MetricsCollector
	codec       codec.Codec
	compression codec.Compression

	labels *labelset.Set
}

func (b *base) fit(ctx context.Context, searcher any, vectors [][]float64, y []int) error {
	if len(vectors) != len(y) {
		return translateError(&ErrSampleCountMismatch{
			Vectors: len(vectors),
			Labels:  len(y),
		})
	}

	if len(y) == 0 {
		return fmt.Errorf("%w: empty training set", ErrConfiguration)
	}

	if t, ok := searcher.(neighbors.Trainable); ok {
		if err := t.Train(ctx, vectors); err != nil {
			return err
		}
	}

	labels := labelset.New(y)

	// The class count is only known now, so an explicit prior of the
	// wrong length fails here rather than at the first predict.
	if _, err := b.prior.Prior(labels.Counts(), labels.NumTrain()); err != nil {
		return translateError(err)
	}

	b.labels = labels

	return nil
}

func (b *base) fitted() bool { return b.labels != nil }

// batchPrior hoists the class counts and prior vector once per predict
// batch, so every row sees a consistent correction.
func (b *base) batchPrior() ([]int, []float64, error) {
	counts := b.labels.Counts()

	pri, err := b.prior.Prior(counts, b.labels.NumTrain())
	if err != nil {
		return nil, nil, translateError(err)
	}

	return counts, pri, nil
}

// rowPosterior runs one query row through the weigh, accumulate and
// posterior steps. All buffers are call-local.
func (b *base) rowPosterior(distances []float64, indices []int, counts []int, pri []float64) []float64 {
	weights := b.weights.Weigh(distances)

	encoded := make([]int, len(indices))
	for j, idx := range indices {
		encoded[j] = b.labels.Encoded(idx)
	}

	votes := vote.Accumulate(encoded, weights, b.labels.NumClasses())

	return vote.Posterior(votes, counts, pri)
}

// =============================================================================
// Fixed-K Classifier
// =============================================================================

// KNNClassifier predicts class labels from the k nearest training
// samples. Create it with KNN(k).Build().
//
// After Fit, the classifier is safe for concurrent Predict and
// PredictProba calls.
type KNNClassifier struct {
	base     *base
	k        int
	searcher neighbors.KNNSearcher
}

// K returns the configured neighbor count.
func (c *KNNClassifier) K() int { return c.k }

// Classes returns the distinct class labels seen at fit time, sorted
// ascending. Returns nil before Fit.
func (c *KNNClassifier) Classes() []int {
	if !c.base.fitted() {
		return nil
	}

	return c.base.labels.Classes()
}

// Fit stores the training labels and trains the searcher when it
// supports training. vectors and y must have the same length.
func (c *KNNClassifier) Fit(ctx context.Context, vectors [][]float64, y []int) error {
	start := time.Now()

	err := c.base.fit(ctx, c.searcher, vectors, y)

	c.base.metrics.RecordFit(time.Since(start), err)
	c.base.logger.WithK(c.k).LogFit(ctx, len(y), numClassesOf(c.base), err)

	return err
}

// PredictProba returns class membership probabilities for each query
// point. The result has one row per query and one column per class, in
// ascending class order; every row sums to 1.
//
// A row where all neighbor weights are zero yields NaN entries. That
// can only happen with a custom weight function returning zeros and is
// deliberately not masked.
func (c *KNNClassifier) PredictProba(ctx context.Context, queries [][]float64) ([][]float64, error) {
	start := time.Now()

	proba, err := c.predictProba(ctx, queries)

	c.base.metrics.RecordPredictProba(len(queries), time.Since(start), err)
	c.base.logger.WithK(c.k).LogPredictProba(ctx, len(queries), err)

	return proba, err
}

func (c *KNNClassifier) predictProba(ctx context.Context, queries [][]float64) ([][]float64, error) {
	if !c.base.fitted() {
		return nil, ErrNotFitted
	}

	distances, indices, err := c.searcher.KNeighbors(ctx, queries, c.k)
	if err != nil {
		return nil, err
	}

	counts, pri, err := c.base.batchPrior()
	if err != nil {
		return nil, err
	}

	proba := make([][]float64, len(queries))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range queries {
		g.Go(func() error {
			proba[i] = c.base.rowPosterior(distances[i], indices[i], counts, pri)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return proba, nil
}

// Predict returns the predicted class label for each query point. Ties
// between classes with equal probability resolve to the lower label.
func (c *KNNClassifier) Predict(ctx context.Context, queries [][]float64) ([]int, error) {
	start := time.Now()

	labels, err := c.predict(ctx, queries)

	c.base.metrics.RecordPredict(len(queries), time.Since(start), err)
	c.base.logger.WithK(c.k).LogPredict(ctx, len(queries), 0, err)

	return labels, err
}

func (c *KNNClassifier) predict(ctx context.Context, queries [][]float64) ([]int, error) {
	proba, err := c.predictProba(ctx, queries)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(proba))
	for i, row := range proba {
		labels[i] = c.base.labels.Class(vote.ArgMax(row))
	}

	return labels, nil
}

func numClassesOf(b *base) int {
	if b.labels == nil {
		return 0
	}

	return b.labels.NumClasses()
}
