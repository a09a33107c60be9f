package knngo

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/knngo/neighbors"
	"github.com/hupe1980/knngo/vote"
)

// RadiusClassifier predicts class labels from all training samples
// within a fixed distance of each query point. Create it with
// Radius(r).Build().
//
// Neighborhood sizes vary per query and may be zero. A query with zero
// neighbors is an outlier: without a configured outlier label, any
// outlier fails the whole predict call; with one, outlier rows are
// filled with that label and never enter the voting pipeline.
//
// After Fit, the classifier is safe for concurrent Predict calls.
type RadiusClassifier struct {
	base         *base
	radius       float64
	searcher     neighbors.RadiusSearcher
	outlierLabel *int
}

// RadiusValue returns the configured radius.
func (c *RadiusClassifier) RadiusValue() float64 { return c.radius }

// Classes returns the distinct class labels seen at fit time, sorted
// ascending. Returns nil before Fit.
func (c *RadiusClassifier) Classes() []int {
	if !c.base.fitted() {
		return nil
	}

	return c.base.labels.Classes()
}

// Fit stores the training labels and trains the searcher when it
// supports training. vectors and y must have the same length.
func (c *RadiusClassifier) Fit(ctx context.Context, vectors [][]float64, y []int) error {
	start := time.Now()

	err := c.base.fit(ctx, c.searcher, vectors, y)

	c.base.metrics.RecordFit(time.Since(start), err)
	c.base.logger.WithRadius(c.radius).LogFit(ctx, len(y), numClassesOf(c.base), err)

	return err
}

// Predict returns the predicted class label for each query point, in
// query order. Ties between classes with equal probability resolve to
// the lower label.
func (c *RadiusClassifier) Predict(ctx context.Context, queries [][]float64) ([]int, error) {
	start := time.Now()

	labels, outliers, err := c.predict(ctx, queries)

	c.base.metrics.RecordPredict(len(queries), time.Since(start), err)
	c.base.logger.WithRadius(c.radius).LogPredict(ctx, len(queries), outliers, err)

	return labels, err
}

func (c *RadiusClassifier) predict(ctx context.Context, queries [][]float64) ([]int, int, error) {
	if !c.base.fitted() {
		return nil, 0, ErrNotFitted
	}

	distances, indices, err := c.searcher.RadiusNeighbors(ctx, queries, c.radius)
	if err != nil {
		return nil, 0, err
	}

	// Outliers are detected before any row is computed, so a missing
	// outlier label aborts the call without partial results.
	outliers := 0

	for i := range indices {
		if len(indices[i]) == 0 {
			if c.outlierLabel == nil {
				return nil, 0, &ErrNoNeighbors{Row: i}
			}

			outliers++
		}
	}

	counts, pri, err := c.base.batchPrior()
	if err != nil {
		return nil, 0, err
	}

	labels := make([]int, len(queries))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range queries {
		if len(indices[i]) == 0 {
			labels[i] = *c.outlierLabel
			continue
		}

		g.Go(func() error {
			row := c.base.rowPosterior(distances[i], indices[i], counts, pri)
			labels[i] = c.base.labels.Class(vote.ArgMax(row))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return labels, outliers, nil
}
