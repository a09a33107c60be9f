// Package knngo provides nearest-neighbor classification with weighted
// voting and class-prior reweighting.
//
// This file implements the fluent builder APIs for creating and
// configuring classifiers. Builders are immutable - each method returns
// a new builder with the updated configuration.
package knngo

import (
	"github.com/hupe1980/knngo/codec"
	"github.com/hupe1980/knngo/neighbors"
	"github.com/hupe1980/knngo/prior"
	"github.com/hupe1980/knngo/weight"
)

// =============================================================================
// Fixed-K Builder (Immutable)
// =============================================================================

// KNN creates a new fixed-k classifier builder. Each prediction is based
// on the k nearest training samples.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration.
//
// Example:
//
//	clf, err := knngo.KNN(5).
//	    WeightsByName("distance").
//	    ClassPriorByName("flat").
//	    Build()
func KNN(k int) KNNBuilder {
	return KNNBuilder{
		k: k,
	}
}

// KNNBuilder is an immutable fluent builder for creating fixed-k
// classifiers. Each method returns a new builder with the updated
// configuration.
type KNNBuilder struct {
	k             int
	weights       weight.Function
	weightsName   string
	priorPolicy   prior.Policy
	priorName     string
	explicitPrior []float64
	searcher      neighbors.KNNSearcher
	metric        neighbors.Metric
	metricSet     bool
	logger        *Logger
	metrics       MetricsCollector
	codec         codec.Codec
	compression   codec.Compression
}

// Weights sets the neighbor weighting function.
// Default: uniform.
func (b KNNBuilder) Weights(fn weight.Function) KNNBuilder {
	b.weights = fn
	b.weightsName = ""
	return b
}

// WeightsByName resolves the weighting function by name: "uniform" or
// "distance". Unknown names fail at Build time.
func (b KNNBuilder) WeightsByName(name string) KNNBuilder {
	b.weights = nil
	b.weightsName = name
	return b
}

// ClassPrior sets the class prior policy.
// Default: empirical class frequencies of the training set.
func (b KNNBuilder) ClassPrior(p prior.Policy) KNNBuilder {
	b.priorPolicy = p
	b.priorName = ""
	b.explicitPrior = nil
	return b
}

// ClassPriorByName resolves the prior policy by name: "default" or
// "flat". Unknown names fail at Build time.
func (b KNNBuilder) ClassPriorByName(name string) KNNBuilder {
	b.priorPolicy = nil
	b.priorName = name
	b.explicitPrior = nil
	return b
}

// ExplicitPrior sets a user-supplied prior vector, one entry per class
// in ascending label order. Entries must be positive; the vector need
// not sum to one. Non-positive entries fail at Build time, a length
// mismatch fails at predict time once the class count is known.
func (b KNNBuilder) ExplicitPrior(vector []float64) KNNBuilder {
	b.priorPolicy = nil
	b.priorName = ""
	b.explicitPrior = vector
	return b
}

// Searcher sets a custom neighbor searcher. Use this to plug in an
// approximate index in place of the exact default.
func (b KNNBuilder) Searcher(s neighbors.KNNSearcher) KNNBuilder {
	b.searcher = s
	return b
}

// Metric sets the distance metric of the default brute-force searcher.
// Ignored when a custom searcher is set.
func (b KNNBuilder) Metric(m neighbors.Metric) KNNBuilder {
	b.metric = m
	b.metricSet = true
	return b
}

// Logger sets a custom logger.
func (b KNNBuilder) Logger(logger *Logger) KNNBuilder {
	b.logger = logger
	return b
}

// Metrics sets a custom metrics collector.
func (b KNNBuilder) Metrics(collector MetricsCollector) KNNBuilder {
	b.metrics = collector
	return b
}

// Codec sets the codec used for snapshot payloads.
func (b KNNBuilder) Codec(c codec.Codec) KNNBuilder {
	b.codec = c
	return b
}

// Compression sets the compression applied to snapshot payloads.
func (b KNNBuilder) Compression(c codec.Compression) KNNBuilder {
	b.compression = c
	return b
}

// Build validates the configuration and creates the classifier.
func (b KNNBuilder) Build() (*KNNClassifier, error) {
	if b.k < 1 {
		return nil, ErrInvalidK
	}

	base, err := buildBase(baseConfig{
		weights:       b.weights,
		weightsName:   b.weightsName,
		priorPolicy:   b.priorPolicy,
		priorName:     b.priorName,
		explicitPrior: b.explicitPrior,
		metric:        b.metric,
		metricSet:     b.metricSet,
		needsSearcher: b.searcher == nil,
		logger:        b.logger,
		metrics:       b.metrics,
		codec:         b.codec,
		compression:   b.compression,
	})
	if err != nil {
		return nil, err
	}

	searcher := b.searcher
	if searcher == nil {
		searcher = base.brute
	}

	return &KNNClassifier{
		base:     base,
		k:        b.k,
		searcher: searcher,
	}, nil
}

// =============================================================================
// Radius Builder (Immutable)
// =============================================================================

// Radius creates a new radius classifier builder. Each prediction is
// based on all training samples within the given distance.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration.
//
// Example:
//
//	clf, err := knngo.Radius(1.0).
//	    WeightsByName("distance").
//	    OutlierLabel(-1).
//	    Build()
func Radius(radius float64) RadiusBuilder {
	return RadiusBuilder{
		radius: radius,
	}
}

// RadiusBuilder is an immutable fluent builder for creating radius
// classifiers. Each method returns a new builder with the updated
// configuration.
type RadiusBuilder struct {
	radius        float64
	weights       weight.Function
	weightsName   string
	priorPolicy   prior.Policy
	priorName     string
	explicitPrior []float64
	searcher      neighbors.RadiusSearcher
	metric        neighbors.Metric
	metricSet     bool
	outlierLabel  *int
	logger        *Logger
	metrics       MetricsCollector
	codec         codec.Codec
	compression   codec.Compression
}

// Weights sets the neighbor weighting function.
// Default: uniform.
func (b RadiusBuilder) Weights(fn weight.Function) RadiusBuilder {
	b.weights = fn
	b.weightsName = ""
	return b
}

// WeightsByName resolves the weighting function by name: "uniform" or
// "distance". Unknown names fail at Build time.
func (b RadiusBuilder) WeightsByName(name string) RadiusBuilder {
	b.weights = nil
	b.weightsName = name
	return b
}

// ClassPrior sets the class prior policy.
// Default: empirical class frequencies of the training set.
func (b RadiusBuilder) ClassPrior(p prior.Policy) RadiusBuilder {
	b.priorPolicy = p
	b.priorName = ""
	b.explicitPrior = nil
	return b
}

// ClassPriorByName resolves the prior policy by name: "default" or
// "flat". Unknown names fail at Build time.
func (b RadiusBuilder) ClassPriorByName(name string) RadiusBuilder {
	b.priorPolicy = nil
	b.priorName = name
	b.explicitPrior = nil
	return b
}

// ExplicitPrior sets a user-supplied prior vector, one entry per class
// in ascending label order.
func (b RadiusBuilder) ExplicitPrior(vector []float64) RadiusBuilder {
	b.priorPolicy = nil
	b.priorName = ""
	b.explicitPrior = vector
	return b
}

// Searcher sets a custom neighbor searcher.
func (b RadiusBuilder) Searcher(s neighbors.RadiusSearcher) RadiusBuilder {
	b.searcher = s
	return b
}

// Metric sets the distance metric of the default brute-force searcher.
// Ignored when a custom searcher is set.
func (b RadiusBuilder) Metric(m neighbors.Metric) RadiusBuilder {
	b.metric = m
	b.metricSet = true
	return b
}

// OutlierLabel sets the label assigned to query points with no
// neighbors inside the radius. Without it such points make Predict fail
// with ErrNoNeighbors.
func (b RadiusBuilder) OutlierLabel(label int) RadiusBuilder {
	b.outlierLabel = &label
	return b
}

// Logger sets a custom logger.
func (b RadiusBuilder) Logger(logger *Logger) RadiusBuilder {
	b.logger = logger
	return b
}

// Metrics sets a custom metrics collector.
func (b RadiusBuilder) Metrics(collector MetricsCollector) RadiusBuilder {
	b.metrics = collector
	return b
}

// Codec sets the codec used for snapshot payloads.
func (b RadiusBuilder) Codec(c codec.Codec) RadiusBuilder {
	b.codec = c
	return b
}

// Compression sets the compression applied to snapshot payloads.
func (b RadiusBuilder) Compression(c codec.Compression) RadiusBuilder {
	b.compression = c
	return b
}

// Build validates the configuration and creates the classifier.
func (b RadiusBuilder) Build() (*RadiusClassifier, error) {
	if b.radius <= 0 {
		return nil, ErrInvalidRadius
	}

	base, err := buildBase(baseConfig{
		weights:       b.weights,
		weightsName:   b.weightsName,
		priorPolicy:   b.priorPolicy,
		priorName:     b.priorName,
		explicitPrior: b.explicitPrior,
		metric:        b.metric,
		metricSet:     b.metricSet,
		needsSearcher: b.searcher == nil,
		logger:        b.logger,
		metrics:       b.metrics,
		codec:         b.codec,
		compression:   b.compression,
	})
	if err != nil {
		return nil, err
	}

	searcher := b.searcher
	if searcher == nil {
		searcher = base.brute
	}

	return &RadiusClassifier{
		base:         base,
		radius:       b.radius,
		searcher:     searcher,
		outlierLabel: b.outlierLabel,
	}, nil
}

// =============================================================================
// Shared Build Logic
// =============================================================================

type baseConfig struct {
	weights       weight.Function
	weightsName   string
	priorPolicy   prior.Policy
	priorName     string
	explicitPrior []float64
	metric        neighbors.Metric
	metricSet     bool
	needsSearcher bool
	logger        *Logger
	metrics       MetricsCollector
	codec         codec.Codec
	compression   codec.Compression
}

func buildBase(cfg baseConfig) (*base, error) {
	weights := cfg.weights
	if weights == nil {
		name := cfg.weightsName
		if name == "" {
			name = weight.NameUniform
		}

		fn, err := weight.ByName(name)
		if err != nil {
			return nil, translateError(err)
		}

		weights = fn
	}

	priorPolicy := cfg.priorPolicy
	switch {
	case priorPolicy != nil:
	case cfg.explicitPrior != nil:
		p, err := prior.NewExplicit(cfg.explicitPrior)
		if err != nil {
			return nil, translateError(err)
		}

		priorPolicy = p
	default:
		name := cfg.priorName
		if name == "" {
			name = prior.NameDefault
		}

		p, err := prior.ByName(name)
		if err != nil {
			return nil, translateError(err)
		}

		priorPolicy = p
	}

	var brute *neighbors.BruteForce
	if cfg.needsSearcher {
		var err error
		brute, err = neighbors.NewBruteForce(func(o *neighbors.BruteForceOptions) {
			if cfg.metricSet {
				o.Metric = cfg.metric
			}
		})
		if err != nil {
			return nil, translateError(err)
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = NoopLogger()
	}

	metrics := cfg.metrics
	if metrics == nil {
		metrics = MetricsCollector(NoopMetricsCollector{})
	}

	c := cfg.codec
	if c == nil {
		c = codec.Default
	}

	compression := cfg.compression
	if compression == nil {
		compression = codec.None{}
	}

	return &base{
		weights:     weights,
		prior:       priorPolicy,
		brute:       brute,
		logger:      logger,
		metrics:     metrics,
		codec:       c,
		compression: compression,
	}, nil
}
