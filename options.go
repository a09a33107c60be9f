package knngo

import (
	"log/slog"

	"github.com/hupe1980/knngo/codec"
)

type options struct {
	logger      *Logger
	metrics     MetricsCollector
	codec       codec.Codec
	compression codec.Compression
}

// Option configures cross-cutting behavior for loaders and classifiers.
type Option func(*options)

// WithLogger sets a custom logger.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogLevel sets the minimum log level and enables text logging to
// stderr. Shorthand for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(o *options) {
		if collector != nil {
			o.metrics = collector
		}
	}
}

// WithCodec sets the codec used for snapshot payloads.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithCompression sets the compression applied to snapshot payloads.
func WithCompression(c codec.Compression) Option {
	return func(o *options) {
		if c != nil {
			o.compression = c
		}
	}
}

func applyOptions(opts ...Option) options {
	o := options{
		logger:      NoopLogger(),
		metrics:     NoopMetricsCollector{},
		codec:       codec.Default,
		compression: codec.None{},
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
