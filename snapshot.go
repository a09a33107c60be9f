package knngo

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/knngo/codec"
	"github.com/hupe1980/knngo/modelstore"
	"github.com/hupe1980/knngo/neighbors"
	"github.com/hupe1980/knngo/prior"
	"github.com/hupe1980/knngo/weight"
)

// Snapshot container layout: magic, format version, codec name,
// compression name, then the compressed encoded payload to EOF. The
// header is self-describing so loaders need no out-of-band knowledge.
var snapshotMagic = [4]byte{'K', 'N', 'N', 'G'}

const snapshotVersion uint8 = 1

const (
	snapshotKindKNN    = "knn"
	snapshotKindRadius = "radius"
)

// snapshotModel is the serialized form of a fitted classifier.
type snapshotModel struct {
	Kind          string      `json:"kind"`
	K             int         `json:"k,omitempty"`
	Radius        float64     `json:"radius,omitempty"`
	Weights       string      `json:"weights"`
	Prior         string      `json:"prior"`
	ExplicitPrior []float64   `json:"explicit_prior,omitempty"`
	OutlierLabel  *int        `json:"outlier_label,omitempty"`
	Metric        string      `json:"metric"`
	Labels        []int       `json:"labels"`
	Vectors       [][]float64 `json:"vectors"`
}

// =============================================================================
// Save
// =============================================================================

// SaveToWriter serializes the fitted classifier to w.
//
// Returns ErrNotSerializable when the model carries state that cannot
// be restored by name: a custom weight function, or a searcher that
// does not expose its fitted vectors.
func (c *KNNClassifier) SaveToWriter(w io.Writer) error {
	model, err := c.snapshot()
	if err != nil {
		return err
	}

	return writeSnapshot(w, c.base, model)
}

// SaveToFile serializes the fitted classifier to a file. The write is
// not atomic; use a modelstore Local store when that matters.
func (c *KNNClassifier) SaveToFile(path string) error {
	return saveToFile(path, c.SaveToWriter)
}

// Save serializes the fitted classifier into the store under name.
func (c *KNNClassifier) Save(ctx context.Context, store modelstore.Store, name string) error {
	err := saveToStore(ctx, store, name, c.SaveToWriter)

	c.base.logger.LogSnapshot(ctx, name, err)

	return err
}

func (c *KNNClassifier) snapshot() (*snapshotModel, error) {
	if !c.base.fitted() {
		return nil, ErrNotFitted
	}

	model, err := c.base.snapshot(c.searcher)
	if err != nil {
		return nil, err
	}

	model.Kind = snapshotKindKNN
	model.K = c.k

	return model, nil
}

// SaveToWriter serializes the fitted classifier to w.
//
// Returns ErrNotSerializable when the model carries state that cannot
// be restored by name: a custom weight function, or a searcher that
// does not expose its fitted vectors.
func (c *RadiusClassifier) SaveToWriter(w io.Writer) error {
	model, err := c.snapshot()
	if err != nil {
		return err
	}

	return writeSnapshot(w, c.base, model)
}

// SaveToFile serializes the fitted classifier to a file.
func (c *RadiusClassifier) SaveToFile(path string) error {
	return saveToFile(path, c.SaveToWriter)
}

// Save serializes the fitted classifier into the store under name.
func (c *RadiusClassifier) Save(ctx context.Context, store modelstore.Store, name string) error {
	err := saveToStore(ctx, store, name, c.SaveToWriter)

	c.base.logger.LogSnapshot(ctx, name, err)

	return err
}

func (c *RadiusClassifier) snapshot() (*snapshotModel, error) {
	if !c.base.fitted() {
		return nil, ErrNotFitted
	}

	model, err := c.base.snapshot(c.searcher)
	if err != nil {
		return nil, err
	}

	model.Kind = snapshotKindRadius
	model.Radius = c.radius
	model.OutlierLabel = c.outlierLabel

	return model, nil
}

func (b *base) snapshot(searcher any) (*snapshotModel, error) {
	if b.weights.Name() == weight.NameCustom {
		return nil, fmt.Errorf("%w: custom weight function", ErrNotSerializable)
	}

	snap, ok := searcher.(neighbors.Snapshotter)
	if !ok {
		return nil, fmt.Errorf("%w: searcher does not expose fitted vectors", ErrNotSerializable)
	}

	model := &snapshotModel{
		Weights: b.weights.Name(),
		Prior:   b.prior.Name(),
		Metric:  neighbors.MetricSquaredL2.String(),
		Labels:  b.labels.Labels(),
		Vectors: snap.SnapshotVectors(),
	}

	if explicit, ok := b.prior.(*prior.Explicit); ok {
		model.ExplicitPrior = explicit.Vector()
	}

	if bf, ok := searcher.(*neighbors.BruteForce); ok {
		model.Metric = bf.Metric().String()
	}

	return model, nil
}

func writeSnapshot(w io.Writer, b *base, model *snapshotModel) error {
	payload, err := b.codec.Marshal(model)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	compressed, err := b.compression.Compress(payload)
	if err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}

	if _, err := w.Write(snapshotMagic[:]); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, snapshotVersion); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	if err := writeString(w, b.codec.Name()); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	if err := writeString(w, b.compression.Name()); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("write snapshot payload: %w", err)
	}

	return nil
}

func writeString(w io.Writer, s string) error {
	if len(s) > 255 {
		return fmt.Errorf("name too long: %d bytes", len(s))
	}

	if err := binary.Write(w, binary.LittleEndian, uint8(len(s))); err != nil {
		return err
	}

	_, err := io.WriteString(w, s)

	return err
}

func saveToFile(path string, save func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}

	if err := save(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func saveToStore(ctx context.Context, store modelstore.Store, name string, save func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := save(&buf); err != nil {
		return err
	}

	return store.Put(ctx, name, buf.Bytes())
}

// =============================================================================
// Load
// =============================================================================

// LoadKNNFromReader restores a fixed-k classifier from a snapshot.
// The restored classifier is fitted and ready to predict.
func LoadKNNFromReader(r io.Reader, opts ...Option) (*KNNClassifier, error) {
	model, o, err := readSnapshot(r, opts...)
	if err != nil {
		return nil, err
	}

	if model.Kind != snapshotKindKNN {
		return nil, fmt.Errorf("%w: snapshot holds a %q model", ErrConfiguration, model.Kind)
	}

	metric, ok := neighbors.MetricByName(model.Metric)
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric %q", ErrConfiguration, model.Metric)
	}

	builder := KNN(model.K).
		WeightsByName(model.Weights).
		Metric(metric).
		Logger(o.logger).
		Metrics(o.metrics).
		Codec(o.codec).
		Compression(o.compression)

	builder, err = knnPrior(builder, model)
	if err != nil {
		return nil, err
	}

	clf, err := builder.Build()
	if err != nil {
		return nil, err
	}

	if err := clf.Fit(context.Background(), model.Vectors, model.Labels); err != nil {
		return nil, err
	}

	return clf, nil
}

// LoadKNNFromFile restores a fixed-k classifier from a snapshot file.
func LoadKNNFromFile(path string, opts ...Option) (*KNNClassifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	return LoadKNNFromReader(f, opts...)
}

// LoadKNN restores a fixed-k classifier from the store.
func LoadKNN(ctx context.Context, store modelstore.Store, name string, opts ...Option) (*KNNClassifier, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	return LoadKNNFromReader(bytes.NewReader(data), opts...)
}

// LoadRadiusFromReader restores a radius classifier from a snapshot.
// The restored classifier is fitted and ready to predict.
func LoadRadiusFromReader(r io.Reader, opts ...Option) (*RadiusClassifier, error) {
	model, o, err := readSnapshot(r, opts...)
	if err != nil {
		return nil, err
	}

	if model.Kind != snapshotKindRadius {
		return nil, fmt.Errorf("%w: snapshot holds a %q model", ErrConfiguration, model.Kind)
	}

	metric, ok := neighbors.MetricByName(model.Metric)
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric %q", ErrConfiguration, model.Metric)
	}

	builder := Radius(model.Radius).
		WeightsByName(model.Weights).
		Metric(metric).
		Logger(o.logger).
		Metrics(o.metrics).
		Codec(o.codec).
		Compression(o.compression)

	if model.OutlierLabel != nil {
		builder = builder.OutlierLabel(*model.OutlierLabel)
	}

	builder, err = radiusPrior(builder, model)
	if err != nil {
		return nil, err
	}

	clf, err := builder.Build()
	if err != nil {
		return nil, err
	}

	if err := clf.Fit(context.Background(), model.Vectors, model.Labels); err != nil {
		return nil, err
	}

	return clf, nil
}

// LoadRadiusFromFile restores a radius classifier from a snapshot file.
func LoadRadiusFromFile(path string, opts ...Option) (*RadiusClassifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	return LoadRadiusFromReader(f, opts...)
}

// LoadRadius restores a radius classifier from the store.
func LoadRadius(ctx context.Context, store modelstore.Store, name string, opts ...Option) (*RadiusClassifier, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	return LoadRadiusFromReader(bytes.NewReader(data), opts...)
}

func knnPrior(builder KNNBuilder, model *snapshotModel) (KNNBuilder, error) {
	switch model.Prior {
	case prior.NameExplicit:
		return builder.ExplicitPrior(model.ExplicitPrior), nil
	case prior.NameDefault, prior.NameFlat:
		return builder.ClassPriorByName(model.Prior), nil
	default:
		return builder, fmt.Errorf("%w: unknown prior %q", ErrConfiguration, model.Prior)
	}
}

func radiusPrior(builder RadiusBuilder, model *snapshotModel) (RadiusBuilder, error) {
	switch model.Prior {
	case prior.NameExplicit:
		return builder.ExplicitPrior(model.ExplicitPrior), nil
	case prior.NameDefault, prior.NameFlat:
		return builder.ClassPriorByName(model.Prior), nil
	default:
		return builder, fmt.Errorf("%w: unknown prior %q", ErrConfiguration, model.Prior)
	}
}

func readSnapshot(r io.Reader, opts ...Option) (*snapshotModel, options, error) {
	o := applyOptions(opts...)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, o, fmt.Errorf("read snapshot header: %w", err)
	}

	if magic != snapshotMagic {
		return nil, o, fmt.Errorf("%w: bad snapshot magic", ErrConfiguration)
	}

	var version uint8
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, o, fmt.Errorf("read snapshot header: %w", err)
	}

	if version != snapshotVersion {
		return nil, o, fmt.Errorf("%w: unsupported snapshot version %d", ErrConfiguration, version)
	}

	codecName, err := readString(r)
	if err != nil {
		return nil, o, fmt.Errorf("read snapshot header: %w", err)
	}

	compressionName, err := readString(r)
	if err != nil {
		return nil, o, fmt.Errorf("read snapshot header: %w", err)
	}

	c, ok := codec.ByName(codecName)
	if !ok {
		return nil, o, fmt.Errorf("%w: unknown codec %q", ErrConfiguration, codecName)
	}

	compression, ok := codec.CompressionByName(compressionName)
	if !ok {
		return nil, o, fmt.Errorf("%w: unknown compression %q", ErrConfiguration, compressionName)
	}

	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, o, fmt.Errorf("read snapshot payload: %w", err)
	}

	payload, err := compression.Decompress(compressed)
	if err != nil {
		return nil, o, fmt.Errorf("decompress snapshot: %w", err)
	}

	var model snapshotModel
	if err := c.Unmarshal(payload, &model); err != nil {
		return nil, o, fmt.Errorf("decode snapshot: %w", err)
	}

	// The loaded classifier keeps saving with the formats recorded in
	// the header.
	o.codec = c
	o.compression = compression

	return &model, o, nil
}

func readString(r io.Reader) (string, error) {
	var n uint8
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}

	buf := make([]byte, int(n))
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}

	return string(buf), nil
}
