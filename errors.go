package knngo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/knngo/prior"
	"github.com/hupe1980/knngo/weight"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidRadius is returned when the radius is not positive.
	ErrInvalidRadius = errors.New("radius must be positive")

	// ErrNotFitted is returned when Predict or PredictProba runs before
	// Fit.
	ErrNotFitted = errors.New("classifier is not fitted")

	// ErrConfiguration wraps invalid configuration: unknown weight
	// function names, malformed explicit prior vectors, mismatched
	// training inputs. Raised at construction or fit time, never
	// deferred to predict time.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNotSerializable is returned when a snapshot is requested for a
	// model carrying state that cannot be restored by name: a custom
	// weight function, or a searcher that does not expose its fitted
	// vectors.
	ErrNotSerializable = errors.New("model state cannot be serialized")
)

// ErrNoNeighbors indicates a radius query returned zero neighbors for a
// test sample while no outlier label is configured. The predict call
// aborts whole: no partial results are returned.
type ErrNoNeighbors struct {
	// Row is the index of the first offending query point.
	Row int
}

func (e *ErrNoNeighbors) Error() string {
	return fmt.Sprintf("no neighbors found for test sample %d; try using a larger radius, configure an outlier label, or remove the sample", e.Row)
}

// ErrSampleCountMismatch indicates Fit received a different number of
// training vectors and labels.
type ErrSampleCountMismatch struct {
	Vectors int
	Labels  int
}

func (e *ErrSampleCountMismatch) Error() string {
	return fmt.Sprintf("sample count mismatch: %d vectors, %d labels", e.Vectors, e.Labels)
}

// translateError normalizes subpackage errors at the API boundary so
// callers can match on the root taxonomy with errors.Is. Errors from
// search collaborators pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var unknownWeight *weight.ErrUnknownName
	if errors.As(err, &unknownWeight) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	var unknownPrior *prior.ErrUnknownName
	if errors.As(err, &unknownPrior) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	var priorLength *prior.ErrLengthMismatch
	if errors.As(err, &priorLength) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	var priorEntry *prior.ErrNonPositiveEntry
	if errors.As(err, &priorEntry) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	var samples *ErrSampleCountMismatch
	if errors.As(err, &samples) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return err
}
