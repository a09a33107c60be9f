// Package weight maps neighbor distances to vote contributions.
//
// A weight function turns one row of neighbor distances into a row of
// non-negative weights. The classifiers apply it per query point before
// accumulating class votes.
package weight

import "fmt"

// Stable names for the built-in weight functions. These are the values
// accepted by ByName and recorded in model snapshots.
const (
	NameUniform  = "uniform"
	NameDistance = "distance"
	NameCustom   = "custom"
)

// Compile-time checks to ensure the built-ins satisfy Function.
var _ Function = uniform{}
var _ Function = inverseDistance{}
var _ Function = custom{}

// Function converts a row of neighbor distances into vote weights.
//
// Implementations must return a slice of the same length as the input,
// with every entry >= 0, and must not retain or mutate the input.
type Function interface {
	// Weigh returns one weight per distance, same length and order.
	Weigh(distances []float64) []float64

	// Name returns the stable name of the function.
	Name() string
}

// ErrUnknownName indicates an unrecognized weight function name.
type ErrUnknownName struct {
	Name string
}

func (e *ErrUnknownName) Error() string {
	return fmt.Sprintf("unknown weight function: %q", e.Name)
}

// ByName returns a built-in weight function by its stable name.
//
// This is used both for configuration surfaces that carry the weight
// function as a string and for restoring snapshots.
func ByName(name string) (Function, error) {
	switch name {
	case NameUniform:
		return Uniform(), nil
	case NameDistance:
		return InverseDistance(), nil
	default:
		return nil, &ErrUnknownName{Name: name}
	}
}

// Uniform returns the weight function that gives every neighbor the
// same influence: all weights are 1.
func Uniform() Function { return uniform{} }

type uniform struct{}

func (uniform) Name() string { return NameUniform }

func (uniform) Weigh(distances []float64) []float64 {
	w := make([]float64, len(distances))
	for i := range w {
		w[i] = 1
	}
	return w
}

// InverseDistance returns the weight function that weights each
// neighbor by the inverse of its distance, so closer neighbors have
// greater influence.
//
// If any distance in the row is exactly zero, the row collapses to an
// indicator vector over the zero-distance neighbors (1 for each exact
// match, 0 for the rest). Exact matches take decisive influence and no
// division by zero occurs.
func InverseDistance() Function { return inverseDistance{} }

type inverseDistance struct{}

func (inverseDistance) Name() string { return NameDistance }

func (inverseDistance) Weigh(distances []float64) []float64 {
	w := make([]float64, len(distances))

	exact := false
	for _, d := range distances {
		if d == 0 {
			exact = true
			break
		}
	}
	if exact {
		for i, d := range distances {
			if d == 0 {
				w[i] = 1
			}
		}
		return w
	}

	for i, d := range distances {
		w[i] = 1 / d
	}
	return w
}

// Custom adapts a user-supplied weighting function.
//
// The function must be pure: it receives a row of distances and returns
// a row of weights of the same length. No additional normalization is
// applied. A nil function or a nil return value falls back to uniform
// weighting.
//
// Custom weight functions cannot be restored from snapshots.
func Custom(fn func(distances []float64) []float64) Function {
	return custom{fn: fn}
}

type custom struct {
	fn func([]float64) []float64
}

func (custom) Name() string { return NameCustom }

func (c custom) Weigh(distances []float64) []float64 {
	if c.fn == nil {
		return Uniform().Weigh(distances)
	}
	w := c.fn(distances)
	if w == nil {
		return Uniform().Weigh(distances)
	}
	return w
}
