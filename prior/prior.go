// Package prior derives per-class prior probability vectors.
//
// A prior policy maps the fitted class counts to one prior entry per
// class, in ascending class order. The posterior step rescales raw
// votes by prior[c]/classCount[c], so only the relative magnitudes of
// the prior entries matter.
package prior

import "fmt"

// Stable names for the built-in policies. These are the values accepted
// by ByName and recorded in model snapshots.
const (
	NameDefault  = "default"
	NameFlat     = "flat"
	NameExplicit = "explicit"
)

// Compile-time checks to ensure the built-ins satisfy Policy.
var _ Policy = empirical{}
var _ Policy = flat{}
var _ Policy = (*Explicit)(nil)

// Policy maps the fitted class distribution to a prior vector.
type Policy interface {
	// Prior returns one entry per class, classes in ascending label
	// order. classCounts holds the number of training samples per class
	// and numTrain the total training size.
	Prior(classCounts []int, numTrain int) ([]float64, error)

	// Name returns the stable name of the policy.
	Name() string
}

// ErrUnknownName indicates an unrecognized prior policy name.
type ErrUnknownName struct {
	Name string
}

func (e *ErrUnknownName) Error() string {
	return fmt.Sprintf("unknown class prior policy: %q", e.Name)
}

// ErrLengthMismatch indicates an explicit prior vector whose length does
// not match the number of classes.
type ErrLengthMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("explicit class prior has %d entries, want one per class (%d)", e.Actual, e.Expected)
}

// ErrNonPositiveEntry indicates an explicit prior entry that is not
// strictly positive.
type ErrNonPositiveEntry struct {
	Index int
	Value float64
}

func (e *ErrNonPositiveEntry) Error() string {
	return fmt.Sprintf("explicit class prior entry %d is %v, must be > 0", e.Index, e.Value)
}

// ByName returns a built-in policy by its stable name.
//
// The explicit policy carries a caller-supplied vector and cannot be
// constructed by name; use NewExplicit.
func ByName(name string) (Policy, error) {
	switch name {
	case NameDefault:
		return Empirical(), nil
	case NameFlat:
		return Flat(), nil
	default:
		return nil, &ErrUnknownName{Name: name}
	}
}

// Empirical returns the maximum-likelihood policy: each class gets its
// observed frequency in the training set, classCounts[c]/numTrain. The
// returned vector sums to 1.
//
// Note that the posterior step divides raw votes by the same empirical
// class counts, so this policy cancels exactly and behaves as pure vote
// normalization. That is the documented behavior of the default
// configuration; callers that want bias correction must use Flat or an
// explicit vector.
func Empirical() Policy { return empirical{} }

type empirical struct{}

func (empirical) Name() string { return NameDefault }

func (empirical) Prior(classCounts []int, numTrain int) ([]float64, error) {
	p := make([]float64, len(classCounts))
	for c, count := range classCounts {
		p[c] = float64(count) / float64(numTrain)
	}
	return p, nil
}

// Flat returns the equiprobable policy: every class gets 1/C. The
// returned vector sums to 1.
func Flat() Policy { return flat{} }

type flat struct{}

func (flat) Name() string { return NameFlat }

func (flat) Prior(classCounts []int, _ int) ([]float64, error) {
	p := make([]float64, len(classCounts))
	for c := range p {
		p[c] = 1 / float64(len(classCounts))
	}
	return p, nil
}

// Explicit is a caller-supplied prior vector, one strictly positive
// entry per class in ascending class order. The vector is not required
// to sum to 1; only relative magnitudes matter.
type Explicit struct {
	vector []float64
}

// NewExplicit creates an explicit policy from the given vector. Entries
// are validated to be strictly positive immediately; the length check
// against the number of classes happens once the classes are known, at
// fit time.
func NewExplicit(vector []float64) (*Explicit, error) {
	for i, v := range vector {
		if v <= 0 {
			return nil, &ErrNonPositiveEntry{Index: i, Value: v}
		}
	}
	copied := make([]float64, len(vector))
	copy(copied, vector)
	return &Explicit{vector: copied}, nil
}

func (e *Explicit) Name() string { return NameExplicit }

// Vector returns a copy of the configured prior vector.
func (e *Explicit) Vector() []float64 {
	copied := make([]float64, len(e.vector))
	copy(copied, e.vector)
	return copied
}

func (e *Explicit) Prior(classCounts []int, _ int) ([]float64, error) {
	if len(e.vector) != len(classCounts) {
		return nil, &ErrLengthMismatch{Expected: len(classCounts), Actual: len(e.vector)}
	}
	return e.Vector(), nil
}
