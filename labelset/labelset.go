// Package labelset stores the fitted training labels and class list.
//
// At fit time arbitrary integer class labels are re-encoded to the
// contiguous range [0, C) with classes sorted ascending. Per-class
// membership is tracked in roaring bitmaps, which back the class counts
// used by the posterior step and membership queries.
//
// A Set is immutable after construction and safe to share across
// concurrent predict calls without locking.
package labelset

import (
	"iter"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Set is the immutable training-label store established at fit time.
type Set struct {
	classes  []int
	encoded  []int
	counts   []int
	postings []*roaring.Bitmap
}

// New builds a Set from raw integer class labels, one per training row.
func New(y []int) *Set {
	classes := slices.Clone(y)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	index := make(map[int]int, len(classes))
	for c, label := range classes {
		index[label] = c
	}

	encoded := make([]int, len(y))
	counts := make([]int, len(classes))
	postings := make([]*roaring.Bitmap, len(classes))
	for c := range postings {
		postings[c] = roaring.New()
	}

	for row, label := range y {
		c := index[label]
		encoded[row] = c
		postings[c].Add(uint32(row))
	}
	for c := range counts {
		counts[c] = int(postings[c].GetCardinality())
	}

	return &Set{
		classes:  classes,
		encoded:  encoded,
		counts:   counts,
		postings: postings,
	}
}

// NumClasses returns the number of distinct classes C.
func (s *Set) NumClasses() int { return len(s.classes) }

// NumTrain returns the number of training rows.
func (s *Set) NumTrain() int { return len(s.encoded) }

// Classes returns a copy of the distinct class values, sorted ascending.
// The probability matrix columns follow this order.
func (s *Set) Classes() []int { return slices.Clone(s.classes) }

// Class maps an encoded label back to its original class value.
func (s *Set) Class(c int) int { return s.classes[c] }

// Encoded returns the encoded label in [0, C) for training row i.
func (s *Set) Encoded(i int) int { return s.encoded[i] }

// Counts returns a copy of the per-class training sample counts,
// indexed by encoded label.
func (s *Set) Counts() []int { return slices.Clone(s.counts) }

// Labels reconstructs the original training labels in row order.
func (s *Set) Labels() []int {
	y := make([]int, len(s.encoded))
	for i, c := range s.encoded {
		y[i] = s.classes[c]
	}
	return y
}

// Contains reports whether training row belongs to encoded class c.
func (s *Set) Contains(c int, row int) bool {
	return s.postings[c].Contains(uint32(row))
}

// Rows iterates the training rows belonging to encoded class c, in
// ascending row order.
func (s *Set) Rows(c int) iter.Seq[int] {
	return func(yield func(int) bool) {
		it := s.postings[c].Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}
