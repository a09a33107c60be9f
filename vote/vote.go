// Package vote turns weighted neighbor votes into class posteriors.
//
// The pipeline per query point is Accumulate -> Posterior -> ArgMax.
// All functions operate on one row at a time with call-local buffers,
// so batches can be processed concurrently across rows.
package vote

// Accumulate sums neighbor weights into per-class vote buckets.
//
// labels holds the encoded class label of every neighbor in the set and
// weights the matching weight, same length and order. Each occurrence
// contributes independently: repeated labels (and repeated training
// indices, as radius queries may produce) accumulate additively.
//
// An empty neighbor set yields an all-zero vote vector; downstream
// layers use that to flag outliers.
func Accumulate(labels []int, weights []float64, numClasses int) []float64 {
	votes := make([]float64, numClasses)
	for i, label := range labels {
		votes[label] += weights[i]
	}
	return votes
}

// Posterior rescales raw class votes into a normalized probability row.
//
// Per class: adjusted[c] = votes[c] / classCounts[c] * prior[c], then
// the row is divided by its sum. classCounts must hold at least one
// sample per class (guaranteed when classes are derived from the
// training labels).
//
// If the row sum is zero the division is 0/0 and every entry becomes
// NaN. That is deliberate: fixed-k callers accept it as the documented
// degenerate edge, and radius callers intercept zero-vote rows before
// they reach this step.
func Posterior(votes []float64, classCounts []int, prior []float64) []float64 {
	adjusted := make([]float64, len(votes))

	var sum float64
	for c, v := range votes {
		adjusted[c] = v / float64(classCounts[c]) * prior[c]
		sum += adjusted[c]
	}

	for c := range adjusted {
		adjusted[c] /= sum
	}
	return adjusted
}

// ArgMax returns the index of the largest entry, breaking ties toward
// the lowest index. The strictly-greater scan makes the tie-break
// deterministic across runs.
func ArgMax(row []float64) int {
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}
