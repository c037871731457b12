package merge

import (
	"math"

	"github.com/strandlab/motifmerge/pkg/motif"
)

// Distance computes the alignment-aware dissimilarity between two
// PWMs. Every relative offset with at least one overlapping column is
// evaluated: offsets range over -(len(b)-1) .. len(a)-1, where offset
// k places column i of a against column i-k of b.
//
// For each offset, overlapping column pairs are scored with
// Jensen-Shannon divergence and aggregated by opts.Combine; the
// unaligned overhang runs on each side contribute opts.Gap(runLength).
// The offset minimizing the total wins; ties prefer the smallest
// absolute offset, then the leftmost (most negative) offset.
//
// The score is symmetric in a and b. Distance is pure and never
// mutates its inputs. Returns motif.ErrEmptyMatrix if either matrix
// has no columns.
func Distance(a, b motif.PWM, opts Options) (float64, int, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, motif.ErrEmptyMatrix
	}

	bestScore := math.Inf(1)
	bestOffset := 0
	for k := -(len(b) - 1); k <= len(a)-1; k++ {
		score := scoreOffset(a, b, k, opts)
		if betterOffset(score, k, bestScore, bestOffset) {
			bestScore, bestOffset = score, k
		}
	}
	return bestScore, bestOffset, nil
}

// betterOffset reports whether (score, k) beats the current best under
// the tie-breaking rule: lower score, then smaller |offset|, then
// leftmost offset.
func betterOffset(score float64, k int, bestScore float64, bestK int) bool {
	if score != bestScore {
		return score < bestScore
	}
	ak, abk := absInt(k), absInt(bestK)
	if ak != abk {
		return ak < abk
	}
	return k < bestK
}

// scoreOffset evaluates one relative placement of b against a.
func scoreOffset(a, b motif.PWM, k int, opts Options) float64 {
	lo := max(0, k)
	hi := min(len(a), len(b)+k)

	divs := make([]float64, 0, hi-lo)
	for i := lo; i < hi; i++ {
		divs = append(divs, JensenShannon(a[i], b[i-k]))
	}

	// Overhang run lengths: |k| columns hang off the left edge, and
	// the difference of the right edges hangs off the right.
	left := absInt(k)
	right := absInt(len(a) - (len(b) + k))

	return opts.Combine(divs) + opts.Gap(left) + opts.Gap(right)
}

// JensenShannon returns the Jensen-Shannon divergence between two
// probability columns, using base-2 logarithms so the result lies in
// [0, 1]. It is symmetric and zero iff the distributions are equal.
func JensenShannon(p, q motif.Column) float64 {
	var jsd float64
	for i := 0; i < motif.AlphabetSize; i++ {
		m := (p[i] + q[i]) / 2
		jsd += klTerm(p[i], m) + klTerm(q[i], m)
	}
	return jsd / 2
}

// klTerm is one summand of KL(p||m) with the 0·log(0) = 0 convention.
func klTerm(p, m float64) float64 {
	if p == 0 || m == 0 {
		return 0
	}
	return p * math.Log2(p/m)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
