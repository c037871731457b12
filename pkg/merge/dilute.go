package merge

import (
	"errors"
	"strings"

	"github.com/strandlab/motifmerge/pkg/motif"
)

// ErrDegenerateMerge indicates an internal invariant violation, such
// as merging a cluster with no members or diluting a matrix whose
// weight vector does not match its column count. It signals a
// programming error, not bad input, and is never retried.
var ErrDegenerateMerge = errors.New("merge: degenerate merge")

// WeightedPWM is a superposed matrix whose columns carry accumulated
// probability mass rather than proper distributions, paired with the
// per-column weight that mass was built from. Produced by
// superposition during a merge and consumed immediately by [Dilute].
type WeightedPWM struct {
	Matrix  motif.PWM
	Weights []float64
}

// Dilute renormalizes a weighted superposition back into a valid PWM:
// every entry is divided by its column's weight sum. A column with
// zero total weight becomes the uniform background. The output always
// satisfies the PWM invariant (every column sums to 1).
func Dilute(w WeightedPWM) (motif.PWM, error) {
	if len(w.Matrix) == 0 {
		return nil, motif.ErrEmptyMatrix
	}
	if len(w.Weights) != len(w.Matrix) {
		return nil, ErrDegenerateMerge
	}
	out := make(motif.PWM, len(w.Matrix))
	for i, col := range w.Matrix {
		if w.Weights[i] <= 0 {
			out[i] = motif.Background()
			continue
		}
		for s := 0; s < motif.AlphabetSize; s++ {
			out[i][s] = col[s] / w.Weights[i]
		}
	}
	return out, nil
}

// Merged is a working-set member of either clustering strategy: the
// diluted consensus matrix, the accumulated per-column weights, and
// the original constituent names in merge order.
type Merged struct {
	Names   []string  `json:"names"`
	Label   string    `json:"label"`
	Matrix  motif.PWM `json:"matrix"`
	Weights []float64 `json:"weights"`
}

// Motif converts the merged member into a plain named motif using its
// label as the name.
func (m Merged) Motif() motif.Motif {
	return motif.Motif{Name: m.Label, Matrix: m.Matrix}
}

// joinedNames concatenates the constituent names with "+".
func (m Merged) joinedNames() string {
	return strings.Join(m.Names, "+")
}

// singleton wraps one input motif as a working-set member with unit
// per-column weights.
func singleton(m motif.Motif) Merged {
	weights := make([]float64, len(m.Matrix))
	for i := range weights {
		weights[i] = 1
	}
	return Merged{
		Names:   []string{m.Name},
		Label:   m.Name,
		Matrix:  m.Matrix.Clone(),
		Weights: weights,
	}
}

// superpose combines two members at the given relative offset into a
// weighted superposition covering the union of their columns.
//
// Where both members cover a position, the masses w·column add. Where
// only one does, the absent member contributes background scaled by
// its nearest edge-column weight, so overhangs are diluted toward
// background in proportion to the absent cluster's support.
func superpose(a, b Merged, k int) WeightedPWM {
	lo := min(0, k)
	hi := max(len(a.Matrix), len(b.Matrix)+k)

	n := hi - lo
	out := WeightedPWM{
		Matrix:  make(motif.PWM, n),
		Weights: make([]float64, n),
	}
	for p := 0; p < n; p++ {
		pos := p + lo
		colA, wA := memberAt(a, pos)
		colB, wB := memberAt(b, pos-k)
		for s := 0; s < motif.AlphabetSize; s++ {
			out.Matrix[p][s] = wA*colA[s] + wB*colB[s]
		}
		out.Weights[p] = wA + wB
	}
	return out
}

// memberAt returns the column and weight a member contributes at
// position i of its own coordinate system. Outside the matrix it
// contributes background carrying the nearest edge column's weight.
func memberAt(m Merged, i int) (motif.Column, float64) {
	switch {
	case i < 0:
		return motif.Background(), m.Weights[0]
	case i >= len(m.Matrix):
		return motif.Background(), m.Weights[len(m.Weights)-1]
	default:
		return m.Matrix[i], m.Weights[i]
	}
}

// mergePair aligns two members at their best offset and returns the
// diluted combination. The offset must come from a Distance evaluation
// of the same two matrices.
func mergePair(a, b Merged, offset int) (Merged, error) {
	if len(a.Matrix) == 0 || len(b.Matrix) == 0 {
		return Merged{}, ErrDegenerateMerge
	}
	w := superpose(a, b, offset)
	diluted, err := Dilute(w)
	if err != nil {
		return Merged{}, err
	}
	names := make([]string, 0, len(a.Names)+len(b.Names))
	names = append(names, a.Names...)
	names = append(names, b.Names...)
	m := Merged{
		Names:   names,
		Matrix:  diluted,
		Weights: w.Weights,
	}
	m.Label = m.joinedNames()
	return m, nil
}
