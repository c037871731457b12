// Package motif defines the core data model for sequence motifs:
// position weight matrices (PWMs) over the four-letter nucleotide
// alphabet, and named motifs wrapping them.
//
// A PWM column is a probability distribution over A, C, G, T. Every
// operation in this module assumes validated matrices: at least one
// column, every column summing to 1 within [SumTolerance]. Use
// [PWM.Validate] at trust boundaries (file readers, API handlers);
// the merge engine treats validity as a precondition.
package motif

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Alphabet size and symbol order used throughout the module.
// Index 0..3 correspond to A, C, G, T in every column.
const AlphabetSize = 4

// Symbols holds the nucleotide symbols in column index order.
var Symbols = [AlphabetSize]byte{'A', 'C', 'G', 'T'}

// SumTolerance is the allowed deviation of a column sum from 1.0.
const SumTolerance = 1e-6

var (
	// ErrEmptyMatrix is returned when a PWM has no columns. Every
	// engine operation requires at least one column.
	ErrEmptyMatrix = errors.New("motif: matrix has no columns")

	// ErrBadColumn is returned when a column is not a probability
	// distribution: a negative entry, or a sum outside
	// 1.0 ± SumTolerance.
	ErrBadColumn = errors.New("motif: column is not a probability distribution")
)

// Column is one PWM position: a probability distribution over A, C, G, T.
type Column [AlphabetSize]float64

// Sum returns the total of the column's entries.
func (c Column) Sum() float64 {
	return c[0] + c[1] + c[2] + c[3]
}

// Max returns the largest entry and its symbol index.
func (c Column) Max() (float64, int) {
	best, idx := c[0], 0
	for i := 1; i < AlphabetSize; i++ {
		if c[i] > best {
			best, idx = c[i], i
		}
	}
	return best, idx
}

// Background returns the uniform background distribution (0.25 each).
func Background() Column {
	return Column{0.25, 0.25, 0.25, 0.25}
}

// PWM is a position weight matrix: an ordered sequence of columns.
type PWM []Column

// Len returns the number of columns.
func (p PWM) Len() int { return len(p) }

// Clone returns a deep copy of the matrix.
func (p PWM) Clone() PWM {
	out := make(PWM, len(p))
	copy(out, p)
	return out
}

// Validate checks the PWM invariant: at least one column, all entries
// non-negative, every column summing to 1 within SumTolerance.
// Returns ErrEmptyMatrix or ErrBadColumn (wrapped with the offending
// column index).
func (p PWM) Validate() error {
	if len(p) == 0 {
		return ErrEmptyMatrix
	}
	for i, col := range p {
		for _, v := range col {
			if v < 0 || math.IsNaN(v) {
				return fmt.Errorf("%w: column %d has entry %v", ErrBadColumn, i, v)
			}
		}
		if math.Abs(col.Sum()-1) > SumTolerance {
			return fmt.Errorf("%w: column %d sums to %v", ErrBadColumn, i, col.Sum())
		}
	}
	return nil
}

// Consensus returns the dominant-symbol string of the matrix, one
// letter per column. A column whose best probability is below 0.4
// yields 'N' (no clear preference).
func (p PWM) Consensus() string {
	var b strings.Builder
	b.Grow(len(p))
	for _, col := range p {
		best, idx := col.Max()
		if best < 0.4 {
			b.WriteByte('N')
		} else {
			b.WriteByte(Symbols[idx])
		}
	}
	return b.String()
}

// Motif is a named PWM. The merge engine never mutates a Motif in
// place; merge results are always new values.
type Motif struct {
	Name   string `json:"name"`
	Matrix PWM    `json:"matrix"`
}

// Validate checks the motif's matrix. See [PWM.Validate].
func (m Motif) Validate() error {
	if err := m.Matrix.Validate(); err != nil {
		return fmt.Errorf("motif %q: %w", m.Name, err)
	}
	return nil
}

// ValidateAll validates every motif in the slice, failing on the first
// invalid one. Callers should reject the whole input set on error —
// the engine has no partial-failure mode.
func ValidateAll(motifs []Motif) error {
	for _, m := range motifs {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}
