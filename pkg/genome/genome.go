// Package genome provides interval bookkeeping for tag (read
// position) data: per-interval totals and fixed-width bin coverage
// profiles over sorted tag positions.
package genome

import (
	"errors"
	"fmt"
	"sort"
)

// ErrBadInterval indicates an interval with End <= Start.
var ErrBadInterval = errors.New("genome: interval end must be greater than start")

// Interval is a half-open genomic region [Start, End) on a chromosome.
type Interval struct {
	Chrom string
	Start int
	End   int
}

// Len returns the interval width in bases.
func (iv Interval) Len() int { return iv.End - iv.Start }

// Validate checks the interval bounds.
func (iv Interval) Validate() error {
	if iv.End <= iv.Start {
		return fmt.Errorf("%w: %s:%d-%d", ErrBadInterval, iv.Chrom, iv.Start, iv.End)
	}
	return nil
}

// Contains reports whether position pos falls inside the interval.
func (iv Interval) Contains(pos int) bool {
	return pos >= iv.Start && pos < iv.End
}

// Tags holds per-chromosome tag positions, kept sorted for binary
// search. Build one with NewTags; lookups are read-only afterwards.
type Tags struct {
	byChrom map[string][]int
	total   int
}

// NewTags indexes tag positions by chromosome. The input map is
// copied and each position slice sorted.
func NewTags(positions map[string][]int) *Tags {
	t := &Tags{byChrom: make(map[string][]int, len(positions))}
	for chrom, pos := range positions {
		sorted := make([]int, len(pos))
		copy(sorted, pos)
		sort.Ints(sorted)
		t.byChrom[chrom] = sorted
		t.total += len(sorted)
	}
	return t
}

// Total returns the number of indexed tags across all chromosomes.
func (t *Tags) Total() int { return t.total }

// Count returns the number of tags inside the interval.
func (t *Tags) Count(iv Interval) (int, error) {
	if err := iv.Validate(); err != nil {
		return 0, err
	}
	pos := t.byChrom[iv.Chrom]
	lo := sort.SearchInts(pos, iv.Start)
	hi := sort.SearchInts(pos, iv.End)
	return hi - lo, nil
}

// Profile returns a coverage profile over the interval: tag counts in
// consecutive bins of binSize bases. The last bin may be narrower
// when binSize does not divide the interval width.
func (t *Tags) Profile(iv Interval, binSize int) ([]int, error) {
	if err := iv.Validate(); err != nil {
		return nil, err
	}
	if binSize <= 0 {
		return nil, fmt.Errorf("genome: bin size must be positive, got %d", binSize)
	}

	bins := (iv.Len() + binSize - 1) / binSize
	profile := make([]int, bins)
	pos := t.byChrom[iv.Chrom]
	lo := sort.SearchInts(pos, iv.Start)
	hi := sort.SearchInts(pos, iv.End)
	for _, p := range pos[lo:hi] {
		profile[(p-iv.Start)/binSize]++
	}
	return profile, nil
}
