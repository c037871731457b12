package merge

import (
	"runtime"
	"sync"

	"github.com/strandlab/motifmerge/pkg/motif"
)

// pairScore caches one Distance evaluation between two working-set
// members.
type pairScore struct {
	dist   float64
	offset int
}

// pairKey identifies an unordered member pair by pointer identity.
// Members are allocated once and never reused, so pointers are stable
// for the lifetime of a merge invocation.
type pairKey struct {
	a, b *Merged
}

// Iterative greedily merges the closest pair of motifs until no pair
// is within threshold of each other.
//
// Each input motif starts as its own working-set member with unit
// per-column weights. Every round the globally minimum cached distance
// is located; if it exceeds the threshold the algorithm stops,
// otherwise the pair is aligned at its winning offset, superposed
// weighted by accumulated weights, diluted, and replaced by the
// combined member. Only distances involving the new member are
// recomputed — cached distances between untouched members survive.
//
// Tie-breaking is stable: among equal-minimum pairs the first in the
// working-set enumeration (older members first) wins, so the merge
// sequence is reproducible for identical inputs.
//
// The initial O(n²) distance matrix is filled concurrently; inputs
// are immutable during the invocation so no locking is needed.
func Iterative(motifs []motif.Motif, threshold float64, opts Options) ([]Merged, error) {
	if err := motif.ValidateAll(motifs); err != nil {
		return nil, err
	}

	members := make([]*Merged, len(motifs))
	for i, m := range motifs {
		s := singleton(m)
		members[i] = &s
	}
	if len(members) < 2 {
		return collect(members), nil
	}

	scores, err := initialScores(members, opts)
	if err != nil {
		return nil, err
	}

	for len(members) > 1 {
		bi, bj, best, ok := minPair(members, scores)
		if !ok || best.dist > threshold {
			break
		}

		combined, err := mergePair(*members[bi], *members[bj], best.offset)
		if err != nil {
			return nil, err
		}

		// Drop the merged pair (preserving order) and append the
		// combined member so the enumeration stays stable.
		a, b := members[bi], members[bj]
		members = append(members[:bj], members[bj+1:]...)
		members = append(members[:bi], members[bi+1:]...)
		for _, m := range members {
			delete(scores, pairKey{a, m})
			delete(scores, pairKey{m, a})
			delete(scores, pairKey{b, m})
			delete(scores, pairKey{m, b})
		}
		delete(scores, pairKey{a, b})

		nm := &combined
		for _, m := range members {
			d, off, err := Distance(m.Matrix, nm.Matrix, opts)
			if err != nil {
				return nil, err
			}
			scores[pairKey{m, nm}] = pairScore{dist: d, offset: off}
		}
		members = append(members, nm)
	}

	return collect(members), nil
}

// initialScores computes all pairwise distances concurrently.
// Independent evaluations share read-only matrices, so workers write
// disjoint slice slots without synchronization beyond the WaitGroup.
func initialScores(members []*Merged, opts Options) (map[pairKey]pairScore, error) {
	type job struct{ i, j int }
	jobs := make([]job, 0, len(members)*(len(members)-1)/2)
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			jobs = append(jobs, job{i, j})
		}
	}

	results := make([]pairScore, len(jobs))
	errs := make([]error, len(jobs))

	workers := min(runtime.GOMAXPROCS(0), len(jobs))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for idx := w; idx < len(jobs); idx += workers {
				jb := jobs[idx]
				d, off, err := Distance(members[jb.i].Matrix, members[jb.j].Matrix, opts)
				results[idx] = pairScore{dist: d, offset: off}
				errs[idx] = err
			}
		}(w)
	}
	wg.Wait()

	scores := make(map[pairKey]pairScore, len(jobs))
	for idx, jb := range jobs {
		if errs[idx] != nil {
			return nil, errs[idx]
		}
		scores[pairKey{members[jb.i], members[jb.j]}] = results[idx]
	}
	return scores, nil
}

// minPair scans the current working set in stable (i, j) order and
// returns the indices of the minimum cached distance. Strict
// less-than keeps the first-encountered pair on ties.
func minPair(members []*Merged, scores map[pairKey]pairScore) (int, int, pairScore, bool) {
	var (
		bi, bj int
		best   pairScore
		found  bool
	)
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			s, ok := scores[pairKey{members[i], members[j]}]
			if !ok {
				continue
			}
			if !found || s.dist < best.dist {
				bi, bj, best, found = i, j, s, true
			}
		}
	}
	return bi, bj, best, found
}

func collect(members []*Merged) []Merged {
	out := make([]Merged, len(members))
	for i, m := range members {
		m.Label = m.joinedNames()
		out[i] = *m
	}
	return out
}
