package merge

import (
	"fmt"

	"github.com/strandlab/motifmerge/pkg/motif"
)

// DendroNode is one node of a dendrogram arena. Leaves have Left and
// Right set to -1 and height 0; internal nodes record the linkage
// distance at which their children were joined and carry the combined
// representative built during clustering.
type DendroNode struct {
	Left   int     `json:"left"`
	Right  int     `json:"right"`
	Height float64 `json:"height"`
	Rep    Merged  `json:"rep"`
}

// IsLeaf reports whether the node has no children.
func (n DendroNode) IsLeaf() bool { return n.Left < 0 }

// Dendrogram is the full agglomerative merge tree over an input motif
// set, stored as an index-addressed arena: leaves occupy indices
// 0..n-1 in input order, internal nodes follow in merge order, and
// Root indexes the final node. The arena layout keeps traversal
// iterative and free of ownership cycles.
type Dendrogram struct {
	Nodes []DendroNode `json:"nodes"`
	Root  int          `json:"root"`
}

// Leaves returns the number of leaf nodes.
func (d *Dendrogram) Leaves() int { return (len(d.Nodes) + 1) / 2 }

// Cut flattens the dendrogram at the given height threshold: every
// maximal subtree whose root height does not exceed the threshold
// becomes one cluster. A node above the threshold is never merged —
// its children are visited instead. Leaves always terminate the
// descent, so every leaf lands in exactly one cluster.
func (d *Dendrogram) Cut(threshold float64) []int {
	if len(d.Nodes) == 0 {
		return nil
	}
	var roots []int
	stack := []int{d.Root}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := d.Nodes[idx]
		if node.IsLeaf() || node.Height <= threshold {
			roots = append(roots, idx)
			continue
		}
		// Right pushed first so the left subtree is visited first,
		// keeping clusters in left-to-right leaf order.
		stack = append(stack, node.Right, node.Left)
	}
	return roots
}

// Tree merges motifs by agglomerative clustering: a full dendrogram is
// built with size-weighted average linkage (the Distance score between
// the clusters' combined representative matrices, which accumulate
// per-column weights through merges), then cut at the threshold.
//
// Each resulting cluster is collapsed to its representative — built
// leaf-to-root with the same offset/superposition/dilution steps as
// the iterative strategy — and labeled
//
//	<prefix>_<index>_<CONSENSUS>(<name1>+<name2>+...)
//
// with constituents in left-to-right leaf order. The dendrogram is
// returned alongside the clusters for external rendering; the engine
// defines no visual format.
func Tree(motifs []motif.Motif, threshold float64, prefix string, opts Options) ([]Merged, *Dendrogram, error) {
	if err := motif.ValidateAll(motifs); err != nil {
		return nil, nil, err
	}
	if len(motifs) == 0 {
		return nil, &Dendrogram{}, nil
	}

	d := &Dendrogram{Nodes: make([]DendroNode, 0, 2*len(motifs)-1)}
	active := make([]int, len(motifs))
	for i, m := range motifs {
		d.Nodes = append(d.Nodes, DendroNode{Left: -1, Right: -1, Rep: singleton(m)})
		active[i] = i
	}

	scores, err := linkageScores(d, active, opts)
	if err != nil {
		return nil, nil, err
	}

	for len(active) > 1 {
		bi, bj, best, ok := minLinkage(active, scores)
		if !ok {
			return nil, nil, ErrDegenerateMerge
		}

		rep, err := mergePair(d.Nodes[active[bi]].Rep, d.Nodes[active[bj]].Rep, best.offset)
		if err != nil {
			return nil, nil, err
		}

		node := DendroNode{Left: active[bi], Right: active[bj], Height: best.dist, Rep: rep}
		d.Nodes = append(d.Nodes, node)
		idx := len(d.Nodes) - 1

		a, b := active[bi], active[bj]
		active = append(active[:bj], active[bj+1:]...)
		active = append(active[:bi], active[bi+1:]...)
		for _, o := range active {
			delete(scores, linkKey{a, o})
			delete(scores, linkKey{o, a})
			delete(scores, linkKey{b, o})
			delete(scores, linkKey{o, b})
		}
		delete(scores, linkKey{a, b})

		for _, o := range active {
			dist, off, err := Distance(d.Nodes[o].Rep.Matrix, rep.Matrix, opts)
			if err != nil {
				return nil, nil, err
			}
			scores[linkKey{o, idx}] = pairScore{dist: dist, offset: off}
		}
		active = append(active, idx)
	}
	d.Root = active[0]

	roots := d.Cut(threshold)
	clusters := make([]Merged, len(roots))
	for i, r := range roots {
		m := d.Nodes[r].Rep
		m.Label = fmt.Sprintf("%s_%d_%s(%s)", prefix, i+1, m.Matrix.Consensus(), m.joinedNames())
		clusters[i] = m
	}
	return clusters, d, nil
}

// linkKey identifies an unordered pair of dendrogram node indices.
type linkKey struct {
	a, b int
}

// linkageScores computes the initial leaf-pair linkage distances
// concurrently, mirroring the iterative strategy's initial pass.
func linkageScores(d *Dendrogram, active []int, opts Options) (map[linkKey]pairScore, error) {
	members := make([]*Merged, len(active))
	for i, idx := range active {
		members[i] = &d.Nodes[idx].Rep
	}
	byMember, err := initialScores(members, opts)
	if err != nil {
		return nil, err
	}
	scores := make(map[linkKey]pairScore, len(byMember))
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			if s, ok := byMember[pairKey{members[i], members[j]}]; ok {
				scores[linkKey{active[i], active[j]}] = s
			}
		}
	}
	return scores, nil
}

// minLinkage scans active clusters in stable order for the smallest
// cached linkage distance. Strict less-than keeps the first
// encountered pair on ties, making the dendrogram reproducible.
func minLinkage(active []int, scores map[linkKey]pairScore) (int, int, pairScore, bool) {
	var (
		bi, bj int
		best   pairScore
		found  bool
	)
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			s, ok := scores[linkKey{active[i], active[j]}]
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
