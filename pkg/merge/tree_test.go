package merge

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strandlab/motifmerge/pkg/motif"
)

func TestTree_EndToEnd(t *testing.T) {
	clusters, d, err := Tree(threeMotifs(), 0.2, "merged", linearOptions(t))
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	require.Equal(t, 5, len(d.Nodes)) // 3 leaves + 2 internal
	require.Equal(t, 3, d.Leaves())

	var ab, c *Merged
	for i := range clusters {
		if len(clusters[i].Names) == 2 {
			ab = &clusters[i]
		} else {
			c = &clusters[i]
		}
	}
	require.NotNil(t, ab)
	require.NotNil(t, c)
	require.ElementsMatch(t, []string{"A", "B"}, ab.Names)
	require.Equal(t, []string{"C"}, c.Names)
	require.InDelta(t, 0.875, ab.Matrix[0][0], 1e-9)
}

func TestTree_LabelFormat(t *testing.T) {
	clusters, _, err := Tree(threeMotifs(), 0.2, "consensus", linearOptions(t))
	require.NoError(t, err)
	for _, c := range clusters {
		require.True(t, strings.HasPrefix(c.Label, "consensus_"), c.Label)
		require.True(t, strings.HasSuffix(c.Label, ")"), c.Label)
		require.Contains(t, c.Label, strings.Join(c.Names, "+"))
	}
	require.Contains(t, clusters[0].Label, "_1_")
	require.Contains(t, clusters[1].Label, "_2_")
}

func TestTree_PartitionProperty(t *testing.T) {
	motifs := []motif.Motif{
		{Name: "a", Matrix: motif.PWM{{0.7, 0.1, 0.1, 0.1}}},
		{Name: "b", Matrix: motif.PWM{{0.65, 0.15, 0.1, 0.1}}},
		{Name: "c", Matrix: motif.PWM{{0.1, 0.7, 0.1, 0.1}}},
		{Name: "d", Matrix: motif.PWM{{0.1, 0.1, 0.1, 0.7}}},
		{Name: "e", Matrix: motif.PWM{{0.1, 0.1, 0.15, 0.65}}},
	}
	for _, threshold := range []float64{-1, 0, 0.05, 0.2, 0.5, math.Inf(1)} {
		clusters, _, err := Tree(motifs, threshold, "m", DefaultOptions())
		require.NoError(t, err)

		seen := map[string]int{}
		for _, c := range clusters {
			for _, name := range c.Names {
				seen[name]++
			}
		}
		require.Len(t, seen, len(motifs), "threshold %v", threshold)
		for name, n := range seen {
			require.Equal(t, 1, n, "leaf %s at threshold %v", name, threshold)
		}
	}
}

func TestTree_ThresholdZeroKeepsDistinctLeavesApart(t *testing.T) {
	motifs := []motif.Motif{
		{Name: "a", Matrix: motif.PWM{{0.7, 0.1, 0.1, 0.1}}},
		{Name: "b", Matrix: motif.PWM{{0.1, 0.7, 0.1, 0.1}}},
		{Name: "c", Matrix: motif.PWM{{0.1, 0.1, 0.7, 0.1}}},
	}
	clusters, _, err := Tree(motifs, 0, "m", zeroGapOptions(t))
	require.NoError(t, err)
	require.Len(t, clusters, 3)
}

func TestTree_InfinityCollapsesAll(t *testing.T) {
	clusters, d, err := Tree(threeMotifs(), math.Inf(1), "m", linearOptions(t))
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	require.ElementsMatch(t, []string{"A", "B", "C"}, clusters[0].Names)
	require.NoError(t, clusters[0].Matrix.Validate())
	require.Equal(t, d.Root, len(d.Nodes)-1)
}

func TestTree_SingleMotif(t *testing.T) {
	one := []motif.Motif{{Name: "solo", Matrix: motif.PWM{{1, 0, 0, 0}}}}
	clusters, d, err := Tree(one, 0.2, "m", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	require.Equal(t, []string{"solo"}, clusters[0].Names)
	require.Equal(t, 1, len(d.Nodes))
	require.True(t, d.Nodes[0].IsLeaf())
}

func TestTree_HeightsNonDecreasingAlongPath(t *testing.T) {
	// Parent heights are merge distances between representatives; a
	// cut at any node's height must include that node's subtree
	// intact. Verify children of every internal node index earlier
	// nodes and that cutting at the root height yields one cluster.
	clusters, d, err := Tree(threeMotifs(), math.Inf(1), "m", linearOptions(t))
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	for i, n := range d.Nodes {
		if n.IsLeaf() {
			continue
		}
		require.Less(t, n.Left, i)
		require.Less(t, n.Right, i)
	}
	root := d.Nodes[d.Root]
	require.Len(t, d.Cut(root.Height), 1)
}

func TestTree_InvalidInput(t *testing.T) {
	_, _, err := Tree([]motif.Motif{{Name: "empty"}}, 0.2, "m", DefaultOptions())
	require.ErrorIs(t, err, motif.ErrEmptyMatrix)
}
