package merge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strandlab/motifmerge/pkg/motif"
)

func threeMotifs() []motif.Motif {
	return []motif.Motif{
		{Name: "A", Matrix: motif.PWM{{0.9, 0.1, 0, 0}}},
		{Name: "B", Matrix: motif.PWM{{0.85, 0.15, 0, 0}}},
		{Name: "C", Matrix: motif.PWM{{0, 0, 0.9, 0.1}}},
	}
}

// linearOptions matches the end-to-end example configuration: L1
// combine, linear gap penalty with base 0.05.
func linearOptions(t *testing.T) Options {
	t.Helper()
	opts, err := NewOptions(GapLinear, 0.05, CombineL1)
	require.NoError(t, err)
	return opts
}

func TestIterative_EndToEnd(t *testing.T) {
	out, err := Iterative(threeMotifs(), 0.2, linearOptions(t))
	require.NoError(t, err)
	require.Len(t, out, 2)

	// Untouched members keep their order; merge results are appended.
	require.Equal(t, []string{"C"}, out[0].Names)

	require.Equal(t, []string{"A", "B"}, out[1].Names)
	require.Equal(t, "A+B", out[1].Label)
	require.InDelta(t, 0.875, out[1].Matrix[0][0], 1e-9)
	require.InDelta(t, 0.125, out[1].Matrix[0][1], 1e-9)
}

func TestIterative_ThresholdBelowAll(t *testing.T) {
	out, err := Iterative(threeMotifs(), -1, linearOptions(t))
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, m := range out {
		require.Len(t, m.Names, 1)
		require.Equal(t, threeMotifs()[i].Name, m.Names[0])
	}
}

func TestIterative_ThresholdInfinityCollapsesAll(t *testing.T) {
	out, err := Iterative(threeMotifs(), math.Inf(1), linearOptions(t))
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.ElementsMatch(t, []string{"A", "B", "C"}, out[0].Names)
	require.NoError(t, out[0].Matrix.Validate())
}

func TestIterative_SmallInputs(t *testing.T) {
	out, err := Iterative(nil, 0.2, DefaultOptions())
	require.NoError(t, err)
	require.Empty(t, out)

	one := []motif.Motif{{Name: "solo", Matrix: motif.PWM{{1, 0, 0, 0}}}}
	out, err = Iterative(one, 0.2, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "solo", out[0].Label)
}

func TestIterative_InvalidInput(t *testing.T) {
	bad := []motif.Motif{{Name: "empty"}}
	_, err := Iterative(bad, 0.2, DefaultOptions())
	require.ErrorIs(t, err, motif.ErrEmptyMatrix)
}

func TestIterative_DeterministicTieBreak(t *testing.T) {
	// Two identical close pairs: (P1, P2) and (Q1, Q2). Both pairs tie
	// at the global minimum; the first-encountered pair in working-set
	// order must merge first, so repeated runs agree.
	p := motif.PWM{{0.9, 0.1, 0, 0}}
	q := motif.PWM{{0, 0, 0.1, 0.9}}
	motifs := []motif.Motif{
		{Name: "P1", Matrix: p.Clone()},
		{Name: "P2", Matrix: p.Clone()},
		{Name: "Q1", Matrix: q.Clone()},
		{Name: "Q2", Matrix: q.Clone()},
	}

	first, err := Iterative(motifs, 0.1, linearOptions(t))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Iterative(motifs, 0.1, linearOptions(t))
		require.NoError(t, err)
		require.Equal(t, first, again)
	}

	require.Len(t, first, 2)
	require.Equal(t, []string{"P1", "P2"}, first[0].Names)
	require.Equal(t, []string{"Q1", "Q2"}, first[1].Names)
}

func TestIterative_MonotoneShrink(t *testing.T) {
	// n motifs can shrink by at most n-1 merges; with an infinite
	// threshold exactly one member remains, proving each step removed
	// exactly one.
	motifs := []motif.Motif{
		{Name: "a", Matrix: motif.PWM{{0.7, 0.1, 0.1, 0.1}}},
		{Name: "b", Matrix: motif.PWM{{0.1, 0.7, 0.1, 0.1}}},
		{Name: "c", Matrix: motif.PWM{{0.1, 0.1, 0.7, 0.1}}},
		{Name: "d", Matrix: motif.PWM{{0.1, 0.1, 0.1, 0.7}}},
		{Name: "e", Matrix: motif.PWM{{0.25, 0.25, 0.25, 0.25}}},
	}
	out, err := Iterative(motifs, math.Inf(1), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Names, 5)
}
