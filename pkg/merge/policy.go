package merge

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownGapPolicy is returned by [ResolveGap] when the policy
	// name is not one of linear, quadratic, cubic, exp.
	ErrUnknownGapPolicy = errors.New("merge: unknown gap penalty policy")

	// ErrUnknownCombine is returned by [ResolveCombine] when the norm
	// name is not one of l1, l2, l3, max.
	ErrUnknownCombine = errors.New("merge: unknown combine policy")
)

// Gap penalty policy names accepted by [ResolveGap].
const (
	GapLinear    = "linear"
	GapQuadratic = "quadratic"
	GapCubic     = "cubic"
	GapExp       = "exp"
)

// Combine policy names accepted by [ResolveCombine].
const (
	CombineL1  = "l1"
	CombineL2  = "l2"
	CombineL3  = "l3"
	CombineMax = "max"
)

// Defaults per the tool configuration: exponential gap penalty with
// base 0.05, L1 combine, merge threshold 0.2.
const (
	DefaultGapPolicy     = GapExp
	DefaultGapBase       = 0.05
	DefaultCombinePolicy = CombineL1
	DefaultThreshold     = 0.2
	DefaultPrefix        = "merged"
)

// ValidGapPolicies is the set of recognized gap penalty names.
var ValidGapPolicies = map[string]bool{
	GapLinear:    true,
	GapQuadratic: true,
	GapCubic:     true,
	GapExp:       true,
}

// ValidCombinePolicies is the set of recognized combine norm names.
var ValidCombinePolicies = map[string]bool{
	CombineL1:  true,
	CombineL2:  true,
	CombineL3:  true,
	CombineMax: true,
}

// GapPenalty maps the length of an unaligned overhang run to a cost.
// Every policy is monotonically non-decreasing and zero at length 0.
type GapPenalty func(run int) float64

// Combine aggregates per-column divergences of an alignment overlap
// into one scalar. The slice is never empty.
type Combine func(divs []float64) float64

// ResolveGap returns the gap penalty function for the named policy
// with the given base constant. Resolution happens once at
// configuration time; unknown names return ErrUnknownGapPolicy.
func ResolveGap(name string, base float64) (GapPenalty, error) {
	switch name {
	case GapLinear:
		return func(n int) float64 { return base * float64(n) }, nil
	case GapQuadratic:
		return func(n int) float64 { return base * float64(n) * float64(n) }, nil
	case GapCubic:
		return func(n int) float64 { return base * float64(n) * float64(n) * float64(n) }, nil
	case GapExp:
		// Saturating growth anchored at zero: c·(e^n - 1).
		return func(n int) float64 { return base * (math.Exp(float64(n)) - 1) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGapPolicy, name)
	}
}

// ResolveCombine returns the combine function for the named norm.
// The Lk norms are normalized by overlap length (the power mean), so
// scores are comparable across alignments of different widths; max is
// the L-infinity norm.
func ResolveCombine(name string) (Combine, error) {
	switch name {
	case CombineL1:
		return powerMean(1), nil
	case CombineL2:
		return powerMean(2), nil
	case CombineL3:
		return powerMean(3), nil
	case CombineMax:
		return func(divs []float64) float64 {
			best := divs[0]
			for _, d := range divs[1:] {
				if d > best {
					best = d
				}
			}
			return best
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCombine, name)
	}
}

func powerMean(k float64) Combine {
	return func(divs []float64) float64 {
		var sum float64
		for _, d := range divs {
			sum += math.Pow(d, k)
		}
		return math.Pow(sum/float64(len(divs)), 1/k)
	}
}

// Options carries the resolved alignment policies used by every
// distance evaluation. Resolve once with [NewOptions] (or assemble
// manually) and share across an entire merge invocation.
type Options struct {
	Gap     GapPenalty
	Combine Combine
}

// NewOptions resolves both policy names into an Options value.
// Fails fast with ErrUnknownGapPolicy or ErrUnknownCombine before any
// motif processing begins.
func NewOptions(gapPolicy string, gapBase float64, combinePolicy string) (Options, error) {
	gap, err := ResolveGap(gapPolicy, gapBase)
	if err != nil {
		return Options{}, err
	}
	comb, err := ResolveCombine(combinePolicy)
	if err != nil {
		return Options{}, err
	}
	return Options{Gap: gap, Combine: comb}, nil
}

// DefaultOptions returns the default policies (exp gap with base 0.05,
// L1 combine).
func DefaultOptions() Options {
	opts, err := NewOptions(DefaultGapPolicy, DefaultGapBase, DefaultCombinePolicy)
	if err != nil {
		panic(err) // defaults are always resolvable
	}
	return opts
}
