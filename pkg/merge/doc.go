// Package merge implements the motif merging engine: alignment-aware
// distances between position weight matrices, weighted consensus
// construction ("dilution"), and two clustering strategies that
// collapse a motif collection into a smaller consensus set.
//
// # Architecture
//
// The engine is built from three primitives:
//
//  1. Distance: slides one PWM across the other, scores every
//     overlapping offset with Jensen-Shannon divergence per column
//     plus gap penalties for the unaligned overhangs, and returns the
//     best (score, offset) pair.
//  2. Dilute: renormalizes a weighted superposition of aligned
//     matrices back into a valid PWM.
//  3. Superposition: combines two weighted matrices at a chosen
//     offset, filling uncovered positions with background.
//
// Two clustering strategies consume these primitives:
//
//   - Iterative: greedily merges the globally closest pair until no
//     pair is within the threshold. After each merge only the
//     distances involving the new member are recomputed.
//   - Tree: builds a full agglomerative dendrogram with size-weighted
//     average linkage, then cuts it at the threshold into flat
//     clusters.
//
// Pairwise produces the raw distance table without merging, for
// diagnostics.
//
// Gap-penalty and column-combine policies are small closed sets of
// named strategies resolved once via ResolveGap and ResolveCombine;
// unknown names fail before any motif is touched.
//
// All operations are pure: input motifs are never mutated, and
// independent distance evaluations run concurrently over shared
// read-only matrices.
package merge
