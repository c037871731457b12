package merge

import (
	"bufio"
	"io"
	"strconv"

	"github.com/strandlab/motifmerge/pkg/motif"
)

// PairDistance is one entry of the diagnostic pairwise report.
type PairDistance struct {
	A        string  `json:"a"`
	B        string  `json:"b"`
	Distance float64 `json:"distance"`
	Offset   int     `json:"offset"`
}

// Pairwise evaluates the alignment distance for every unordered motif
// pair without merging anything. Pairs appear in stable input order:
// the first motif against each later one, then the second, and so on —
// n·(n-1)/2 entries for n motifs.
func Pairwise(motifs []motif.Motif, opts Options) ([]PairDistance, error) {
	if err := motif.ValidateAll(motifs); err != nil {
		return nil, err
	}
	pairs := make([]PairDistance, 0, len(motifs)*(len(motifs)-1)/2)
	for i := 0; i < len(motifs); i++ {
		for j := i + 1; j < len(motifs); j++ {
			d, off, err := Distance(motifs[i].Matrix, motifs[j].Matrix, opts)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, PairDistance{
				A:        motifs[i].Name,
				B:        motifs[j].Name,
				Distance: d,
				Offset:   off,
			})
		}
	}
	return pairs, nil
}

// WriteReport emits the pairwise distances as tab-separated triples,
// one "nameA\tnameB\tdistance" line per pair.
func WriteReport(w io.Writer, pairs []PairDistance) error {
	bw := bufio.NewWriter(w)
	for _, p := range pairs {
		if _, err := bw.WriteString(p.A + "\t" + p.B + "\t" + strconv.FormatFloat(p.Distance, 'f', 6, 64) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
