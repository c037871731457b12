// Package format reads and writes motif files.
//
// Two text formats are supported:
//
//   - jaspar: the JASPAR PFM layout — a ">ID name" header followed by
//     four "A [ 4 19 0 ... ]" count rows, one per symbol. Counts are
//     normalized to frequencies on read.
//   - matrix: a ">name" header followed by one tab- or space-separated
//     A C G T row per position. Rows are normalized by their sum, so
//     both frequencies and raw counts parse.
//
// ReadFile auto-detects the format from the content. The merge engine
// itself never touches files; this package is the boundary where the
// PWM invariant is established (every parsed motif is validated before
// being returned).
package format

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/strandlab/motifmerge/pkg/motif"
)

// Format names accepted by Read and Write.
const (
	FormatJASPAR = "jaspar"
	FormatMatrix = "matrix"
)

var (
	// ErrUnknownFormat is returned for a format name that is neither
	// "jaspar" nor "matrix".
	ErrUnknownFormat = errors.New("format: unknown motif format")

	// ErrSyntax is returned when the input cannot be parsed in the
	// requested format. The wrapped message carries the line context.
	ErrSyntax = errors.New("format: malformed motif file")
)

// Read parses all motifs from r in the named format. Every parsed
// motif is validated; a zero-count column or empty matrix fails the
// whole read (no partial output).
func Read(r io.Reader, format string) ([]motif.Motif, error) {
	var (
		motifs []motif.Motif
		err    error
	)
	switch format {
	case FormatJASPAR:
		motifs, err = readJASPAR(r)
	case FormatMatrix:
		motifs, err = readMatrix(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if err := motif.ValidateAll(motifs); err != nil {
		return nil, err
	}
	return motifs, nil
}

// ReadFile reads motifs from path, auto-detecting the format.
func ReadFile(path string) ([]motif.Motif, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(strings.NewReader(string(data)), Detect(data))
}

// Detect inspects file content and returns the likely format name.
// A symbol-letter row opening with "A [" (or "A  [") marks JASPAR;
// anything else is treated as the plain matrix layout.
func Detect(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ">") {
			continue
		}
		if len(line) > 1 && (line[0] == 'A' || line[0] == 'a') &&
			strings.Contains(line, "[") {
			return FormatJASPAR
		}
		return FormatMatrix
	}
	return FormatMatrix
}

// Write serializes motifs to w in the named format.
func Write(w io.Writer, motifs []motif.Motif, format string) error {
	switch format {
	case FormatJASPAR:
		return writeJASPAR(w, motifs)
	case FormatMatrix:
		return writeMatrix(w, motifs)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func readJASPAR(r io.Reader) ([]motif.Motif, error) {
	var (
		motifs []motif.Motif
		name   string
		rows   [][]float64
	)
	flush := func() error {
		if name == "" && len(rows) == 0 {
			return nil
		}
		m, err := fromCountRows(name, rows)
		if err != nil {
			return err
		}
		motifs = append(motifs, m)
		name, rows = "", nil
		return nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if err := flush(); err != nil {
				return nil, err
			}
			name = strings.TrimSpace(strings.TrimPrefix(line, ">"))
			continue
		}
		row, err := parseCountRow(line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return motifs, nil
}

// parseCountRow parses one "A [ 4 19 0 ]" symbol row into its counts.
// The symbol letter and brackets are optional so bare numeric rows
// also parse.
func parseCountRow(line string) ([]float64, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '[' || r == ']'
	})
	var row []float64
	for i, f := range fields {
		if i == 0 && len(f) == 1 && strings.ContainsAny(f, "ACGTacgt") {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad count %q in %q", ErrSyntax, f, line)
		}
		row = append(row, v)
	}
	if len(row) == 0 {
		return nil, fmt.Errorf("%w: no counts in %q", ErrSyntax, line)
	}
	return row, nil
}

// fromCountRows assembles a motif from four per-symbol count rows,
// normalizing each position to frequencies.
func fromCountRows(name string, rows [][]float64) (motif.Motif, error) {
	if len(rows) != motif.AlphabetSize {
		return motif.Motif{}, fmt.Errorf("%w: motif %q has %d symbol rows, want %d",
			ErrSyntax, name, len(rows), motif.AlphabetSize)
	}
	width := len(rows[0])
	for s := 1; s < motif.AlphabetSize; s++ {
		if len(rows[s]) != width {
			return motif.Motif{}, fmt.Errorf("%w: motif %q has ragged symbol rows", ErrSyntax, name)
		}
	}
	pwm := make(motif.PWM, width)
	for i := 0; i < width; i++ {
		var total float64
		for s := 0; s < motif.AlphabetSize; s++ {
			total += rows[s][i]
		}
		if total <= 0 {
			return motif.Motif{}, fmt.Errorf("%w: motif %q column %d has zero total",
				motif.ErrBadColumn, name, i)
		}
		for s := 0; s < motif.AlphabetSize; s++ {
			pwm[i][s] = rows[s][i] / total
		}
	}
	return motif.Motif{Name: name, Matrix: pwm}, nil
}

func readMatrix(r io.Reader) ([]motif.Motif, error) {
	var (
		motifs []motif.Motif
		name   string
		pwm    motif.PWM
		seen   bool
	)
	flush := func() error {
		if !seen {
			return nil
		}
		if len(pwm) == 0 {
			return fmt.Errorf("%w: motif %q", motif.ErrEmptyMatrix, name)
		}
		motifs = append(motifs, motif.Motif{Name: name, Matrix: pwm})
		name, pwm, seen = "", nil, false
		return nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if err := flush(); err != nil {
				return nil, err
			}
			name = strings.TrimSpace(strings.TrimPrefix(line, ">"))
			seen = true
			continue
		}
		if !seen {
			return nil, fmt.Errorf("%w: matrix row before any >name header", ErrSyntax)
		}
		fields := strings.Fields(line)
		if len(fields) != motif.AlphabetSize {
			return nil, fmt.Errorf("%w: row %q has %d values, want %d",
				ErrSyntax, line, len(fields), motif.AlphabetSize)
		}
		var col motif.Column
		var total float64
		for s, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad value %q in %q", ErrSyntax, f, line)
			}
			col[s] = v
			total += v
		}
		if total <= 0 {
			return nil, fmt.Errorf("%w: motif %q column %d has zero total",
				motif.ErrBadColumn, name, len(pwm))
		}
		for s := range col {
			col[s] /= total
		}
		pwm = append(pwm, col)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return motifs, nil
}

func writeJASPAR(w io.Writer, motifs []motif.Motif) error {
	bw := bufio.NewWriter(w)
	for _, m := range motifs {
		fmt.Fprintf(bw, ">%s\n", m.Name)
		for s := 0; s < motif.AlphabetSize; s++ {
			fmt.Fprintf(bw, "%c [", motif.Symbols[s])
			for _, col := range m.Matrix {
				fmt.Fprintf(bw, " %s", formatFreq(col[s]))
			}
			fmt.Fprint(bw, " ]\n")
		}
	}
	return bw.Flush()
}

func writeMatrix(w io.Writer, motifs []motif.Motif) error {
	bw := bufio.NewWriter(w)
	for _, m := range motifs {
		fmt.Fprintf(bw, ">%s\n", m.Name)
		for _, col := range m.Matrix {
			fmt.Fprintf(bw, "%s\t%s\t%s\t%s\n",
				formatFreq(col[0]), formatFreq(col[1]), formatFreq(col[2]), formatFreq(col[3]))
		}
	}
	return bw.Flush()
}

// formatFreq renders a frequency compactly without trailing zeros.
func formatFreq(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
