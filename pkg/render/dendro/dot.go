// Package dendro renders merge dendrograms as Graphviz diagrams.
//
// ToDOT lays the tree out top-down: leaves are the input motifs,
// internal nodes show the merge height and the consensus of the merged
// matrix. Nodes at or below the cut threshold are filled to make the
// selected clusters visible.
package dendro

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/strandlab/motifmerge/pkg/merge"
)

// Options configures dendrogram rendering.
type Options struct {
	// Threshold highlights the subtrees a cut at this height selects.
	// NaN disables highlighting.
	Threshold float64

	// Detailed includes member names and consensus strings in labels.
	Detailed bool
}

// ToDOT converts a dendrogram to Graphviz DOT format. The resulting
// string can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(d *merge.Dendrogram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dendrogram {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [dir=none];\n")
	buf.WriteString("\n")

	selected := selectedNodes(d, opts.Threshold)
	for i, n := range d.Nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if n.IsLeaf() {
			attrs = append(attrs, "shape=plaintext", "style=\"\"")
		}
		if selected[i] {
			attrs = append(attrs, "fillcolor=lightblue", "style=\"rounded,filled\"")
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i, n := range d.Nodes {
		if n.IsLeaf() {
			continue
		}
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", i, n.Left)
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", i, n.Right)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n merge.DendroNode, detailed bool) string {
	if n.IsLeaf() {
		return strings.Join(n.Rep.Names, "+")
	}
	label := fmt.Sprintf("h=%.4f", n.Height)
	if detailed {
		label += "\n" + n.Rep.Matrix.Consensus()
	}
	return label
}

// selectedNodes marks the cluster roots a cut at threshold produces.
func selectedNodes(d *merge.Dendrogram, threshold float64) map[int]bool {
	selected := make(map[int]bool)
	if math.IsNaN(threshold) {
		return selected
	}
	for _, idx := range d.Cut(threshold) {
		selected[idx] = true
	}
	return selected
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
