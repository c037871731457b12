package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strandlab/motifmerge/pkg/format"
	"github.com/strandlab/motifmerge/pkg/merge"
	"github.com/strandlab/motifmerge/pkg/render/dendro"
)

// Output formats accepted by the render command.
const (
	formatSVG = "svg"
	formatPNG = "png"
	formatDOT = "dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string  // output file path
	outFormat string  // svg, png, or dot
	threshold float64 // cut height to highlight
	detailed  bool    // include consensus strings in node labels
	gapPolicy string
	gapBase   float64
	combine   string
}

// renderCommand creates the dendrogram rendering command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Draw the merge dendrogram for a motif set",
		Long: `Render builds the full merge tree for a motif file and draws it with
Graphviz. Clusters selected by cutting at the threshold are
highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				opts.threshold = c.cfg.Merge.Threshold
			}
			if !cmd.Flags().Changed("gap") {
				opts.gapPolicy = c.cfg.Merge.GapPolicy
			}
			if !cmd.Flags().Changed("gap-base") {
				opts.gapBase = c.cfg.Merge.GapBase
			}
			if !cmd.Flags().Changed("combine") {
				opts.combine = c.cfg.Merge.Combine
			}
			return c.runRender(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default derived from input)")
	cmd.Flags().StringVar(&opts.outFormat, "format", formatSVG, "output format: svg, png, or dot")
	cmd.Flags().Float64VarP(&opts.threshold, "threshold", "t", merge.DefaultThreshold, "cut height to highlight")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include consensus strings in node labels")
	cmd.Flags().StringVar(&opts.gapPolicy, "gap", merge.DefaultGapPolicy, "gap penalty: linear, quadratic, cubic, or exp")
	cmd.Flags().Float64Var(&opts.gapBase, "gap-base", merge.DefaultGapBase, "gap penalty base factor")
	cmd.Flags().StringVar(&opts.combine, "combine", merge.DefaultCombinePolicy, "column combine norm: l1, l2, l3, or max")

	return cmd
}

func (c *CLI) runRender(path string, opts *renderOpts) error {
	engineOpts, err := merge.NewOptions(opts.gapPolicy, opts.gapBase, opts.combine)
	if err != nil {
		return err
	}
	motifs, err := format.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	p := newProgress(c.Logger)
	_, d, err := merge.Tree(motifs, opts.threshold, c.cfg.Merge.Prefix, engineOpts)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Built dendrogram over %d motifs", len(motifs)))

	dot := dendro.ToDOT(d, dendro.Options{
		Threshold: opts.threshold,
		Detailed:  opts.detailed,
	})

	var data []byte
	switch opts.outFormat {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		data, err = dendro.RenderSVG(dot)
	case formatPNG:
		data, err = dendro.RenderPNG(dot)
	default:
		return fmt.Errorf("unknown format %q (want svg, png, or dot)", opts.outFormat)
	}
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(path, ".txt") + "." + opts.outFormat
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	printFile(out)
	return nil
}
