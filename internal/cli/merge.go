package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strandlab/motifmerge/pkg/format"
	"github.com/strandlab/motifmerge/pkg/merge"
	"github.com/strandlab/motifmerge/pkg/motif"
	"github.com/strandlab/motifmerge/pkg/render/dendro"
)

// Merge strategies selectable via --strategy.
const (
	strategyIterative = "iterative"
	strategyTree      = "tree"
)

// formatJSONOut dumps the full merged members (names, weights,
// matrices) instead of a plain motif file.
const formatJSONOut = "json"

// mergeOpts holds the command-line flags for the merge command.
type mergeOpts struct {
	output    string  // output file path (stdout if empty)
	outFormat string  // output motif format
	strategy  string  // iterative or tree
	threshold float64 // merge distance threshold
	gapPolicy string  // gap penalty policy name
	gapBase   float64 // gap penalty base factor
	combine   string  // column divergence combine norm
	prefix    string  // cluster label prefix (tree strategy)
	dotOut    string  // optional dendrogram DOT dump (tree strategy)
}

// mergeCommand creates the merge command.
func (c *CLI) mergeCommand() *cobra.Command {
	var opts mergeOpts

	cmd := &cobra.Command{
		Use:   "merge [file]",
		Short: "Collapse redundant motifs into weighted consensus matrices",
		Long: `Merge reads a motif file (JASPAR or plain matrix layout), repeatedly
combines the closest pair below the distance threshold, and writes the
surviving motif set. The tree strategy builds the full merge
dendrogram first and cuts it at the threshold instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyMergeDefaults(&opts, cmd)
			return c.runMerge(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.outFormat, "format", format.FormatMatrix, "output format: jaspar, matrix, or json")
	cmd.Flags().StringVar(&opts.strategy, "strategy", strategyIterative, "merge strategy: iterative or tree")
	cmd.Flags().Float64VarP(&opts.threshold, "threshold", "t", merge.DefaultThreshold, "merge distance threshold")
	cmd.Flags().StringVar(&opts.gapPolicy, "gap", merge.DefaultGapPolicy, "gap penalty: linear, quadratic, cubic, or exp")
	cmd.Flags().Float64Var(&opts.gapBase, "gap-base", merge.DefaultGapBase, "gap penalty base factor")
	cmd.Flags().StringVar(&opts.combine, "combine", merge.DefaultCombinePolicy, "column combine norm: l1, l2, l3, or max")
	cmd.Flags().StringVar(&opts.prefix, "prefix", merge.DefaultPrefix, "cluster label prefix (tree strategy)")
	cmd.Flags().StringVar(&opts.dotOut, "dot", "", "also write the dendrogram in DOT format (tree strategy)")

	return cmd
}

// applyMergeDefaults fills unset flags from the config file. Cobra
// flag defaults are the built-ins, so only explicitly-changed flags
// win over the config.
func (c *CLI) applyMergeDefaults(opts *mergeOpts, cmd *cobra.Command) {
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
	if !cmd.Flags().Changed("prefix") {
		opts.prefix = c.cfg.Merge.Prefix
	}
}

func (c *CLI) runMerge(path string, opts *mergeOpts) error {
	engineOpts, err := merge.NewOptions(opts.gapPolicy, opts.gapBase, opts.combine)
	if err != nil {
		return err
	}

	motifs, err := format.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	c.Logger.Debug("loaded motifs", "count", len(motifs), "file", path)

	p := newProgress(c.Logger)
	var merged []merge.Merged
	var d *merge.Dendrogram
	switch opts.strategy {
	case strategyIterative:
		merged, err = merge.Iterative(motifs, opts.threshold, engineOpts)
	case strategyTree:
		merged, d, err = merge.Tree(motifs, opts.threshold, opts.prefix, engineOpts)
	default:
		return fmt.Errorf("unknown strategy %q (want %s or %s)",
			opts.strategy, strategyIterative, strategyTree)
	}
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Merged %d motifs into %d", len(motifs), len(merged)))

	if opts.outFormat == formatJSONOut {
		if err := c.writeJSON(opts.output, merged); err != nil {
			return err
		}
	} else {
		out := make([]motif.Motif, len(merged))
		for i, m := range merged {
			out[i] = m.Motif()
		}
		if err := c.writeMotifs(opts.output, out, opts.outFormat); err != nil {
			return err
		}
	}

	if opts.dotOut != "" {
		if d == nil {
			return fmt.Errorf("--dot requires --strategy %s", strategyTree)
		}
		dot := dendro.ToDOT(d, dendro.Options{Threshold: opts.threshold})
		if err := os.WriteFile(opts.dotOut, []byte(dot), 0o644); err != nil {
			return err
		}
		printFile(opts.dotOut)
	}
	return nil
}

// writeJSON dumps merged members as indented JSON to path, or stdout
// when path is empty.
func (c *CLI) writeJSON(path string, merged []merge.Merged) error {
	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// writeMotifs serializes motifs to path, or stdout when path is empty.
func (c *CLI) writeMotifs(path string, motifs []motif.Motif, outFormat string) error {
	if path == "" {
		return format.Write(os.Stdout, motifs, outFormat)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := format.Write(f, motifs, outFormat); err != nil {
		return err
	}
	printFile(path)
	return nil
}
