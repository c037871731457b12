package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strandlab/motifmerge/pkg/format"
	"github.com/strandlab/motifmerge/pkg/merge"
)

// distancesCommand creates the pairwise distance report command.
func (c *CLI) distancesCommand() *cobra.Command {
	var (
		output    string
		gapPolicy string
		gapBase   float64
		combine   string
	)

	cmd := &cobra.Command{
		Use:   "distances [file]",
		Short: "Print the pairwise motif distance report",
		Long: `Distances computes the best-alignment distance for every motif pair
and writes a tab-separated report (name, name, distance), useful for
picking a merge threshold before running merge.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("gap") {
				gapPolicy = c.cfg.Merge.GapPolicy
			}
			if !cmd.Flags().Changed("gap-base") {
				gapBase = c.cfg.Merge.GapBase
			}
			if !cmd.Flags().Changed("combine") {
				combine = c.cfg.Merge.Combine
			}

			opts, err := merge.NewOptions(gapPolicy, gapBase, combine)
			if err != nil {
				return err
			}
			motifs, err := format.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			pairs, err := merge.Pairwise(motifs, opts)
			if err != nil {
				return err
			}

			if output == "" {
				return merge.WriteReport(os.Stdout, pairs)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := merge.WriteReport(f, pairs); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&gapPolicy, "gap", merge.DefaultGapPolicy, "gap penalty: linear, quadratic, cubic, or exp")
	cmd.Flags().Float64Var(&gapBase, "gap-base", merge.DefaultGapBase, "gap penalty base factor")
	cmd.Flags().StringVar(&combine, "combine", merge.DefaultCombinePolicy, "column combine norm: l1, l2, l3, or max")

	return cmd
}
