package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/strandlab/motifmerge/pkg/format"
	"github.com/strandlab/motifmerge/pkg/jaspar"
	"github.com/strandlab/motifmerge/pkg/motif"
)

// fetchOpts holds the command-line flags for the fetch command.
type fetchOpts struct {
	output    string // output motif file
	outFormat string // output format
	search    bool   // treat args as a search query instead of matrix IDs
	pick      bool   // interactively pick from search results
	limit     int    // maximum search hits
	refresh   bool   // bypass the response cache
	noCache   bool   // disable the response cache entirely
}

// fetchCommand creates the JASPAR download command.
func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOpts

	cmd := &cobra.Command{
		Use:   "fetch [matrix-id...]",
		Short: "Download matrices from the JASPAR database",
		Long: `Fetch downloads position frequency matrices from the JASPAR REST API
by matrix ID (e.g. MA0004.1) and writes them as a motif file ready for
merging. With --search the arguments are a free-text query instead;
--pick opens an interactive list to choose from the hits.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(withLogger(cmd.Context(), c.Logger), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.outFormat, "format", format.FormatJASPAR, "output format: jaspar or matrix")
	cmd.Flags().BoolVarP(&opts.search, "search", "s", false, "treat arguments as a search query")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "interactively pick from search results (implies --search)")
	cmd.Flags().IntVar(&opts.limit, "limit", 25, "maximum search results")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the response cache")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, args []string, opts *fetchOpts) error {
	backend := c.newCache(ctx, opts.noCache)
	defer backend.Close()
	client := jaspar.NewClient(backend, c.cacheTTL())

	ids := args
	if opts.search || opts.pick {
		query := args[0]
		sp := newSpinner(ctx, fmt.Sprintf("Searching JASPAR for %q...", query))
		sp.start()
		hits, err := client.Search(ctx, query, opts.limit)
		sp.stop()
		if err != nil {
			return fmt.Errorf("search %q: %w", query, err)
		}
		if len(hits) == 0 {
			printInfo("No matrices match %q", query)
			return nil
		}

		if opts.pick {
			selected, err := pickMatrices(hits)
			if err != nil {
				return err
			}
			if len(selected) == 0 {
				printInfo("Nothing selected")
				return nil
			}
			hits = selected
		}
		ids = ids[:0]
		for _, h := range hits {
			ids = append(ids, h.MatrixID)
		}
	}

	logger := loggerFromContext(ctx)
	p := newProgress(logger)
	motifs := make([]motif.Motif, 0, len(ids))
	for _, id := range ids {
		m, err := client.FetchMatrix(ctx, id, opts.refresh)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", id, err)
		}
		logger.Debug("fetched matrix", "id", id, "width", len(m.Matrix))
		motifs = append(motifs, m)
	}
	p.done(fmt.Sprintf("Fetched %d matrices", len(motifs)))

	return c.writeMotifs(opts.output, motifs, opts.outFormat)
}

// pickMatrices runs the interactive search-hit picker.
func pickMatrices(hits []jaspar.MatrixSummary) ([]jaspar.MatrixSummary, error) {
	model := newMatrixListModel(hits)
	prog := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	final, err := prog.Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(matrixListModel)
	if !ok {
		return nil, nil
	}
	return m.selected(), nil
}
