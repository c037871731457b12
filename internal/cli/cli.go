// Package cli implements the motifmerge command-line interface.
//
// This package provides commands for merging motif sets, computing
// pairwise distance reports, fetching matrices from JASPAR, rendering
// dendrograms, and managing the response cache. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
//   - merge: Collapse redundant motifs via iterative or tree merging
//   - distances: Print the pairwise distance report
//   - fetch: Search and download matrices from the JASPAR database
//   - render: Draw the merge dendrogram as SVG or PNG
//   - cache: Manage the response cache
//   - serve: Run the merge engine as an HTTP service
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
// Loggers are passed through context.Context to allow structured
// progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/strandlab/motifmerge/pkg/buildinfo"
	"github.com/strandlab/motifmerge/pkg/cache"
	"github.com/strandlab/motifmerge/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "motifmerge"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Motifmerge collapses redundant DNA motifs into consensus matrices",
		Long:         `Motifmerge aligns position weight matrices, scores their divergence, and merges near-duplicates into weighted consensus motifs, either greedily or via a full merge tree.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/motifmerge/config.toml)")

	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.distancesCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())

	return root
}

// newCache builds the response cache backend from config: Redis when
// an address is configured, otherwise the file cache. Any setup
// failure degrades to the null backend rather than failing the
// command.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NullCache{}
	}
	if addr := c.cfg.Cache.RedisAddr; addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: addr})
		if err == nil {
			return rc
		}
		c.Logger.Warn("redis cache unavailable, falling back to file cache", "addr", addr, "err", err)
	}
	fc, err := cache.NewFileCache(c.cfg.Cache.Dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "err", err)
		return cache.NullCache{}
	}
	return fc
}

// cacheTTL returns the configured response TTL.
func (c *CLI) cacheTTL() time.Duration {
	return time.Duration(c.cfg.Cache.TTLHours) * time.Hour
}
