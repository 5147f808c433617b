package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/buildinfo"
	"github.com/matzehuels/flowchart/pkg/cache"
	"github.com/matzehuels/flowchart/pkg/config"
	"github.com/matzehuels/flowchart/pkg/layout"
	"github.com/matzehuels/flowchart/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "flowchart"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
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
		Use:   appName,
		Short: "Flowchart arranges dependency diagrams and routes their connectors",
		Long: `Flowchart lays out a set of boxes that depend on each other as a tidy tree,
picks the sides each connector attaches to and computes the connector paths.

Input files list nodes with their dependencies (JSON, YAML or TOML). The result
can be written as a layout document, drawn as SVG, or served to editors over
HTTP and websockets.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "settings file (TOML)")

	root.AddCommand(c.arrangeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, falling back to the built-in defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	ttl, err := cfg.CacheTTL()
	if err != nil {
		return nil, err
	}
	store, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, cfg.Keyer(), c.Logger)
	r.TTL = ttl
	return r, nil
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cfg.CacheOptions())
}

// =============================================================================
// Layout Flags
// =============================================================================

// layoutFlags are the arrangement flags shared by arrange and render.
// Only flags the user actually set override the config file.
type layoutFlags struct {
	direction string
	axisGap   float64
	crossGap  float64
	groupGap  float64
	strategy  string
	noCache   bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	s := layout.DefaultSpacing
	cmd.Flags().StringVarP(&f.direction, "direction", "d", layout.Vertical.String(), "layout direction: vertical, horizontal")
	cmd.Flags().Float64Var(&f.axisGap, "axis-gap", s.AxisGap, "gap between a parent and its children")
	cmd.Flags().Float64Var(&f.crossGap, "cross-gap", s.CrossGap, "gap between leaf siblings")
	cmd.Flags().Float64Var(&f.groupGap, "group-gap", s.GroupGap, "gap after a sibling that has children")
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "blend", "connector path: blend, straight, orthogonal, bezier")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options merges the config file with the flags the user changed.
func (f *layoutFlags) options(cmd *cobra.Command, cfg config.Config) (pipeline.Options, error) {
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return pipeline.Options{}, err
	}

	flags := cmd.Flags()
	if opts.Spacing == nil {
		s := layout.DefaultSpacing
		opts.Spacing = &s
	}
	if flags.Changed("direction") {
		dir, err := layout.ParseDirection(f.direction)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Direction = dir
	}
	if flags.Changed("axis-gap") {
		opts.Spacing.AxisGap = f.axisGap
	}
	if flags.Changed("cross-gap") {
		opts.Spacing.CrossGap = f.crossGap
	}
	if flags.Changed("group-gap") {
		opts.Spacing.GroupGap = f.groupGap
	}
	if flags.Changed("strategy") {
		opts.Strategy = f.strategy
	}
	return opts, nil
}

// =============================================================================
// Paths
// =============================================================================

// outputPath replaces the extension of input with suffix unless output is set.
func outputPath(input, output, suffix string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}
