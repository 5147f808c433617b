package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/config"
	pkgio "github.com/matzehuels/flowchart/pkg/io"
	"github.com/matzehuels/flowchart/pkg/pipeline"
)

// arrangeCommand creates the arrange command for computing positions and connectors.
func (c *CLI) arrangeCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "arrange [nodes file]",
		Short: "Arrange nodes and route their connectors",
		Long: `Arrange nodes and route their connectors.

The input lists nodes with their dependencies (.json, .yaml or .toml). The
result is written as a layout document holding every node position, the
connector paths and the anchors in use.

With --watch the input is re-arranged every time it is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}
			return c.runArrange(cmd.Context(), cfg, arrangeJob{
				input:   args[0],
				output:  outputPath(args[0], output, ".layout.json"),
				opts:    opts,
				noCache: flags.noCache,
				watch:   watch,
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-arrange whenever the input changes")

	return cmd
}

type arrangeJob struct {
	input   string
	output  string
	opts    pipeline.Options
	noCache bool
	watch   bool
}

func (c *CLI) runArrange(ctx context.Context, cfg config.Config, job arrangeJob) error {
	runner, err := c.newRunner(ctx, cfg, job.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if err := c.arrangeOnce(ctx, runner, job); err != nil {
		if !job.watch {
			return err
		}
		c.Logger.Error("arrange failed", "input", job.input, "error", err)
	}
	if !job.watch {
		return nil
	}

	changed := make(chan struct{}, 1)
	stop, err := config.WatchFile(job.input, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer stop()

	printInfo("Watching %s (Ctrl+C to stop)", job.input)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			if err := c.arrangeOnce(ctx, runner, job); err != nil {
				c.Logger.Error("arrange failed", "input", job.input, "error", err)
			}
		}
	}
}

// arrangeOnce reads the input, runs the pipeline and writes the layout document.
func (c *CLI) arrangeOnce(ctx context.Context, runner *pipeline.Runner, job arrangeJob) error {
	prog := newProgress(c.Logger)

	res, err := c.execute(ctx, runner, job.input, job.opts)
	if err != nil {
		return err
	}
	if err := pkgio.ExportResult(res, job.output); err != nil {
		return fmt.Errorf("write output %s: %w", job.output, err)
	}
	prog.done("Arranged " + job.input)

	printSuccess("Layout complete")
	printFile(job.output)
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheHit)
	if res.Stats.DanglingDeps > 0 {
		printWarning("%d dangling dependencies ignored", res.Stats.DanglingDeps)
	}
	return nil
}

// execute loads a nodes file and arranges it.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (*pipeline.Result, error) {
	g, err := pkgio.ReadNodesFile(input)
	if err != nil {
		return nil, fmt.Errorf("load nodes %s: %w", input, err)
	}
	res, err := runner.Execute(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("arrange %s: %w", input, err)
	}
	return res, nil
}
