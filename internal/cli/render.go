package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/pipeline"
	"github.com/matzehuels/flowchart/pkg/render/nodelink"
	"github.com/matzehuels/flowchart/pkg/render/svg"
)

// Render output formats.
const (
	formatSVG      = "svg"      // native drawing with the routed connectors
	formatDOT      = "dot"      // Graphviz source with pinned positions
	formatGraphviz = "graphviz" // DOT rendered to SVG by neato
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string
	format  string
	anchors bool
}

// renderCommand creates the render command for drawing an arranged diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var flags layoutFlags
	ro := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render [nodes file]",
		Short: "Arrange nodes and draw the diagram",
		Long: `Arrange nodes and draw the diagram.

Formats:
  svg       native SVG drawing with the routed connectors (default)
  dot       Graphviz source with every node pinned to its position
  graphviz  the DOT source rendered to SVG by the neato engine

Use --output - to write to stdout.`,
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
			runner, err := c.newRunner(cmd.Context(), cfg, flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			return c.runRender(cmd.Context(), runner, args[0], opts, ro)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (default: <input>.svg or <input>.dot)")
	cmd.Flags().StringVarP(&ro.format, "format", "f", ro.format, "output format: svg, dot, graphviz")
	cmd.Flags().BoolVar(&ro.anchors, "anchors", false, "mark the anchors connectors attach to (svg)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, ro renderOpts) error {
	ext, err := formatExt(ro.format)
	if err != nil {
		return err
	}

	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	res, err := c.execute(ctx, runner, input, opts)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	data, err := c.draw(ctx, res, opts, ro)
	if err != nil {
		return fmt.Errorf("render %s: %w", ro.format, err)
	}
	prog.done("Rendered " + ro.format)

	if ro.output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	path := outputPath(input, ro.output, ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Render complete")
	printFile(path)
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheHit)
	return nil
}

// draw produces the output document for the chosen format.
func (c *CLI) draw(ctx context.Context, res *pipeline.Result, opts pipeline.Options, ro renderOpts) ([]byte, error) {
	switch ro.format {
	case formatDOT:
		return []byte(nodelink.ToDOT(res.Graph, res.Arrows)), nil
	case formatGraphviz:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(res.Graph, res.Arrows))
	default:
		svgOpts := []svg.Option{
			svg.WithArrowSize(*opts.ArrowInset),
			svg.WithStrokeWidth(*opts.StrokeWidth),
		}
		if ro.anchors {
			svgOpts = append(svgOpts, svg.WithAnchors())
		}
		return svg.Render(res.Graph, res.Arrows, svgOpts...), nil
	}
}

func formatExt(format string) (string, error) {
	switch format {
	case formatSVG, formatGraphviz:
		return ".svg", nil
	case formatDOT:
		return ".dot", nil
	}
	return "", fmt.Errorf("unknown format %q (must be svg, dot or graphviz)", format)
}
