// Package cli implements the flowchart command-line interface.
//
// The CLI reads node files (JSON, YAML or TOML), arranges them into a
// dependency tree, routes connectors between them and writes the result as a
// layout document, an SVG drawing or a Graphviz DOT file. It can also run the
// HTTP and websocket server used by interactive editors.
//
// # Commands
//
//   - arrange: Compute positions and connectors, write <input>.layout.json
//   - render: Draw the arranged diagram as svg, dot or graphviz output
//   - serve: Start the HTTP/websocket server
//   - cache: Inspect or clear the layout cache
//   - completion: Generate shell completion scripts
//
// # Configuration
//
// Every command accepts --config pointing at a TOML settings file (see
// package config). Flags set on the command line override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging through the
// charmbracelet/log library.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Arranged nodes.json (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
