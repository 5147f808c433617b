package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/geom"
	"github.com/matzehuels/flowchart/pkg/pipeline"
	"github.com/matzehuels/flowchart/pkg/route"
)

// Output is the encoded form of a pipeline result.
type Output struct {
	Nodes    []Node                   `json:"nodes"`
	Arrows   []route.Arrow            `json:"arrows"`
	Visible  map[string][]geom.Anchor `json:"visible"`
	Dangling []dangling               `json:"dangling"`
}

type dangling struct {
	Node    string `json:"node"`
	Missing string `json:"missing"`
}

// NewOutput converts res into its wire form.
func NewOutput(res *pipeline.Result) Output {
	out := Output{
		Nodes:    EncodeNodes(res.Graph),
		Arrows:   res.Arrows,
		Visible:  res.Visible,
		Dangling: make([]dangling, len(res.Dangling)),
	}
	if out.Arrows == nil {
		out.Arrows = []route.Arrow{}
	}
	if out.Visible == nil {
		out.Visible = map[string][]geom.Anchor{}
	}
	for i, d := range res.Dangling {
		out.Dangling[i] = dangling{Node: d.Node, Missing: d.Missing}
	}
	return out
}

// EncodeNodes returns g's nodes, with their current positions, in wire form.
func EncodeNodes(g *flow.Graph) []Node {
	if g == nil {
		return []Node{}
	}
	nodes := g.Nodes()
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Node{
			ID:     n.ID,
			Deps:   n.Deps,
			X:      n.Position.X,
			Y:      n.Position.Y,
			Width:  n.Box.Width,
			Height: n.Box.Height,
		}
	}
	return out
}

// WriteResult encodes res as indented JSON and writes it to w.
func WriteResult(res *pipeline.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewOutput(res)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportResult writes res to a JSON file at path.
// This is a convenience wrapper around [WriteResult] for file-based output.
func ExportResult(res *pipeline.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteResult(res, f)
}
