package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/geom"
)

// Default node box used when an input node has no width or height.
const (
	DefaultWidth  = 200.0
	DefaultHeight = 100.0
)

// Format names a node list encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath returns the format for a file extension.
// Unknown extensions return an INVALID_FORMAT error.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported node file %q (want .json, .yaml or .toml)", path)
}

type document struct {
	Nodes []Node `json:"nodes" yaml:"nodes" toml:"nodes"`
}

// Node is the wire form of a diagram node.
type Node struct {
	ID     string   `json:"id" yaml:"id" toml:"id"`
	Deps   []string `json:"deps,omitempty" yaml:"deps,omitempty" toml:"deps,omitempty"`
	X      float64  `json:"x" yaml:"x" toml:"x"`
	Y      float64  `json:"y" yaml:"y" toml:"y"`
	Width  float64  `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`
	Height float64  `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty"`
}

// ReadNodes decodes a node list from r into a graph.
//
// Decoding errors are INVALID_FORMAT. Node validation errors (empty or
// duplicate ids, negative sizes) keep their own codes and are wrapped with
// the offending id. ReadNodes does not close r.
func ReadNodes(r io.Reader, format Format) (*flow.Graph, error) {
	var doc document
	if err := decode(r, format, &doc); err != nil {
		return nil, err
	}
	return doc.graph()
}

// ReadNodesFile reads the node list at path, choosing the decoder from the
// file extension.
func ReadNodesFile(path string) (*flow.Graph, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, err := ReadNodes(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// BuildGraph converts wire nodes into a graph, applying the default box.
func BuildGraph(nodes []Node) (*flow.Graph, error) {
	return document{Nodes: nodes}.graph()
}

func decode(r io.Reader, format Format, v any) error {
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(v)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(v)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(v)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", string(format))
	}
	if err == io.EOF {
		return errors.New(errors.ErrCodeInvalidFormat, "empty %s document", string(format))
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", string(format))
	}
	return nil
}

func (d document) graph() (*flow.Graph, error) {
	g := flow.New()
	for _, n := range d.Nodes {
		nd := flow.Node{
			ID:       n.ID,
			Deps:     n.Deps,
			Position: geom.Point{X: n.X, Y: n.Y},
			Box:      geom.Size{Width: n.Width, Height: n.Height},
		}
		if nd.Box.Width == 0 {
			nd.Box.Width = DefaultWidth
		}
		if nd.Box.Height == 0 {
			nd.Box.Height = DefaultHeight
		}
		if err := g.AddNode(nd); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	return g, nil
}
