package io

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/geom"
	"github.com/matzehuels/flowchart/pkg/layout"
	"github.com/matzehuels/flowchart/pkg/pipeline"
)

const (
	jsonInput = `{"nodes": [
  {"id": "app", "deps": ["auth", "cache"]},
  {"id": "auth", "width": 160, "height": 60},
  {"id": "cache", "x": 5, "y": 7}
]}`

	yamlInput = `nodes:
  - id: app
    deps: [auth, cache]
  - id: auth
    width: 160
    height: 60
  - id: cache
    x: 5
    y: 7
`

	tomlInput = `[[nodes]]
id = "app"
deps = ["auth", "cache"]

[[nodes]]
id = "auth"
width = 160.0
height = 60.0

[[nodes]]
id = "cache"
x = 5.0
y = 7.0
`
)

func TestReadNodes(t *testing.T) {
	tests := []struct {
		format Format
		input  string
	}{
		{FormatJSON, jsonInput},
		{FormatYAML, yamlInput},
		{FormatTOML, tomlInput},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			g, err := ReadNodes(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadNodes: %v", err)
			}
			if got := strings.Join(g.IDs(), ","); got != "app,auth,cache" {
				t.Errorf("IDs = %s", got)
			}
			app, _ := g.Node("app")
			if strings.Join(app.Deps, ",") != "auth,cache" {
				t.Errorf("app deps = %v", app.Deps)
			}
			if app.Box != (geom.Size{Width: DefaultWidth, Height: DefaultHeight}) {
				t.Errorf("app box = %+v, want default", app.Box)
			}
			auth, _ := g.Node("auth")
			if auth.Box != (geom.Size{Width: 160, Height: 60}) {
				t.Errorf("auth box = %+v", auth.Box)
			}
			c, _ := g.Node("cache")
			if c.Position != (geom.Point{X: 5, Y: 7}) {
				t.Errorf("cache position = %+v", c.Position)
			}
		})
	}
}

func TestReadNodesErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		code   errors.Code
	}{
		{"malformed json", FormatJSON, `{"nodes": [`, errors.ErrCodeInvalidFormat},
		{"empty yaml", FormatYAML, ``, errors.ErrCodeInvalidFormat},
		{"bad toml", FormatTOML, `[[nodes]`, errors.ErrCodeInvalidFormat},
		{"unknown format", Format("xml"), `<nodes/>`, errors.ErrCodeInvalidFormat},
		{"duplicate", FormatJSON, `{"nodes": [{"id": "a"}, {"id": "a"}]}`, errors.ErrCodeDuplicateNode},
		{"empty id", FormatJSON, `{"nodes": [{"id": ""}]}`, errors.ErrCodeInvalidNodeID},
		{"negative width", FormatJSON, `{"nodes": [{"id": "a", "width": -1}]}`, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadNodes(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"nodes.json", FormatJSON, false},
		{"nodes.YAML", FormatYAML, false},
		{"dir/nodes.yml", FormatYAML, false},
		{"nodes.toml", FormatTOML, false},
		{"nodes.txt", "", true},
		{"nodes", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestReadNodesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodes.toml")
	if err := os.WriteFile(path, []byte(tomlInput), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := ReadNodesFile(path)
	if err != nil {
		t.Fatalf("ReadNodesFile: %v", err)
	}
	if g.Len() != 3 {
		t.Errorf("Len = %d, want 3", g.Len())
	}

	if _, err := ReadNodesFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteResult(t *testing.T) {
	g, err := ReadNodes(strings.NewReader(`{"nodes": [{"id": "a"}, {"id": "b", "deps": ["a", "ghost"]}]}`), FormatJSON)
	if err != nil {
		t.Fatalf("ReadNodes: %v", err)
	}
	res, err := pipeline.NewRunner(nil, nil, nil).Execute(context.Background(), g, pipeline.Options{Direction: layout.Vertical})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteResult(res, &buf); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}

	var out struct {
		Nodes []struct {
			ID string  `json:"id"`
			Y  float64 `json:"y"`
		} `json:"nodes"`
		Arrows []struct {
			Source string `json:"source"`
			Target string `json:"target"`
			Path   string `json:"path"`
		} `json:"arrows"`
		Dangling []struct {
			Node    string `json:"node"`
			Missing string `json:"missing"`
		} `json:"dangling"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(out.Nodes) != 2 || out.Nodes[1].ID != "b" || out.Nodes[1].Y != 200 {
		t.Errorf("nodes = %+v", out.Nodes)
	}
	if len(out.Arrows) != 1 || out.Arrows[0].Source != "a" || out.Arrows[0].Target != "b" {
		t.Fatalf("arrows = %+v", out.Arrows)
	}
	if !strings.HasPrefix(out.Arrows[0].Path, "M") {
		t.Errorf("path = %q", out.Arrows[0].Path)
	}
	if len(out.Dangling) != 1 || out.Dangling[0].Missing != "ghost" {
		t.Errorf("dangling = %+v", out.Dangling)
	}

	// The nodes array is valid input.
	var again bytes.Buffer
	again.WriteString(`{"nodes":`)
	nodes, _ := json.Marshal(NewOutput(res).Nodes)
	again.Write(nodes)
	again.WriteString(`}`)
	if _, err := ReadNodes(&again, FormatJSON); err != nil {
		t.Errorf("re-read nodes: %v", err)
	}
}

func TestExportResult(t *testing.T) {
	g, err := BuildGraph([]Node{{ID: "a"}, {ID: "b", Deps: []string{"a"}}})
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	res, err := pipeline.NewRunner(nil, nil, nil).Execute(context.Background(), g, pipeline.Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.layout.json")
	if err := ExportResult(res, path); err != nil {
		t.Fatalf("ExportResult: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"arrows"`)) {
		t.Errorf("export missing arrows:\n%s", data)
	}
}
