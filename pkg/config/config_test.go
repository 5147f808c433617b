package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/flowchart/pkg/cache"
	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowchart.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	opts, err := Default().PipelineOptions()
	if err != nil {
		t.Fatalf("PipelineOptions: %v", err)
	}
	if opts.Direction != layout.Vertical || opts.Spacing == nil || *opts.Spacing != layout.DefaultSpacing {
		t.Errorf("default options = %+v", opts)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want default", cfg.Server.Addr)
	}

	cfg, err = Load("")
	if err != nil || cfg.Layout.Direction != "vertical" {
		t.Errorf("Load(\"\") = %+v, %v", cfg.Layout, err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[layout]
direction = "horizontal"
cross_gap = 40.0

[route]
strategy = "bezier"

[cache]
backend = "redis"
redis_addr = "cache:6379"
ttl = "30m"

[server]
addr = ":9090"
allowed_origins = ["http://localhost:3000"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.Direction != "horizontal" || cfg.Layout.CrossGap != 40 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	// Unset keys keep their defaults.
	if cfg.Layout.AxisGap != layout.DefaultSpacing.AxisGap {
		t.Errorf("AxisGap = %v, want default", cfg.Layout.AxisGap)
	}
	if cfg.Route.Strategy != "bezier" || cfg.Route.ArrowInset != 10 {
		t.Errorf("route = %+v", cfg.Route)
	}
	ttl, err := cfg.CacheTTL()
	if err != nil || ttl != 30*time.Minute {
		t.Errorf("CacheTTL = %v, %v", ttl, err)
	}
	opts := cfg.CacheOptions()
	if opts.Backend != "redis" || opts.Redis.Addr != "cache:6379" {
		t.Errorf("CacheOptions = %+v", opts)
	}
	if cfg.Server.Addr != ":9090" || len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "[layout\n", errors.ErrCodeInvalidConfig},
		{"direction", "[layout]\ndirection = \"diagonal\"\n", errors.ErrCodeInvalidDirection},
		{"spacing", "[layout]\naxis_gap = -5.0\n", errors.ErrCodeInvalidSpacing},
		{"strategy", "[route]\nstrategy = \"zigzag\"\n", errors.ErrCodeInvalidStrategy},
		{"inset", "[route]\narrow_inset = -1.0\n", errors.ErrCodeInvalidConfig},
		{"backend", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidConfig},
		{"ttl", "[cache]\nttl = \"forever\"\n", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoaderReload(t *testing.T) {
	path := writeConfig(t, "[server]\naddr = \":1111\"\n")
	l, err := NewLoader(path, nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if l.Config().Server.Addr != ":1111" {
		t.Fatalf("initial Addr = %q", l.Config().Server.Addr)
	}

	var seen []string
	l.OnChange(func(c Config) { seen = append(seen, c.Server.Addr) })

	if err := os.WriteFile(path, []byte("[server]\naddr = \":2222\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if l.Config().Server.Addr != ":2222" {
		t.Errorf("Addr after reload = %q", l.Config().Server.Addr)
	}
	if len(seen) != 1 || seen[0] != ":2222" {
		t.Errorf("callbacks saw %v", seen)
	}

	// A broken edit keeps the previous config.
	if err := os.WriteFile(path, []byte("[server\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Reload(); err == nil {
		t.Error("Reload of a broken file should fail")
	}
	if l.Config().Server.Addr != ":2222" {
		t.Errorf("Addr after failed reload = %q", l.Config().Server.Addr)
	}
}

func TestLoaderWatch(t *testing.T) {
	path := writeConfig(t, "[server]\naddr = \":1111\"\n")
	l, err := NewLoader(path, nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	changed := make(chan Config, 8)
	l.OnChange(func(c Config) { changed <- c })

	stop, err := l.Watch()
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	if err := os.WriteFile(path, []byte("[server]\naddr = \":3333\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-changed:
			if c.Server.Addr == ":3333" {
				return
			}
		case <-timeout:
			t.Fatal("no reload after write")
		}
	}
}

func TestKeyerPrefix(t *testing.T) {
	cfg := Default()
	plain := cfg.Keyer().LayoutKey("abc", cache.LayoutKeyOpts{})

	cfg.Cache.KeyPrefix = "staging:"
	scoped := cfg.Keyer().LayoutKey("abc", cache.LayoutKeyOpts{})
	if scoped != "staging:"+plain {
		t.Errorf("scoped key = %q, want %q", scoped, "staging:"+plain)
	}
}
