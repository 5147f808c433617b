// Package config loads flowchart settings from a TOML file.
//
// # File Format
//
//	[layout]
//	direction = "vertical"
//	axis_gap  = 100.0
//	cross_gap = 20.0
//	group_gap = 100.0
//
//	[route]
//	strategy     = "blend"
//	arrow_inset  = 10.0
//	stroke_width = 2.0
//
//	[cache]
//	backend    = "file"        # file, redis or none
//	dir        = ""            # file backend; empty uses the user cache dir
//	redis_addr = "localhost:6379"
//	ttl        = "168h"
//	key_prefix = ""            # namespaces keys in a shared backend
//
//	[server]
//	addr = ":8080"
//
// Every key is optional. [Load] starts from [Default] and overlays whatever
// the file sets, so a missing file yields the defaults.
//
// # Hot Reload
//
// The server keeps a [Loader] and calls [Loader.Watch]; callbacks registered
// with [Loader.OnChange] receive each new valid config. Invalid edits are
// logged and the previous config stays active.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowchart/pkg/cache"
	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/layout"
	"github.com/matzehuels/flowchart/pkg/path"
	"github.com/matzehuels/flowchart/pkg/pipeline"
	"github.com/matzehuels/flowchart/pkg/route"
)

// DefaultAddr is the default server listen address.
const DefaultAddr = ":8080"

// Config is the full settings file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Route  RouteConfig  `toml:"route"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds [layout] settings.
type LayoutConfig struct {
	Direction string  `toml:"direction"`
	AxisGap   float64 `toml:"axis_gap"`
	CrossGap  float64 `toml:"cross_gap"`
	GroupGap  float64 `toml:"group_gap"`
}

// RouteConfig holds [route] settings.
type RouteConfig struct {
	Strategy    string  `toml:"strategy"`
	ArrowInset  float64 `toml:"arrow_inset"`
	StrokeWidth float64 `toml:"stroke_width"`
}

// CacheConfig holds [cache] settings.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTL           string `toml:"ttl"`
	KeyPrefix     string `toml:"key_prefix"`
}

// ServerConfig holds [server] settings.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			Direction: layout.Vertical.String(),
			AxisGap:   layout.DefaultSpacing.AxisGap,
			CrossGap:  layout.DefaultSpacing.CrossGap,
			GroupGap:  layout.DefaultSpacing.GroupGap,
		},
		Route: RouteConfig{
			Strategy:    path.Default.Name(),
			ArrowInset:  route.DefaultArrowInset,
			StrokeWidth: route.DefaultStrokeWidth,
		},
		Cache: CacheConfig{
			Backend:   cache.BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       cache.TTLLayout.String(),
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
	}
}

// Load reads the TOML file at path over the defaults.
// A missing file is not an error. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := layout.ParseDirection(c.Layout.Direction); err != nil {
		return err
	}
	if err := c.Spacing().Validate(); err != nil {
		return err
	}
	if _, err := path.ByName(c.Route.Strategy); err != nil {
		return err
	}
	for name, v := range map[string]float64{
		"arrow_inset":  c.Route.ArrowInset,
		"stroke_width": c.Route.StrokeWidth,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "route.%s must be >= 0, got %v", name, v)
		}
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendRedis, cache.BackendNone, "":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	return nil
}

// Spacing returns the [layout] gaps.
func (c Config) Spacing() layout.Spacing {
	return layout.Spacing{
		AxisGap:  c.Layout.AxisGap,
		CrossGap: c.Layout.CrossGap,
		GroupGap: c.Layout.GroupGap,
	}
}

// CacheTTL parses cache.ttl. Empty means the package default.
func (c Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid cache.ttl %q", c.Cache.TTL)
	}
	return d, nil
}

// PipelineOptions converts the file into runner options.
func (c Config) PipelineOptions() (pipeline.Options, error) {
	dir, err := layout.ParseDirection(c.Layout.Direction)
	if err != nil {
		return pipeline.Options{}, err
	}
	spacing := c.Spacing()
	return pipeline.Options{
		Direction:   dir,
		Spacing:     &spacing,
		Strategy:    c.Route.Strategy,
		ArrowInset:  pipeline.Float(c.Route.ArrowInset),
		StrokeWidth: pipeline.Float(c.Route.StrokeWidth),
	}, nil
}

// Keyer returns the cache keyer, scoped by cache.key_prefix when set.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.KeyPrefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.KeyPrefix)
}

// CacheOptions converts [cache] into backend options.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
	}
}
