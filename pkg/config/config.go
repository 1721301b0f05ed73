// Package config loads siteview settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/siteview/config.toml (falling back to
// ~/.config/siteview/config.toml). A missing file is not an error: every key
// has a default, and command-line flags override whatever the file sets.
//
// Example:
//
//	endpoint = "http://127.0.0.1:5000/generate-layouts"
//	locale = "de-DE"
//
//	[render]
//	formats = ["svg", "png"]
//	output_dir = "out"
//	png_scale = 2
//
//	[store]
//	backend = "sqlite"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
package config

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/siteview/pkg/cache"
	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/generate"
	"github.com/matzehuels/siteview/pkg/pipeline"
	"github.com/matzehuels/siteview/pkg/store"
)

// AppName names the XDG subdirectories.
const AppName = "siteview"

// Config is the full set of user settings.
type Config struct {
	Endpoint string `toml:"endpoint"`
	Locale   string `toml:"locale"`

	Render Render `toml:"render"`
	Store  Store  `toml:"store"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Render configures file export.
type Render struct {
	Formats   []string `toml:"formats"`
	OutputDir string   `toml:"output_dir"`
	PNGScale  float64  `toml:"png_scale"`
}

// Store configures candidate-set history.
type Store struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path"`
	DSN           string `toml:"dsn"`
	RedisAddr     string `toml:"redis_addr"`
	RedisDB       int    `toml:"redis_db"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Cache configures the rendered artifact cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	TTL       Duration `toml:"ttl"`
}

// Server configures the HTTP viewer.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Endpoint: generate.DefaultEndpoint,
		Locale:   "en-US",
		Render: Render{
			Formats:   []string{pipeline.FormatSVG},
			OutputDir: ".",
			PNGScale:  1,
		},
		Store: Store{
			Backend:       store.BackendFile,
			MongoDatabase: "siteview",
		},
		Cache: Cache{
			Backend: cache.BackendFile,
			TTL:     Duration{pipeline.DefaultTTL},
		},
		Server: Server{
			Addr: "127.0.0.1:8080",
		},
	}
}

// =============================================================================
// Loading
// =============================================================================

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads path on top of Default. An empty path loads the default
// location; a missing file at the default location yields the defaults,
// while a missing explicit path is NOT_FOUND.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s not found", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}

	if err := Parse(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML data into cfg, leaving keys the data omits unchanged.
// Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unknown config key %q", undecoded[0].String())
	}
	return nil
}

// Validate rejects unknown backends, formats and locales.
func (c Config) Validate() error {
	if err := errors.ValidateLocale(c.Locale); err != nil {
		return err
	}
	for _, f := range c.Render.Formats {
		if !slices.Contains(pipeline.Formats, f) {
			return errors.New(errors.ErrCodeInvalidInput, "unknown render format %q (want one of %v)", f, pipeline.Formats)
		}
	}
	if c.Render.PNGScale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "png_scale must not be negative")
	}
	if c.Store.Backend != "" && !slices.Contains(store.Backends, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q (want one of %v)", c.Store.Backend, store.Backends)
	}
	if c.Cache.Backend != "" && !slices.Contains(cache.Backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want one of %v)", c.Cache.Backend, cache.Backends)
	}
	return nil
}

// =============================================================================
// Derived Settings
// =============================================================================

// StoreOptions converts the [store] table into store.Options. The file store
// defaults to $XDG_DATA_HOME/siteview/sets.
func (c Config) StoreOptions() store.Options {
	opts := store.Options{
		Backend:       c.Store.Backend,
		Dir:           c.Store.Path,
		SQLitePath:    c.Store.DSN,
		RedisAddr:     c.Store.RedisAddr,
		RedisDB:       c.Store.RedisDB,
		MongoURI:      c.Store.MongoURI,
		MongoDatabase: c.Store.MongoDatabase,
	}
	if opts.Dir == "" {
		if dir, err := xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")); err == nil {
			opts.Dir = filepath.Join(dir, "sets")
		}
	}
	return opts
}

// CacheDir returns the artifact cache directory, defaulting to
// $XDG_CACHE_HOME/siteview.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// CacheOptions converts the [cache] table into cache.Options.
func (c Config) CacheOptions() cache.Options {
	dir, _ := c.CacheDir()
	return cache.Options{
		Backend:   c.Cache.Backend,
		Dir:       dir,
		RedisAddr: c.Cache.RedisAddr,
		RedisDB:   c.Cache.RedisDB,
	}
}

// xdgDir returns $env/siteview, or ~/fallback/siteview when env is unset.
func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
