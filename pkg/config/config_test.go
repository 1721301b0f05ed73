package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/siteview/pkg/cache"
	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/generate"
	"github.com/matzehuels/siteview/pkg/pipeline"
	"github.com/matzehuels/siteview/pkg/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Endpoint != generate.DefaultEndpoint {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Locale != "en-US" {
		t.Errorf("Locale = %q", cfg.Locale)
	}
	if !reflect.DeepEqual(cfg.Render.Formats, []string{pipeline.FormatSVG}) {
		t.Errorf("Formats = %v", cfg.Render.Formats)
	}
	if cfg.Store.Backend != store.BackendFile || cfg.Cache.Backend != cache.BackendFile {
		t.Errorf("backends = %q, %q", cfg.Store.Backend, cfg.Cache.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadDefaultLocation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	os.MkdirAll(filepath.Join(dir, AppName), 0o755)
	os.WriteFile(filepath.Join(dir, AppName, "config.toml"), []byte(`locale = "fr-FR"`), 0o644)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Locale != "fr-FR" {
		t.Errorf("Locale = %q", cfg.Locale)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
endpoint = "http://planner.local/generate-layouts"
locale = "de-DE"

[render]
formats = ["svg", "png", "json"]
output_dir = "out"
png_scale = 2

[store]
backend = "sqlite"
dsn = "/tmp/sets.db"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
redis_db = 3
ttl = "36h"

[server]
addr = ":9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Endpoint != "http://planner.local/generate-layouts" || cfg.Locale != "de-DE" {
		t.Errorf("top level = %q, %q", cfg.Endpoint, cfg.Locale)
	}
	if len(cfg.Render.Formats) != 3 || cfg.Render.OutputDir != "out" || cfg.Render.PNGScale != 2 {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.DSN != "/tmp/sets.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Store.MongoDatabase != "siteview" {
		t.Error("keys absent from the file should keep their defaults")
	}
	if cfg.Cache.TTL.Duration != 36*time.Hour || cfg.Cache.RedisDB != 3 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("server = %+v", cfg.Server)
	}

	opts := cfg.CacheOptions()
	if opts.Backend != "redis" || opts.RedisAddr != "localhost:6379" || opts.RedisDB != 3 {
		t.Errorf("CacheOptions = %+v", opts)
	}
	if so := cfg.StoreOptions(); so.SQLitePath != "/tmp/sets.db" {
		t.Errorf("StoreOptions = %+v", so)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", `endpoint = `, errors.ErrCodeInvalidFormat},
		{"unknown key", `colour = "red"`, errors.ErrCodeInvalidFormat},
		{"bad duration", "[cache]\nttl = \"soon\"", errors.ErrCodeInvalidFormat},
		{"bad format", "[render]\nformats = [\"gif\"]", errors.ErrCodeInvalidInput},
		{"bad store", "[store]\nbackend = \"postgres\"", errors.ErrCodeInvalidInput},
		{"bad cache", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidInput},
		{"bad locale", `locale = "en US"`, errors.ErrCodeInvalidInput},
		{"negative scale", "[render]\npng_scale = -1", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestStoreOptionsDefaultDir(t *testing.T) {
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)

	opts := Default().StoreOptions()
	if want := filepath.Join(data, AppName, "sets"); opts.Dir != want {
		t.Errorf("Dir = %q, want %q", opts.Dir, want)
	}
}

func TestCacheDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	got, err := Default().CacheDir()
	if err != nil || got != filepath.Join(base, AppName) {
		t.Errorf("CacheDir = %q, %v", got, err)
	}

	cfg := Default()
	cfg.Cache.Dir = "/var/cache/siteview"
	if got, _ := cfg.CacheDir(); got != "/var/cache/siteview" {
		t.Errorf("explicit CacheDir = %q", got)
	}
}

func TestPathFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	got, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config", AppName, "config.toml"); got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}
