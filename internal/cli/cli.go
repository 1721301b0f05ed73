// Package cli implements the siteview command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"github.com/matzehuels/siteview/pkg/cache"
	"github.com/matzehuels/siteview/pkg/config"
	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/generate"
	"github.com/matzehuels/siteview/pkg/pipeline"
	"github.com/matzehuels/siteview/pkg/render"
	"github.com/matzehuels/siteview/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	// Global flag values, applied on top of Config before every command.
	configPath string
	endpoint   string
	locale     string
}

// New creates a new CLI instance with a default logger and built-in settings.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the config file and applies global flag overrides.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.endpoint != "" {
		cfg.Endpoint = c.endpoint
	}
	if c.locale != "" {
		cfg.Locale = c.locale
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "endpoint", cfg.Endpoint, "locale", cfg.Locale, "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newClient returns the generation client for the configured endpoint.
func (c *CLI) newClient() generate.Client {
	return generate.NewHTTPClient(c.Config.Endpoint)
}

// openStore opens the configured candidate-set store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, c.Config.StoreOptions())
}

// recorderOptions opens the store and returns the controller option that
// records into it. A "none" backend records nothing.
func (c *CLI) recorderOptions(ctx context.Context) ([]generate.Option, func(), error) {
	if c.Config.Store.Backend == store.BackendNone {
		return nil, func() {}, nil
	}
	st, err := c.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := st.Close(); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}
	return []generate.Option{generate.WithRecorder(st)}, closeFn, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := newCache(ctx, c.Config, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Backend == cache.BackendRedis {
		// A Redis instance is usually shared with other tools.
		keyer = cache.NewScopedKeyer(nil, appName+":")
	}
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	if ttl := c.Config.Cache.TTL.Duration; ttl > 0 {
		r.TTL = ttl
	}
	return r, nil
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts := cfg.CacheOptions()
	if opts.Backend != cache.BackendRedis && opts.Dir == "" {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, opts)
}

// localeTag parses the configured locale.
func (c *CLI) localeTag() (language.Tag, error) {
	if c.Config.Locale == "" {
		return render.DefaultLocale, nil
	}
	tag, err := language.Parse(c.Config.Locale)
	if err != nil {
		return language.Und, errors.Wrap(errors.ErrCodeInvalidInput, err, "unknown locale %q", c.Config.Locale)
	}
	return tag, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// renderOptions builds pipeline options from the [render] config table.
func (c *CLI) renderOptions() pipeline.Options {
	return pipeline.Options{
		Formats: c.Config.Render.Formats,
		Locale:  c.Config.Locale,
		Scale:   c.Config.Render.PNGScale,
	}
}

// parseFormats parses a comma-separated format string into a slice.
// An empty string yields nil so the config default applies.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
