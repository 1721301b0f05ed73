package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/siteview/pkg/cache"
	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/layout"
)

// DefaultTTL is how long rendered artifacts stay cached.
const DefaultTTL = 7 * 24 * time.Hour

// Runner renders artifacts through a cache.
//
// The Runner is stateless except for the cache and logger, so several
// goroutines can share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, bool, error) {
	if l == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "no layout to render")
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	layoutHash := cache.HashLayout(*l)
	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true

	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		hit := true
		data, err := cache.GetOrBuild(ctx, r.Cache, key, format, r.TTL, func() ([]byte, error) {
			hit = false
			return RenderFormat(l, format, opts)
		})
		if err != nil {
			return nil, false, err
		}
		allHit = allHit && hit
		artifacts[format] = data
	}

	r.Logger.Debug("rendered artifacts", "layout", l.ID, "formats", opts.Formats, "cached", allHit)
	return artifacts, allHit, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// RenderOne renders a single format through the cache.
func (r *Runner) RenderOne(ctx context.Context, l *layout.Layout, format string, opts Options) ([]byte, error) {
	opts.Formats = []string{format}
	artifacts, err := r.Render(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	data, ok := artifacts[format]
	if !ok {
		return nil, fmt.Errorf("render %s: no output", format)
	}
	return data, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
