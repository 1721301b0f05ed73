// Package cache stores rendered artifacts (SVG, PNG) keyed by layout content.
//
// Rendering a candidate is deterministic, so the bytes for a given layout,
// format and locale never change. The HTTP viewer and the render command
// look artifacts up here before drawing them again.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory (CLI default)
//   - [RedisCache]: Redis strings with native TTL
//   - [NullCache]: never stores anything
//
// # Keys
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes the layout hash and the
// render options; [ScopedKeyer] adds a prefix so several deployments can share
// one backend.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/siteview/pkg/observability"
)

// Cache is a byte store with per-entry TTL.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key for one rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change artifact bytes.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
	Locale string  `json:"locale,omitempty"`
	Title  string  `json:"title,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// GetOrBuild returns the cached bytes for key, calling build and storing its
// result on a miss. Cache read and write failures degrade to building; only
// build errors are returned. kind labels the entry for observability hooks.
func GetOrBuild(ctx context.Context, c Cache, key, kind string, ttl time.Duration, build func() ([]byte, error)) ([]byte, error) {
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, kind)
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, kind)

	data, err := build()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, kind, len(data))
	}
	return data, nil
}
