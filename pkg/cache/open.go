package cache

import (
	"context"

	"github.com/matzehuels/siteview/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Backends lists every backend name.
var Backends = []string{BackendFile, BackendRedis, BackendNone}

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Dir       string
	RedisAddr string
	RedisDB   int
}

// Open constructs the backend named by opts.Backend. An empty name opens a
// FileCache in opts.Dir.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "file cache needs a directory")
		}
		return NewFileCache(opts.Dir)
	case BackendRedis:
		return OpenRedisCache(ctx, opts.RedisAddr, opts.RedisDB)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", opts.Backend)
	}
}
