package store

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/siteview/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Backends lists every backend name in documentation order.
var Backends = []string{BackendFile, BackendSQLite, BackendRedis, BackendMongo, BackendNone}

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Dir is the FileStore directory and the default SQLite location.
	Dir string
	// SQLitePath overrides the SQLite database file.
	SQLitePath string

	RedisAddr string
	RedisDB   int

	MongoURI      string
	MongoDatabase string
}

// Open constructs the backend named by opts.Backend. An empty name opens a
// FileStore.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Dir)
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			dir := opts.Dir
			if dir == "" {
				fs, err := NewFileStore("")
				if err != nil {
					return nil, err
				}
				dir = fs.Path()
			}
			path = filepath.Join(dir, "sets.db")
		}
		return OpenSQLite(ctx, path)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisDB)
	case BackendMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	case BackendNone:
		return NewNullStore(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", opts.Backend)
	}
}
