package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/siteview/pkg/errors"
)

// FileStore keeps each candidate set in its own JSON file.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store in baseDir.
// If baseDir is empty, defaults to ~/.local/share/siteview/sets/.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "siteview", "sets")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) setPath(id string) string {
	return filepath.Join(s.baseDir, strings.ToLower(id)+".json")
}

func (s *FileStore) Save(ctx context.Context, set *CandidateSet) error {
	if err := validateSet(set); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return storeErr(err, "marshal candidate set")
	}
	if err := os.WriteFile(s.setPath(set.ID), data, 0o644); err != nil {
		return storeErr(err, "write candidate set")
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*CandidateSet, error) {
	if err := errors.ValidateSetID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.setPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, storeErr(err, "read candidate set")
	}
	var set CandidateSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, storeErr(err, "parse candidate set %s", id)
	}
	return &set, nil
}

func (s *FileStore) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, storeErr(err, "read store dir")
	}

	var out []Summary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var set CandidateSet
		if err := json.Unmarshal(data, &set); err != nil {
			continue
		}
		out = append(out, set.Summary())
	}

	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for set files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
