// Package store persists the candidate sets received from the generation
// service so they can be listed and replayed later.
//
// A [CandidateSet] is the complete, ordered list of layouts returned by one
// generation request, stamped with a UUID and the time it arrived. Sets are
// write-once: they are saved as received and never updated.
//
// # Backends
//
//   - [FileStore]: one JSON file per set (default for the CLI)
//   - [SQLiteStore]: a single SQLite database file
//   - [RedisStore]: Redis keys plus a sorted-set index by arrival time
//   - [MongoStore]: a MongoDB collection
//   - [NullStore]: discards everything
//
// Use [Open] to construct a backend from configuration.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/layout"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 20

// CandidateSet is one generation response as received.
type CandidateSet struct {
	ID        string          `json:"id" bson:"_id"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	Source    string          `json:"source" bson:"source"`
	Layouts   []layout.Layout `json:"layouts" bson:"layouts"`
}

// NewCandidateSet stamps layouts with a fresh ID and the current time.
func NewCandidateSet(source string, layouts []layout.Layout) *CandidateSet {
	return &CandidateSet{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		Layouts:   layouts,
	}
}

// Summary describes a stored set without its layouts.
type Summary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
	Count     int       `json:"count"`
}

// Summary returns the set's listing entry.
func (s *CandidateSet) Summary() Summary {
	return Summary{ID: s.ID, CreatedAt: s.CreatedAt, Source: s.Source, Count: len(s.Layouts)}
}

// Store persists candidate sets.
type Store interface {
	// Save writes a new set. The set's ID must be a canonical UUID.
	Save(ctx context.Context, set *CandidateSet) error
	// Get returns the set with the given ID, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*CandidateSet, error)
	// List returns up to limit summaries, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)
	// Close releases backend resources.
	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "candidate set %s not found", id)
}

func storeErr(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStore, err, format, args...)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func validateSet(set *CandidateSet) error {
	if set == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil candidate set")
	}
	return errors.ValidateSetID(set.ID)
}
