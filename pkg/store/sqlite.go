package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/matzehuels/siteview/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS candidate_sets (
    id         TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL,
    source     TEXT NOT NULL,
    count      INTEGER NOT NULL,
    layouts    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS candidate_sets_created_at ON candidate_sets (created_at DESC);
`

// SQLiteStore keeps candidate sets in a SQLite database. Layouts are stored
// as a JSON column; the other fields are real columns so List never decodes
// layouts.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storeErr(err, "open sqlite %s", path)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, storeErr(err, "apply schema")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, set *CandidateSet) error {
	if err := validateSet(set); err != nil {
		return err
	}
	data, err := json.Marshal(set.Layouts)
	if err != nil {
		return storeErr(err, "marshal layouts")
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO candidate_sets (id, created_at, source, count, layouts)
        VALUES (?, ?, ?, ?, ?)
    `, set.ID, set.CreatedAt.UnixNano(), set.Source, len(set.Layouts), string(data))
	if err != nil {
		return storeErr(err, "insert candidate set")
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*CandidateSet, error) {
	if err := errors.ValidateSetID(id); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
        SELECT id, created_at, source, layouts
        FROM candidate_sets
        WHERE id = ?
    `, id)

	var (
		set     CandidateSet
		created int64
		layouts string
	)
	if err := row.Scan(&set.ID, &created, &set.Source, &layouts); err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound(id)
		}
		return nil, storeErr(err, "query candidate set")
	}
	if err := json.Unmarshal([]byte(layouts), &set.Layouts); err != nil {
		return nil, storeErr(err, "parse layouts of %s", id)
	}
	set.CreatedAt = time.Unix(0, created).UTC()
	return &set, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, created_at, source, count
        FROM candidate_sets
        ORDER BY created_at DESC, id
        LIMIT ?
    `, listLimit(limit))
	if err != nil {
		return nil, storeErr(err, "list candidate sets")
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			created int64
		)
		if err := rows.Scan(&sum.ID, &created, &sum.Source, &sum.Count); err != nil {
			return nil, storeErr(err, "scan candidate set")
		}
		sum.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err, "list candidate sets")
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
