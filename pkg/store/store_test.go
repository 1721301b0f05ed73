package store

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/layout"
)

func sampleSet(t *testing.T, created time.Time, n int) *CandidateSet {
	t.Helper()
	layouts := make([]layout.Layout, n)
	for i := range layouts {
		layouts[i] = layout.Layout{
			ID:        i + 1,
			Buildings: []layout.Building{{X: 20, Y: 20, W: 10, H: 10, Type: layout.TypeB}},
			TowersB:   1,
			BuiltArea: 100,
			Rules:     &layout.Rules{SiteBoundary: true, PlazaClear: true},
		}
	}
	set := NewCandidateSet("http://localhost/generate-layouts", layouts)
	set.CreatedAt = created.UTC()
	return set
}

// exercise runs the shared contract against any backend.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := sampleSet(t, base, 2)
	newer := sampleSet(t, base.Add(time.Minute), 3)
	for _, set := range []*CandidateSet{older, newer} {
		if err := s.Save(ctx, set); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	t.Run("get", func(t *testing.T) {
		got, err := s.Get(ctx, newer.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.ID != newer.ID || len(got.Layouts) != 3 || got.Source != newer.Source {
			t.Errorf("Get = %+v", got.Summary())
		}
		if !got.CreatedAt.Equal(newer.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, newer.CreatedAt)
		}
		b := got.Layouts[0].Buildings[0]
		if b.Type != layout.TypeB || b.X != 20 || got.Layouts[0].Rules == nil || !got.Layouts[0].Rules.PlazaClear {
			t.Errorf("layout did not survive storage: %+v", got.Layouts[0])
		}
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, "00000000-0000-4000-8000-000000000000")
		if !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("err = %v, want NOT_FOUND", err)
		}
	})

	t.Run("get invalid id", func(t *testing.T) {
		_, err := s.Get(ctx, "../etc/passwd")
		if !errors.Is(err, errors.ErrCodeInvalidID) {
			t.Errorf("err = %v, want INVALID_ID", err)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		got, err := s.List(ctx, 10)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 2 || got[0].ID != newer.ID || got[1].ID != older.ID {
			t.Fatalf("List = %+v", got)
		}
		if got[0].Count != 3 || got[1].Count != 2 {
			t.Errorf("counts = %d, %d", got[0].Count, got[1].Count)
		}
	})

	t.Run("list limit", func(t *testing.T) {
		got, err := s.List(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != newer.ID {
			t.Errorf("List(1) = %+v", got)
		}
	})

	t.Run("save rejects bad ids", func(t *testing.T) {
		bad := sampleSet(t, base, 1)
		bad.ID = "not-a-uuid"
		if err := s.Save(ctx, bad); !errors.Is(err, errors.ErrCodeInvalidID) {
			t.Errorf("err = %v, want INVALID_ID", err)
		}
		if err := s.Save(ctx, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("nil set err = %v, want INVALID_INPUT", err)
		}
	})
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644)
	os.Mkdir(filepath.Join(dir, "sub.json"), 0o755)

	if err := s.Save(context.Background(), sampleSet(t, time.Now(), 1)); err != nil {
		t.Fatal(err)
	}
	got, err := s.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("List = %d entries, want 1", len(got))
	}
}

func TestFileStoreDefaultLimit(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	base := time.Now()
	for i := range DefaultListLimit + 5 {
		if err := s.Save(context.Background(), sampleSet(t, base.Add(time.Duration(i)*time.Second), 1)); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := s.List(context.Background(), 0)
	if len(got) != DefaultListLimit {
		t.Errorf("List(0) = %d entries, want %d", len(got), DefaultListLimit)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "sets.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestSQLiteStoreDuplicateID(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "sets.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	set := sampleSet(t, time.Now(), 1)
	if err := s.Save(context.Background(), set); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), set); !errors.Is(err, errors.ErrCodeStore) {
		t.Errorf("duplicate save err = %v, want STORE_ERROR", err)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("SITEVIEW_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SITEVIEW_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := OpenRedis(ctx, addr, 15)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.prefix = "siteview-test-" + strconv.FormatInt(time.Now().UnixNano(), 36) + ":"
	t.Cleanup(func() {
		keys, _ := s.client.Keys(ctx, s.prefix+"*").Result()
		if len(keys) > 0 {
			s.client.Del(ctx, keys...)
		}
	})
	exercise(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("SITEVIEW_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SITEVIEW_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	db := "siteview_test_" + strconv.FormatInt(time.Now().UnixNano(), 36)
	s, err := OpenMongo(ctx, uri, db)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		s.coll.Database().Drop(ctx)
		s.Close()
	})
	exercise(t, s)
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	if err := s.Save(ctx, sampleSet(t, time.Now(), 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "00000000-0000-4000-8000-000000000000"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get err = %v", err)
	}
	if got, _ := s.List(ctx, 5); len(got) != 0 {
		t.Errorf("List = %v", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		backend string
		want    string
	}{
		{"", "*store.FileStore"},
		{BackendFile, "*store.FileStore"},
		{BackendSQLite, "*store.SQLiteStore"},
		{BackendNone, "*store.NullStore"},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := Open(ctx, Options{Backend: tt.backend, Dir: dir})
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			if got := typeName(s); got != tt.want {
				t.Errorf("Open(%q) = %s, want %s", tt.backend, got, tt.want)
			}
		})
	}

	if _, err := Open(ctx, Options{Backend: "postgres"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown backend err = %v", err)
	}
}

func typeName(s Store) string {
	switch s.(type) {
	case *FileStore:
		return "*store.FileStore"
	case *SQLiteStore:
		return "*store.SQLiteStore"
	case *NullStore:
		return "*store.NullStore"
	default:
		return "other"
	}
}
