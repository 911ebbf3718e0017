package library

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type seqIDs struct {
	prefix string
	n      int
}

func (g *seqIDs) New() (string, error) {
	g.n++
	return fmt.Sprintf("%s%d", g.prefix, g.n), nil
}

// flakyKV fails writes while failWrites is set.
type flakyKV struct {
	KVStore
	failWrites bool
}

var errDiskFull = errors.New("disk full")

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failWrites {
		return errDiskFull
	}
	return f.KVStore.Set(ctx, key, value)
}

func (f *flakyKV) SetMany(ctx context.Context, entries ...Entry) error {
	if f.failWrites {
		return errDiskFull
	}
	return f.KVStore.SetMany(ctx, entries...)
}

func (f *flakyKV) Delete(ctx context.Context, key string) error {
	if f.failWrites {
		return errDiskFull
	}
	return f.KVStore.Delete(ctx, key)
}

func tempDB(t *testing.T) *Database {
	t.Helper()
	dir := t.TempDir()
	db, err := NewDatabase(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testOptions(clock *fixedClock, prefix string) []Option {
	return []Option{WithClock(clock), WithIDGen(&seqIDs{prefix: prefix})}
}

func newUsers(t *testing.T, kv KVStore, clock *fixedClock, extra ...Option) *UserStore {
	t.Helper()
	opts := append(testOptions(clock, "u"), extra...)
	s, err := NewUserStore(context.Background(), kv, opts...)
	if err != nil {
		t.Fatalf("user store: %v", err)
	}
	return s
}

func newCatalog(t *testing.T, kv KVStore, clock *fixedClock, extra ...Option) *CatalogStore {
	t.Helper()
	opts := append(testOptions(clock, "c"), extra...)
	c, err := NewCatalogStore(context.Background(), kv, opts...)
	if err != nil {
		t.Fatalf("catalog store: %v", err)
	}
	return c
}

func ptr[T any](v T) *T { return &v }
