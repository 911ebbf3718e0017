package library

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-portal/config"
)

// Needs a live server: LIBRARY_TEST_REDIS_ADDR=127.0.0.1:6379 go test ./library
func redisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("LIBRARY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LIBRARY_TEST_REDIS_ADDR not set")
	}
	r, err := NewRedisStore(context.Background(), config.RedisConfig{
		Addr:      addr,
		KeyPrefix: "library-test:" + t.Name() + ":",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		for _, k := range []string{KeyUsers, KeyCurrentUser, KeyBooks, KeyTransactions} {
			_ = r.Delete(ctx, k)
		}
		r.Close()
	})
	return r
}

func TestRedisStoreRoundTrip(t *testing.T) {
	r := redisStore(t)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, KeyBooks)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.SetMany(ctx,
		Entry{Key: KeyBooks, Value: []byte(`[]`)},
		Entry{Key: KeyTransactions, Value: []byte(`[]`)},
	))
	v, ok, err := r.Get(ctx, KeyTransactions)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(v))

	require.NoError(t, r.Delete(ctx, KeyBooks))
	_, ok, err = r.Get(ctx, KeyBooks)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisBackedBorrowFlow(t *testing.T) {
	r := redisStore(t)
	clock := &fixedClock{now: epoch}

	catalog := newCatalog(t, r, clock)
	tx, err := catalog.BorrowBook(context.Background(), "1", "u1", "Ann Lee", "ann@x.com")
	require.NoError(t, err)

	reloaded := newCatalog(t, r, clock)
	got, ok := reloaded.GetTransaction(tx.ID)
	require.True(t, ok)
	assert.Equal(t, StatusBorrowed, got.Status)
	book, _ := reloaded.GetBook("1")
	assert.Equal(t, 4, book.AvailableCopies)
}
