package library

import (
	"context"
	"encoding/json"
	"fmt"
)

// KVStore is the persisted key-value storage both stores mirror their
// in-memory lists to. Values are JSON documents.
type KVStore interface {
	// Get returns the value stored under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all entries or none of them.
	SetMany(ctx context.Context, entries ...Entry) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Entry struct {
	Key   string
	Value []byte
}

// loadJSON decodes the value under key into dst. It reports false, leaving
// dst untouched, when the key is absent.
func loadJSON(ctx context.Context, kv KVStore, key string, dst any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func jsonEntry(key string, v any) (Entry, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Entry{}, fmt.Errorf("encode %s: %w", key, err)
	}
	return Entry{Key: key, Value: raw}, nil
}

// saveJSON encodes every (key, value) pair and persists them in one write.
func saveJSON(ctx context.Context, kv KVStore, pairs ...any) error {
	if len(pairs)%2 != 0 {
		return fmt.Errorf("saveJSON: odd number of arguments")
	}
	entries := make([]Entry, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return fmt.Errorf("saveJSON: key %v is not a string", pairs[i])
		}
		e, err := jsonEntry(key, pairs[i+1])
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	if err := kv.SetMany(ctx, entries...); err != nil {
		return fmt.Errorf("write %d key(s): %w", len(entries), err)
	}
	return nil
}
