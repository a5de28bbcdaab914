package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// contractTest runs the shared Store contract against a backend.
func contractTest(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, KeyAccessToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	if err := store.Set(ctx, KeyAccessToken, "acc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err := store.Get(ctx, KeyAccessToken)
	if err != nil || v != "acc" {
		t.Fatalf("get after set = %q, %v", v, err)
	}

	if err := store.Set(ctx, KeyAccessToken, "acc2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, _ = store.Get(ctx, KeyAccessToken)
	if v != "acc2" {
		t.Fatalf("expected overwritten value, got %q", v)
	}

	if err := store.Delete(ctx, KeyAccessToken); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, KeyAccessToken); err != nil {
		t.Fatalf("delete must be idempotent, got %v", err)
	}
	if _, err := store.Get(ctx, KeyAccessToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	for _, key := range Keys {
		if err := store.Set(ctx, key, "v"); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, key := range Keys {
		if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected %s cleared, got %v", key, err)
		}
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear must be idempotent, got %v", err)
	}
}

func TestMemoryContract(t *testing.T) {
	contractTest(t, NewMemory())
}

func TestFileContract(t *testing.T) {
	contractTest(t, NewFile(filepath.Join(t.TempDir(), "mirror.json")))
}
