package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.json")
	ctx := context.Background()

	first := NewFile(path)
	if err := first.Set(ctx, KeyAccessToken, "acc"); err != nil {
		t.Fatalf("set: %v", err)
	}

	second := NewFile(path)
	v, err := second.Get(ctx, KeyAccessToken)
	if err != nil || v != "acc" {
		t.Fatalf("expected persisted value after reopen, got %q, %v", v, err)
	}
}

func TestFileCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "mirror.json")
	store := NewFile(path)

	if err := store.Set(context.Background(), KeyAccessToken, "acc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected mirror file created, got %v", err)
	}
}

func TestFileCorruptMirrorReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt mirror: %v", err)
	}

	store := NewFile(path)
	if _, err := store.Get(context.Background(), KeyAccessToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected corrupt mirror to read as empty, got %v", err)
	}
}

func TestFileClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.json")
	store := NewFile(path)
	ctx := context.Background()

	if err := store.Set(ctx, KeyAccessToken, "acc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected mirror file removed, got %v", err)
	}
}

func TestFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	path := filepath.Join(t.TempDir(), "mirror.json")
	store := NewFile(path)

	if err := store.Set(context.Background(), KeyAccessToken, "acc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 mirror, got %o", perm)
	}
}
