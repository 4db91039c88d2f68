package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_NotifiesOnFileChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "watched.txt")
	if err := os.WriteFile(target, []byte("v1"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	changed := make(chan string, 1)
	w, err := NewWatcher(func(path string) {
		select {
		case changed <- path:
		default:
		}
	}, target)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	if err := os.WriteFile(target, []byte("v2"), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}

	select {
	case path := <-changed:
		if path != target {
			t.Fatalf("expected change for %s, got %s", target, path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watcher notification")
	}
}

func TestWatcher_SkipsMissingPathWithoutError(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does-not-exist")

	w, err := NewWatcher(func(string) {}, missing)
	if err != nil {
		t.Fatalf("expected NewWatcher to tolerate a missing path, got error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	w.Stop()
}
