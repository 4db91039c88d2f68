package episode

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"anna.local/annad/internal/model"
)

type fakeRunner struct {
	stdout   string
	exitCode int
	err      error
}

func (f fakeRunner) Run(ctx context.Context, argv []string, cwd string) (string, string, int, error) {
	return f.stdout, "", f.exitCode, f.err
}

func TestExecuteBatch_RecordsBackupBeforeRunning(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "f.conf")
	if err := os.WriteFile(target, []byte("before"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewBackupStore(filepath.Join(dir, "backups"))
	exec := NewExecutor(store, fakeRunner{stdout: "ok", exitCode: 0})

	records, errs := exec.ExecuteBatch(context.Background(), "cs1", []PlannedAction{
		{Kind: model.ActionFileEdit, Command: []string{"sed", "-i", "s/a/b/", target}, FilesTouched: []string{target}},
	})

	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(records) != 1 || records[0].Status != model.ActionSucceeded {
		t.Fatalf("expected one succeeded record, got %+v", records)
	}
	if len(records[0].BackupPaths) != 1 {
		t.Fatalf("expected one backup path recorded, got %v", records[0].BackupPaths)
	}
}

func TestExecuteBatch_ContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	store := NewBackupStore(filepath.Join(dir, "backups"))
	exec := NewExecutor(store, fakeRunner{exitCode: 1})

	records, errs := exec.ExecuteBatch(context.Background(), "cs1", []PlannedAction{
		{Kind: model.ActionShellCommand, Command: []string{"false"}},
		{Kind: model.ActionShellCommand, Command: []string{"false"}},
	})

	if len(records) != 2 {
		t.Fatalf("expected both actions recorded despite failure, got %d", len(records))
	}
	if len(errs) != 2 {
		t.Fatalf("expected both actions to report errors, got %d", len(errs))
	}
	for _, r := range records {
		if r.Status != model.ActionFailed {
			t.Fatalf("expected ActionFailed, got %s", r.Status)
		}
	}
}
