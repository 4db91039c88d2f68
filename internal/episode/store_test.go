package episode

import (
	"testing"
	"time"

	"anna.local/annad/internal/model"
)

func TestStore_SaveAndGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ep := model.ActionEpisode{
		ID:                "ep-1",
		CreatedAt:         time.Now(),
		UserQuestion:      "install vim",
		RollbackCapability: model.RollbackFull,
		ExecutionStatus:   model.EpisodeCompleted,
		Actions: []model.ActionRecord{
			{ID: "a1", Kind: model.ActionFileEdit, FilesTouched: []string{"/etc/vimrc"}, BackupPaths: []string{"/backups/x"}},
		},
	}
	backups := map[string][]model.FileBackup{
		"a1": {{OriginalPath: "/etc/vimrc", BackupPath: "/backups/x", Op: model.BackupOpModified}},
	}

	if err := s.Save(ep, backups); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, gotBackups, ok := s.Get("ep-1")
	if !ok {
		t.Fatal("expected episode to be found")
	}
	if got.UserQuestion != ep.UserQuestion {
		t.Errorf("expected question %q, got %q", ep.UserQuestion, got.UserQuestion)
	}
	if len(gotBackups["a1"]) != 1 {
		t.Fatalf("expected 1 backup for action a1, got %d", len(gotBackups["a1"]))
	}
}

func TestStore_LoadsPersistedEpisodesOnReopen(t *testing.T) {
	dir := t.TempDir()
	s1, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ep := model.ActionEpisode{ID: "ep-2", ExecutionStatus: model.EpisodePlanned}
	if err := s1.Save(ep, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s2, err := New(dir)
	if err != nil {
		t.Fatalf("reopen New: %v", err)
	}
	got, _, ok := s2.Get("ep-2")
	if !ok || got.ID != "ep-2" {
		t.Fatalf("expected episode ep-2 to survive reopen, got %+v ok=%v", got, ok)
	}
}

func TestStore_UpdateStatusPersists(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ep := model.ActionEpisode{ID: "ep-3", ExecutionStatus: model.EpisodePlanned}
	if err := s.Save(ep, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.UpdateStatus("ep-3", model.EpisodeRolledBack); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, _, _ := s.Get("ep-3")
	if got.ExecutionStatus != model.EpisodeRolledBack {
		t.Fatalf("expected status rolled_back, got %s", got.ExecutionStatus)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got2, _, _ := reopened.Get("ep-3")
	if got2.ExecutionStatus != model.EpisodeRolledBack {
		t.Fatalf("expected persisted status rolled_back, got %s", got2.ExecutionStatus)
	}
}
