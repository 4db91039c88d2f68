package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"anna.local/annad/internal/episode"
	"anna.local/annad/internal/model"
)

func TestRollbackHandler_RestoresFileAndReportsService(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	target := filepath.Join(dir, "conf.txt")
	if err := os.WriteFile(target, []byte("original"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	backups := episode.NewBackupStore(filepath.Join(dir, "backups"))
	fb, err := backups.BackupBeforeEdit("cs-1", target)
	if err != nil {
		t.Fatalf("BackupBeforeEdit: %v", err)
	}
	if err := os.WriteFile(target, []byte("edited"), 0o644); err != nil {
		t.Fatalf("edit file: %v", err)
	}

	episodes, err := episode.New(filepath.Join(dir, "episodes"))
	if err != nil {
		t.Fatalf("episode.New: %v", err)
	}

	ep := model.ActionEpisode{
		ID: "ep-1",
		Actions: []model.ActionRecord{
			{ID: "a1", Kind: model.ActionFileEdit, FilesTouched: []string{target}, BackupPaths: []string{fb.BackupPath}},
			{ID: "a2", Kind: model.ActionServiceAction, Command: []string{"systemctl", "enable", "sshd"}},
		},
		RollbackCapability: model.RollbackPartial,
		ExecutionStatus:    model.EpisodeCompleted,
	}
	backupsByAction := map[string][]model.FileBackup{"a1": {fb}}
	if err := episodes.Save(ep, backupsByAction); err != nil {
		t.Fatalf("Save: %v", err)
	}

	h := NewRollbackHandler(episodes, backups)

	router := gin.New()
	router.POST("/v1/actions/:episode_id/rollback", h.Rollback)

	req := httptest.NewRequest(http.MethodPost, "/v1/actions/ep-1/rollback", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	restored, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read restored file: %v", err)
	}
	if string(restored) != "original" {
		t.Fatalf("expected file restored to original content, got %q", restored)
	}

	if !strings.Contains(w.Body.String(), `"systemctl disable sshd"`) {
		t.Fatalf("expected unexecuted service inverse in response, got: %s", w.Body.String())
	}
}
