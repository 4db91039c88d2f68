package episode

import (
	"context"
	"log/slog"

	"anna.local/annad/internal/apperr"
	"anna.local/annad/internal/model"
)

// RestoreResult records the outcome of rolling back one ActionRecord.
type RestoreResult struct {
	ActionID string
	Restored bool
	Err      error
}

// RollbackEpisode restores every file-touching action in ep, most
// recent first, using the FileBackups the executor recorded during
// the original run. It refuses an episode whose capability is None
// and stops at the first restore failure (a checksum mismatch or
// missing backup), returning every result attempted so far so the
// caller can report exactly how far rollback got.
func (s *BackupStore) RollbackEpisode(ctx context.Context, ep model.ActionEpisode, backupsByAction map[string][]model.FileBackup) ([]RestoreResult, error) {
	if !ep.CanRollback() {
		return nil, apperr.ErrRollbackUnavailable
	}

	var results []RestoreResult
	for i := len(ep.Actions) - 1; i >= 0; i-- {
		a := ep.Actions[i]
		if !a.Reversible() {
			continue
		}

		backups := backupsByAction[a.ID]
		if len(backups) == 0 {
			continue // nothing file-based to restore (e.g. a service action)
		}

		for _, b := range backups {
			err := s.Restore(b)
			results = append(results, RestoreResult{ActionID: a.ID, Restored: err == nil, Err: err})
			if err != nil {
				slog.ErrorContext(ctx, "rollback restore failed", "action_id", a.ID, "path", b.OriginalPath, "error", err)
				return results, apperr.Wrap(apperr.CategoryStorage, "rollback halted on restore failure for action "+a.ID, err)
			}
			slog.InfoContext(ctx, "rollback restored file", "action_id", a.ID, "path", b.OriginalPath, "op", b.Op)
		}
	}

	return results, nil
}
