package episode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"anna.local/annad/common/checksum"
	"anna.local/annad/common/fsutil"
	"anna.local/annad/internal/apperr"
	"anna.local/annad/internal/model"
	"github.com/google/uuid"
)

// BackupStore creates and restores FileBackups under a root directory,
// per spec.md §3/§4.8/§6 (`backups/<change_set_id>_<sanitized_path>`).
type BackupStore struct {
	root string
}

// NewBackupStore builds a backup store rooted at root.
func NewBackupStore(root string) *BackupStore {
	return &BackupStore{root: root}
}

// NewChangeSetID mints a uuid for a fresh group of backups, separate
// from the snowflake-ordered request/episode id space since it needs
// no ordering, only global uniqueness for the backup filename prefix.
func NewChangeSetID() string {
	return uuid.NewString()
}

func sanitizePathForFilename(path string) string {
	replaced := strings.ReplaceAll(path, string(filepath.Separator), "_")
	return strings.TrimPrefix(replaced, "_")
}

func (s *BackupStore) pathFor(changeSetID, originalPath string) string {
	name := changeSetID + "_" + sanitizePathForFilename(originalPath)
	return filepath.Join(s.root, name)
}

// BackupBeforeEdit creates a FileBackup for a file about to be edited
// or deleted. If originalPath does not currently exist, the op is
// Created (a subsequent restore just deletes the target) even though
// the caller asked for an edit/delete — matching spec.md's "must
// attempt to create a backup before the action executes" rule applied
// to whatever the file's actual current state is.
func (s *BackupStore) BackupBeforeEdit(changeSetID, originalPath string) (model.FileBackup, error) {
	info, err := os.Stat(originalPath)
	if os.IsNotExist(err) {
		return s.backupForCreate(changeSetID, originalPath)
	}
	if err != nil {
		return model.FileBackup{}, apperr.Wrap(apperr.CategoryStorage, "stat original file", err)
	}

	content, err := os.ReadFile(originalPath)
	if err != nil {
		return model.FileBackup{}, apperr.Wrap(apperr.CategoryStorage, "read original file", err)
	}

	backupPath := s.pathFor(changeSetID, originalPath)
	if err := fsutil.AtomicWrite(backupPath, content); err != nil {
		return model.FileBackup{}, apperr.Wrap(apperr.CategoryStorage, "write backup", err)
	}

	sum := checksum.SHA256Bytes(content)
	if err := checksum.Verify(backupPath, sum); err != nil {
		return model.FileBackup{}, apperr.Wrap(apperr.CategoryStorage, "verify fresh backup", err)
	}

	return model.FileBackup{
		OriginalPath: originalPath,
		BackupPath:   backupPath,
		SHA256:       sum,
		Size:         info.Size(),
		CreatedAt:    time.Now(),
		ChangeSetID:  changeSetID,
		Op:           model.BackupOpModified,
	}, nil
}

// BackupForDelete is BackupBeforeEdit specialized for a file about to
// be removed entirely.
func (s *BackupStore) BackupForDelete(changeSetID, originalPath string) (model.FileBackup, error) {
	b, err := s.BackupBeforeEdit(changeSetID, originalPath)
	if err != nil {
		return model.FileBackup{}, err
	}
	b.Op = model.BackupOpDeleted
	return b, nil
}

// backupForCreate records an empty-marker backup for a file that does
// not yet exist, whose restore simply deletes the target.
func (s *BackupStore) backupForCreate(changeSetID, originalPath string) (model.FileBackup, error) {
	return model.FileBackup{
		OriginalPath: originalPath,
		BackupPath:   "",
		SHA256:       "",
		Size:         0,
		CreatedAt:    time.Now(),
		ChangeSetID:  changeSetID,
		Op:           model.BackupOpCreated,
	}, nil
}

// Restore reverses a single FileBackup: for Modified/Deleted, verifies
// the backup's SHA-256 and copies its content back over OriginalPath;
// for Created, deletes OriginalPath. It refuses to restore on checksum
// mismatch rather than risk overwriting with corrupt content.
func (s *BackupStore) Restore(b model.FileBackup) error {
	if !b.RequiresRestore() {
		if err := os.Remove(b.OriginalPath); err != nil && !os.IsNotExist(err) {
			return apperr.Wrap(apperr.CategoryStorage, "delete created file during rollback", err)
		}
		return nil
	}

	if err := checksum.Verify(b.BackupPath, b.SHA256); err != nil {
		return apperr.Wrap(apperr.CategoryStorage, fmt.Sprintf("refusing restore of %s: checksum mismatch", b.OriginalPath), apperr.ErrChecksumMismatch)
	}

	content, err := os.ReadFile(b.BackupPath)
	if err != nil {
		return apperr.Wrap(apperr.CategoryStorage, "read backup for restore", err)
	}

	if err := os.MkdirAll(filepath.Dir(b.OriginalPath), 0o755); err != nil {
		return apperr.Wrap(apperr.CategoryStorage, "create parent directory for restore", err)
	}

	if err := fsutil.AtomicWrite(b.OriginalPath, content); err != nil {
		return apperr.Wrap(apperr.CategoryStorage, "write restored file", err)
	}

	return nil
}
