// Package episode records, executes, and rolls back the filesystem
// and service mutations Anna performs on a user's behalf, per
// spec.md §4.8.
package episode

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"anna.local/annad/internal/apperr"
	"anna.local/annad/internal/model"
)

// CommandRunner executes a plain argv with no shell interpretation.
// ExecCommandRunner is the production implementation; tests substitute
// a fake, matching the probe package's Runner abstraction.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, cwd string) (stdout, stderr string, exitCode int, err error)
}

// ExecCommandRunner shells out via os/exec.
type ExecCommandRunner struct{}

func (ExecCommandRunner) Run(ctx context.Context, argv []string, cwd string) (string, string, int, error) {
	if len(argv) == 0 {
		return "", "", -1, apperr.New(apperr.CategoryStorage, "empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = cwd
	cmd.Env = os.Environ()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return stdout.String(), stderr.String(), -1, err
		}
	}
	return stdout.String(), stderr.String(), exitCode, nil
}

// ActionError pairs a failed ActionRecord with its cause, mirroring
// the probe package's "never abort the batch" discipline: one failed
// action does not stop the remaining actions in the episode from
// running, each is recorded independently.
type ActionError struct {
	Action model.ActionRecord
	Err    error
}

// Executor runs a planned sequence of actions, taking a file backup
// immediately before any action that touches the filesystem.
type Executor struct {
	backups *BackupStore
	runner  CommandRunner
}

// NewExecutor builds an action executor over backups using runner
// (ExecCommandRunner in production).
func NewExecutor(backups *BackupStore, runner CommandRunner) *Executor {
	return &Executor{backups: backups, runner: runner}
}

// PlannedAction is a single action awaiting execution, as proposed by
// the orchestrator.
type PlannedAction struct {
	Kind         model.ActionKind
	Command      []string
	Cwd          string
	FilesTouched []string
	Notes        string
}

// ExecuteBatch runs actions in order against a fresh ChangeSetID,
// backing up every touched file beforehand, and returns the completed
// ActionRecords plus per-action errors. It never aborts early: a
// failed action is recorded as ActionFailed and the batch continues,
// so partial progress is always visible to the episode.
func (e *Executor) ExecuteBatch(ctx context.Context, changeSetID string, actions []PlannedAction) ([]model.ActionRecord, []ActionError) {
	records := make([]model.ActionRecord, 0, len(actions))
	var errs []ActionError

	for i, a := range actions {
		rec, err := e.executeOne(ctx, changeSetID, i, a)
		records = append(records, rec)
		if err != nil {
			errs = append(errs, ActionError{Action: rec, Err: err})
		}
	}

	return records, errs
}

func (e *Executor) executeOne(ctx context.Context, changeSetID string, idx int, a PlannedAction) (model.ActionRecord, error) {
	rec := model.ActionRecord{
		ID:           changeSetID + "-" + itoa(idx),
		Kind:         a.Kind,
		Command:      a.Command,
		Cwd:          a.Cwd,
		FilesTouched: a.FilesTouched,
		Notes:        a.Notes,
		Status:       model.ActionPending,
		StartedAt:    time.Now(),
	}

	backupPaths, err := e.backupFiles(changeSetID, a.FilesTouched)
	if err != nil {
		rec.FinishedAt = time.Now()
		rec.Status = model.ActionFailed
		slog.ErrorContext(ctx, "action backup failed, skipping execution", "action_id", rec.ID, "error", err)
		return rec, err
	}
	rec.BackupPaths = backupPaths

	stdout, stderr, exitCode, err := e.runner.Run(ctx, a.Command, a.Cwd)
	rec.Stdout = stdout
	rec.Stderr = stderr
	rec.ExitCode = exitCode
	rec.FinishedAt = time.Now()

	if err != nil {
		rec.Status = model.ActionFailed
		slog.ErrorContext(ctx, "action execution failed", "action_id", rec.ID, "error", err)
		return rec, err
	}
	if exitCode != 0 {
		rec.Status = model.ActionFailed
		slog.WarnContext(ctx, "action exited nonzero", "action_id", rec.ID, "exit_code", exitCode)
		return rec, apperr.New(apperr.CategoryStorage, "action exited nonzero")
	}

	rec.Status = model.ActionSucceeded
	return rec, nil
}

func (e *Executor) backupFiles(changeSetID string, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		b, err := e.backupStoreBackup(changeSetID, p)
		if err != nil {
			return nil, apperr.Wrap(apperr.CategoryStorage, "backup file before action: "+p, err)
		}
		out = append(out, b.BackupPath)
	}
	return out, nil
}

// backupStoreBackup backs up a path ahead of a mutation whose exact
// kind (edit vs create vs delete) is only known by the file's current
// presence, matching BackupBeforeEdit's self-detecting behavior.
func (e *Executor) backupStoreBackup(changeSetID, path string) (model.FileBackup, error) {
	return e.backups.BackupBeforeEdit(changeSetID, path)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := make([]byte, 0, 4)
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
