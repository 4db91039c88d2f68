package episode

import (
	"testing"

	"anna.local/annad/internal/model"
)

func TestComputeInverse_FileEdit(t *testing.T) {
	rec := model.ActionRecord{
		Kind:         model.ActionFileEdit,
		FilesTouched: []string{"/home/u/.vimrc"},
	}
	backups := []model.FileBackup{
		{OriginalPath: "/home/u/.vimrc", BackupPath: "/home/u/.vimrc.anna-backup", Op: model.BackupOpModified},
	}

	plan := ComputeInverse(rec, backups)
	if !plan.HasInverse {
		t.Fatal("expected an inverse for a modified-file edit")
	}
	want := "cp /home/u/.vimrc.anna-backup /home/u/.vimrc"
	if len(plan.Commands) != 1 || plan.Commands[0] != want {
		t.Fatalf("got %v, want [%s]", plan.Commands, want)
	}
}

func TestComputeInverse_PackageInstall(t *testing.T) {
	rec := model.ActionRecord{
		Kind:    model.ActionServiceAction,
		Command: []string{"yay", "-S", "docker", "vim"},
	}

	plan := ComputeInverse(rec, nil)
	if !plan.HasInverse {
		t.Fatal("expected an inverse for a package install")
	}
	want := "yay -Rns docker vim"
	if len(plan.Commands) != 1 || plan.Commands[0] != want {
		t.Fatalf("got %v, want [%s]", plan.Commands, want)
	}
}

func TestComputeInverse_ServiceEnable(t *testing.T) {
	rec := model.ActionRecord{
		Kind:    model.ActionServiceAction,
		Command: []string{"systemctl", "enable", "sshd"},
	}

	plan := ComputeInverse(rec, nil)
	want := "systemctl disable sshd"
	if !plan.HasInverse || plan.Commands[0] != want {
		t.Fatalf("got %v, want [%s]", plan.Commands, want)
	}
}

func TestComputeInverse_RunCommandHasNoInverse(t *testing.T) {
	rec := model.ActionRecord{Kind: model.ActionShellCommand, Command: []string{"journalctl", "--rotate"}}
	plan := ComputeInverse(rec, nil)
	if plan.HasInverse {
		t.Fatal("shell commands with no tracked files must have no inverse")
	}
}

func TestComputeInverse_CreatedFileDeletesOnRollback(t *testing.T) {
	rec := model.ActionRecord{
		Kind:         model.ActionFileCreate,
		FilesTouched: []string{"/home/u/new.conf"},
	}
	backups := []model.FileBackup{
		{OriginalPath: "/home/u/new.conf", Op: model.BackupOpCreated},
	}

	plan := ComputeInverse(rec, backups)
	want := "rm -f /home/u/new.conf"
	if !plan.HasInverse || plan.Commands[0] != want {
		t.Fatalf("got %v, want [%s]", plan.Commands, want)
	}
}

func TestBuildRollbackPlan_ReverseOrder(t *testing.T) {
	actions := []model.ActionRecord{
		{ID: "a1", Kind: model.ActionFileEdit, FilesTouched: []string{"/f1"}},
		{ID: "a2", Kind: model.ActionFileEdit, FilesTouched: []string{"/f2"}},
	}
	byAction := map[string][]model.FileBackup{
		"a1": {{OriginalPath: "/f1", BackupPath: "/f1.bak", Op: model.BackupOpModified}},
		"a2": {{OriginalPath: "/f2", BackupPath: "/f2.bak", Op: model.BackupOpModified}},
	}

	plans := BuildRollbackPlan(actions, byAction)
	if len(plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(plans))
	}
	if plans[0].Commands[0] != "cp /f2.bak /f2" {
		t.Fatalf("expected a2's inverse first, got %v", plans[0].Commands)
	}
	if plans[1].Commands[0] != "cp /f1.bak /f1" {
		t.Fatalf("expected a1's inverse second, got %v", plans[1].Commands)
	}
}
