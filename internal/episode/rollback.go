package episode

import (
	"strings"

	"anna.local/annad/internal/model"
)

// InversePlan is the ordered, human-displayable inverse command list
// for a single ActionRecord, plus whether it was derivable at all.
type InversePlan struct {
	Commands []string
	HasInverse bool
}

// ComputeInverse deterministically derives rec's inverse per spec.md
// §4.8's per-kind rules. backups must be the FileBackups created
// immediately before rec executed, in the same order as rec.FilesTouched.
func ComputeInverse(rec model.ActionRecord, backups []model.FileBackup) InversePlan {
	switch rec.Kind {
	case model.ActionFileEdit, model.ActionFileCreate, model.ActionFileDelete:
		return fileInverse(rec, backups)
	case model.ActionServiceAction:
		return serviceOrPackageInverse(rec)
	case model.ActionShellCommand:
		return InversePlan{HasInverse: false}
	default:
		return InversePlan{HasInverse: false}
	}
}

// fileInverse covers EditFile/CreateFile/DeleteFile and the MoveFile
// special case (an edit action whose Command is an `mv`): one cp per
// touched file, or an rm for a file that did not previously exist.
func fileInverse(rec model.ActionRecord, backups []model.FileBackup) InversePlan {
	if isMove(rec) && len(rec.FilesTouched) == 2 {
		// reverse mv: dst -> src
		return InversePlan{
			Commands:   []string{"mv " + shellQuote(rec.FilesTouched[1]) + " " + shellQuote(rec.FilesTouched[0])},
			HasInverse: true,
		}
	}

	if len(backups) == 0 || len(backups) < len(rec.FilesTouched) {
		return InversePlan{HasInverse: false}
	}

	cmds := make([]string, 0, len(backups))
	for _, b := range backups {
		if !b.RequiresRestore() {
			cmds = append(cmds, "rm -f "+shellQuote(b.OriginalPath))
			continue
		}
		cmds = append(cmds, "cp "+shellQuote(b.BackupPath)+" "+shellQuote(b.OriginalPath))
	}

	return InversePlan{Commands: cmds, HasInverse: len(cmds) > 0}
}

func isMove(rec model.ActionRecord) bool {
	return len(rec.Command) > 0 && filenameBase(rec.Command[0]) == "mv"
}

// serviceOrPackageInverse inspects rec.Command to decide whether this
// was a package-manager invocation (pacman/yay) or a systemd unit
// action, and builds the dual accordingly.
func serviceOrPackageInverse(rec model.ActionRecord) InversePlan {
	if len(rec.Command) == 0 {
		return InversePlan{HasInverse: false}
	}

	tool := filenameBase(rec.Command[0])
	switch tool {
	case "systemctl":
		return systemctlInverse(rec.Command)
	case "pacman", "yay":
		return packageInverse(tool, rec.Command)
	default:
		return InversePlan{HasInverse: false}
	}
}

// packageInverse handles `<tool> -S <pkgs>` -> `<tool> -Rns <pkgs>` and
// the reverse, preserving whichever tool issued the original command.
func packageInverse(tool string, command []string) InversePlan {
	pkgs := packageArgs(command)
	if len(pkgs) == 0 {
		return InversePlan{HasInverse: false}
	}

	switch {
	case hasFlag(command, "-S") && !hasFlag(command, "-Rns") && !hasFlag(command, "-R"):
		return InversePlan{
			Commands:   []string{tool + " -Rns " + strings.Join(pkgs, " ")},
			HasInverse: true,
		}
	case hasFlag(command, "-Rns") || hasFlag(command, "-R"):
		return InversePlan{
			Commands:   []string{tool + " -S " + strings.Join(pkgs, " ")},
			HasInverse: true,
		}
	default:
		return InversePlan{HasInverse: false}
	}
}

// systemctlInverse swaps enable<->disable and start<->stop.
func systemctlInverse(command []string) InversePlan {
	if len(command) < 3 {
		return InversePlan{HasInverse: false}
	}
	verb := command[1]
	unit := strings.Join(command[2:], " ")

	dual, ok := serviceVerbDuals[verb]
	if !ok {
		return InversePlan{HasInverse: false}
	}

	return InversePlan{
		Commands:   []string{"systemctl " + dual + " " + unit},
		HasInverse: true,
	}
}

var serviceVerbDuals = map[string]string{
	"enable":  "disable",
	"disable": "enable",
	"start":   "stop",
	"stop":    "start",
}

func packageArgs(command []string) []string {
	var pkgs []string
	for _, a := range command[1:] {
		if strings.HasPrefix(a, "-") {
			continue
		}
		pkgs = append(pkgs, a)
	}
	return pkgs
}

func hasFlag(command []string, flag string) bool {
	for _, a := range command {
		if a == flag {
			return true
		}
	}
	return false
}

func filenameBase(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func shellQuote(s string) string {
	if !strings.ContainsAny(s, " \t\n'\"$") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// BuildRollbackPlan computes the full inverse-command sequence for an
// episode's actions, in reverse execution order (undo the last action
// first). It returns only the plans; the episode's capability comes
// from ComputeRollbackCapability.
func BuildRollbackPlan(actions []model.ActionRecord, backupsByAction map[string][]model.FileBackup) []InversePlan {
	plans := make([]InversePlan, len(actions))
	for i := len(actions) - 1; i >= 0; i-- {
		a := actions[i]
		plans[len(actions)-1-i] = ComputeInverse(a, backupsByAction[a.ID])
	}
	return plans
}
