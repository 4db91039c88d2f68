package model

import "time"

// RollbackCapability classifies how much of an episode's work can be
// undone. It is computed, never set directly, from the constituent
// ActionRecords' Reversible() results.
type RollbackCapability string

const (
	RollbackFull    RollbackCapability = "full"
	RollbackPartial RollbackCapability = "partial"
	RollbackNone    RollbackCapability = "none"
)

// ExecutionStatus tracks an episode through its lifecycle.
type ExecutionStatus string

const (
	EpisodePlanned    ExecutionStatus = "planned"
	EpisodeInProgress ExecutionStatus = "in_progress"
	EpisodeCompleted  ExecutionStatus = "completed"
	EpisodeFailed     ExecutionStatus = "failed"
	EpisodeRolledBack ExecutionStatus = "rolled_back"
)

// ActionEpisode groups the actions taken to satisfy one user request
// that required system mutation, plus the bookkeeping needed to
// explain or reverse it.
type ActionEpisode struct {
	ID                string
	CreatedAt         time.Time
	UserQuestion      string
	FinalSummary      string
	Tags              []string
	Actions           []ActionRecord
	RollbackCapability RollbackCapability
	ExecutionStatus   ExecutionStatus
	PostValidation     *Evidence // probe re-run after execution, if any
}

// ComputeRollbackCapability derives the episode's RollbackCapability
// from its actions: full only if every action is reversible, none
// only if none are, partial otherwise.
func ComputeRollbackCapability(actions []ActionRecord) RollbackCapability {
	if len(actions) == 0 {
		return RollbackNone
	}
	reversible := 0
	for _, a := range actions {
		if a.Reversible() {
			reversible++
		}
	}
	switch {
	case reversible == len(actions):
		return RollbackFull
	case reversible == 0:
		return RollbackNone
	default:
		return RollbackPartial
	}
}

// CanRollback reports whether rollback should even be attempted.
func (e ActionEpisode) CanRollback() bool {
	return e.RollbackCapability != RollbackNone && e.ExecutionStatus != EpisodeRolledBack
}
