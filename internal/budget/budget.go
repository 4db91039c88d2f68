// Package budget tracks the per-stage and whole-request time budgets,
// token caps, and degradation decisions for one Answer Pipeline
// request, per spec.md §4.2. It is a pure, request-scoped object: no
// I/O, no locking, just monotonic time checks against configured
// ceilings.
package budget

import (
	"time"
)

// Stage is one of the four budgeted phases of a request.
type Stage string

const (
	StageTranslator Stage = "translator"
	StageProbes     Stage = "probes"
	StageSpecialist Stage = "specialist"
	StageSupervisor Stage = "supervisor"
)

// CheckResult is the outcome of a budget check for a stage.
type CheckResult struct {
	Ok            bool
	StageExceeded bool
	TotalExceeded bool
	Stage         Stage
	Elapsed       time.Duration
	Budget        time.Duration
}

// LlmBudget bounds a single LLM call.
type LlmBudget struct {
	MaxTokens int
	Timeout   time.Duration
}

// LlmFallback is the result of should_fall_back: either Continue, or a
// typed timeout fallback carrying the user-facing message to surface.
type LlmFallback struct {
	ShouldFallBack bool
	Reason         string
	UserMessage    string
}

// Config holds the stage budget ceilings. Defaults match spec.md §4.2
// exactly: 5s/12s/15s/8s per stage, 25s total with a 1s orchestration
// margin.
type Config struct {
	TranslatorBudget time.Duration
	ProbesBudget     time.Duration
	SpecialistBudget time.Duration
	SupervisorBudget time.Duration
	TotalBudget      time.Duration
	OrchestrationMargin time.Duration

	TranslatorLLM LlmBudget
	SpecialistLLM LlmBudget

	// SafetyMargin is how much of the Probes-stage budget must remain
	// before the executor will enqueue another probe in a batch.
	SafetyMargin time.Duration

	// MaxOutputBytes bounds accumulated probe output across a request.
	MaxOutputBytes int
}

// DefaultConfig returns spec.md §4.2's default budgets.
func DefaultConfig() Config {
	return Config{
		TranslatorBudget:    5 * time.Second,
		ProbesBudget:        12 * time.Second,
		SpecialistBudget:    15 * time.Second,
		SupervisorBudget:    8 * time.Second,
		TotalBudget:         25 * time.Second,
		OrchestrationMargin: 1 * time.Second,
		TranslatorLLM:       LlmBudget{MaxTokens: 2000, Timeout: 5 * time.Second},
		SpecialistLLM:       LlmBudget{MaxTokens: 4000, Timeout: 15 * time.Second},
		SafetyMargin:        2 * time.Second,
		MaxOutputBytes:      1 << 20, // 1 MiB
	}
}

func (c Config) budgetFor(stage Stage) time.Duration {
	switch stage {
	case StageTranslator:
		return c.TranslatorBudget
	case StageProbes:
		return c.ProbesBudget
	case StageSpecialist:
		return c.SpecialistBudget
	case StageSupervisor:
		return c.SupervisorBudget
	default:
		return 0
	}
}

// Tracker is a request-scoped budget tracker, constructed once at the
// start of a request and consulted throughout.
type Tracker struct {
	cfg         Config
	start       time.Time
	now         func() time.Time
	outputBytes int
}

// NewTracker starts a budget tracker at the current time.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{cfg: cfg, start: time.Now(), now: time.Now}
}

// Elapsed returns the wall-clock time since the request started.
func (t *Tracker) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// Check evaluates whether stage's budget, or the request total, has
// been exceeded.
func (t *Tracker) Check(stage Stage) CheckResult {
	elapsed := t.Elapsed()
	stageBudget := t.cfg.budgetFor(stage)

	if t.cfg.TotalBudget > 0 && elapsed > t.cfg.TotalBudget {
		return CheckResult{TotalExceeded: true, Stage: stage, Elapsed: elapsed, Budget: t.cfg.TotalBudget}
	}
	if stageBudget > 0 && elapsed > stageBudget {
		return CheckResult{StageExceeded: true, Stage: stage, Elapsed: elapsed, Budget: stageBudget}
	}
	return CheckResult{Ok: true, Stage: stage, Elapsed: elapsed, Budget: stageBudget}
}

// ShouldFallBack implements spec.md §4.2's should_fall_back(stage,
// elapsed): degradation is triggered the same way a Check() would flag
// StageExceeded, but packaged with the user-facing message the
// orchestrator surfaces on a Specialist timeout.
func (t *Tracker) ShouldFallBack(stage Stage) LlmFallback {
	res := t.Check(stage)
	if res.Ok {
		return LlmFallback{}
	}
	switch {
	case res.TotalExceeded:
		return LlmFallback{
			ShouldFallBack: true,
			Reason:         "total_exceeded",
			UserMessage:    "I ran out of time working on this and I'm giving you my best partial answer.",
		}
	case stage == StageSpecialist:
		return LlmFallback{
			ShouldFallBack: true,
			Reason:         "specialist_stage_exceeded",
			UserMessage:    "I ran out of time double-checking this, so take the following with a grain of salt.",
		}
	default:
		return LlmFallback{
			ShouldFallBack: true,
			Reason:         string(stage) + "_stage_exceeded",
			UserMessage:    "I ran out of time on part of this request.",
		}
	}
}

// ProbesRemaining returns how much of the Probes stage budget is left,
// and whether that remainder still clears SafetyMargin (the signal the
// probe batch executor uses to stop enqueueing new probes).
func (t *Tracker) ProbesRemaining() (time.Duration, bool) {
	elapsed := t.Elapsed()
	remaining := t.cfg.ProbesBudget - elapsed
	return remaining, remaining > t.cfg.SafetyMargin
}

// RecordOutputBytes adds n to the request's accumulated probe output
// byte count and reports whether the request is still within
// MaxOutputBytes.
func (t *Tracker) RecordOutputBytes(n int) bool {
	t.outputBytes += n
	return t.outputBytes <= t.cfg.MaxOutputBytes
}

// LlmBudgetFor returns the configured LlmBudget for translator
// (Junior) or specialist (Senior) calls.
func (t *Tracker) LlmBudgetFor(stage Stage) LlmBudget {
	if stage == StageSpecialist {
		return t.cfg.SpecialistLLM
	}
	return t.cfg.TranslatorLLM
}
