package clarify

import (
	"context"
	"strings"
	"sync"
	"time"

	"anna.local/annad/internal/facts"
	"anna.local/annad/internal/model"
	"anna.local/annad/internal/probe"
)

const failureReprompThreshold = 2

// Engine runs verification probes against a selected option and
// tracks per-fact failure counts so a persistently-failing key gets
// re-prompted rather than silently retried forever.
type Engine struct {
	probes *probe.Executor
	facts  *facts.Store

	mu        sync.Mutex
	failures  map[model.FactKey]int
}

// New builds a clarification engine over probes (for verification) and
// facts (for the skip policy and for recording confirmed values).
func New(probes *probe.Executor, factStore *facts.Store) *Engine {
	return &Engine{probes: probes, facts: factStore, failures: make(map[model.FactKey]int)}
}

// ShouldSkip reports whether clarification for key can be skipped
// entirely because a fresh, verified fact already exists, per spec.md
// §4.6's skip policy.
func (e *Engine) ShouldSkip(key model.FactKey, now time.Time) (model.Fact, bool) {
	return e.facts.Fresh(key, now)
}

// FailureCount returns how many consecutive verification failures have
// been recorded for key.
func (e *Engine) FailureCount(key model.FactKey) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failures[key]
}

// ShouldReprompt reports whether key has failed enough times that the
// user should be shown the menu again rather than having Anna retry
// silently.
func (e *Engine) ShouldReprompt(key model.FactKey) bool {
	return e.FailureCount(key) >= failureReprompThreshold
}

func (e *Engine) recordFailure(key model.FactKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[key]++
}

func (e *Engine) resetFailures(key model.FactKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.failures, key)
}

// Resolve runs the full clarification flow for a parsed response
// against menu: cancellation, verification of a selected option, or
// deferred verification of free text. Auto-selection is handled by
// ResolveAutoSelect, not here.
func (e *Engine) Resolve(ctx context.Context, menu Menu, resp ParsedResponse, transcriptID string, alternatives func(factKey model.FactKey, failedValue string) []string) Result {
	switch resp.Kind {
	case ResponseCancelled:
		return Result{Kind: ResultCancelled, FactKey: menu.FactKey}

	case ResponseSelected:
		return e.verifyOption(ctx, menu.FactKey, resp.Option, transcriptID, false, alternatives)

	case ResponseOther:
		if resp.FreeText == "" {
			return Result{Kind: ResultCancelled, FactKey: menu.FactKey}
		}
		return Result{Kind: ResultNeedsVerification, Value: resp.FreeText, FactKey: menu.FactKey}

	default:
		return Result{Kind: ResultCancelled, FactKey: menu.FactKey}
	}
}

// ResolveAutoSelect resolves the single-option auto-selection case
// directly, without a user round-trip.
func (e *Engine) ResolveAutoSelect(ctx context.Context, menu Menu, transcriptID string, alternatives func(factKey model.FactKey, failedValue string) []string) Result {
	if !menu.IsAutoSelectable() {
		return Result{Kind: ResultNeedsVerification, FactKey: menu.FactKey}
	}
	return e.verifyOption(ctx, menu.FactKey, menu.Options[0], transcriptID, true, alternatives)
}

func (e *Engine) verifyOption(ctx context.Context, key model.FactKey, opt Option, transcriptID string, auto bool, alternatives func(model.FactKey, string) []string) Result {
	if opt.Verify == nil {
		e.resetFailures(key)
		e.recordConfirmed(key, opt.Value, transcriptID, auto)
		return e.confirmedResult(key, opt.Value, auto)
	}

	ev := e.probes.ExecuteNamed(ctx, opt.Verify.Probe)
	ok := ev.Success && matchesExpectation(*opt.Verify, ev)

	if ok {
		e.resetFailures(key)
		e.recordConfirmed(key, opt.Value, transcriptID, auto)
		return e.confirmedResult(key, opt.Value, auto)
	}

	e.recordFailure(key)
	var alts []string
	if alternatives != nil {
		alts = alternatives(key, opt.Value)
	}
	return Result{
		Kind:         ResultVerificationFailed,
		Value:        opt.Value,
		FactKey:      key,
		Error:        ev.FailureReason,
		Alternatives: alts,
	}
}

func (e *Engine) confirmedResult(key model.FactKey, value string, auto bool) Result {
	if auto {
		return Result{Kind: ResultAutoSelected, Value: value, FactKey: key}
	}
	return Result{Kind: ResultVerified, Value: value, FactKey: key}
}

func (e *Engine) recordConfirmed(key model.FactKey, value, transcriptID string, auto bool) {
	source := model.FactSource{Kind: model.SourceUserConfirmed, TranscriptID: transcriptID}
	if auto {
		source = model.FactSource{Kind: model.SourceProbeDerived}
	}
	_ = e.facts.Upsert(key, value, source, 90, model.CacheSlow, time.Now())
}

func matchesExpectation(exp VerifyExpectation, ev model.Evidence) bool {
	switch exp.Kind {
	case VerifyCommandExists:
		return strings.TrimSpace(ev.RawOutput) != ""
	case VerifyFileContainsLine, VerifyServiceState:
		return strings.Contains(ev.RawOutput, exp.Want)
	default:
		return false
	}
}
