package probe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"anna.local/annad/internal/budget"
	"anna.local/annad/internal/model"
)

const (
	maxOutputBytes     = 16 * 1024 // per-probe cap, spec.md §4.1
	truncationMarker   = "\n[...output truncated...]\n"
	defaultParallelism = 4
	defaultProbeTimeout = 10 * time.Second
)

// Runner executes a probe's argv and returns its combined output.
// ExecRunner is the production implementation; tests substitute a
// fake.
type Runner interface {
	Run(ctx context.Context, argv []string) ([]byte, error)
}

// ExecRunner shells out via os/exec with no shell interpretation —
// every probe is a fixed argv, never a shell string.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty argv")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		if stdout.Len() == 0 {
			return stderr.Bytes(), err
		}
		return stdout.Bytes(), err
	}
	return stdout.Bytes(), nil
}

// Executor runs probes from a Catalog against a Cache, honoring
// per-probe timeouts and the caller's budget. It never returns an
// error from a probe failure: every outcome is captured on the
// returned Evidence, per spec.md §4.1's "executor never raises" rule.
type Executor struct {
	catalog *Catalog
	cache   *Cache
	runner  Runner

	idCounter int
	idMu      sync.Mutex
}

// NewExecutor builds a probe executor over catalog/cache using runner
// (ExecRunner in production).
func NewExecutor(catalog *Catalog, cache *Cache, runner Runner) *Executor {
	return &Executor{catalog: catalog, cache: cache, runner: runner}
}

// nextEvidenceID assigns stable, request-submission-ordered E# ids, so
// citations stay stable regardless of completion order (spec.md §5).
func (e *Executor) nextEvidenceID() string {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	e.idCounter++
	return "E" + itoa(e.idCounter)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := make([]byte, 0, 8)
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// Execute runs a single probe by id, consulting and updating the
// cache. Unknown ids return a failed Evidence with FailureReason
// "unknown_probe" rather than an error, matching spec.md's data-not-
// exceptions propagation rule.
func (e *Executor) Execute(ctx context.Context, probeID string) model.Evidence {
	p, ok := e.catalog.Lookup(probeID)
	if !ok {
		slog.WarnContext(ctx, "probe not in catalog", "probe_id", probeID)
		return model.Evidence{
			ID:            e.nextEvidenceID(),
			ProbeID:       probeID,
			Success:       false,
			FailureReason: "unknown_probe",
			Timestamp:     time.Now(),
		}
	}
	return e.executeProbe(ctx, p)
}

// ExecuteNamed runs a probe definition not in the static catalog (the
// journalctl-per-unit probes built by JournalProbe).
func (e *Executor) ExecuteNamed(ctx context.Context, p model.Probe) model.Evidence {
	return e.executeProbe(ctx, p)
}

func (e *Executor) executeProbe(ctx context.Context, p model.Probe) model.Evidence {
	now := time.Now()
	if cached, ok := e.cache.Get(p.ID, p.CommandVec, now); ok {
		cached.ID = e.nextEvidenceID()
		return cached
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	out, err := e.runner.Run(timeoutCtx, p.CommandVec)

	ev := model.Evidence{
		ID:        e.nextEvidenceID(),
		ProbeID:   p.ID,
		Topic:     p.Topic,
		Timestamp: now,
	}

	if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
		ev.Success = false
		ev.FailureReason = "timeout"
		slog.WarnContext(ctx, "probe timed out", "probe_id", p.ID)
		return ev // no cache write on timeout
	}

	truncated := capOutput(out)
	ev.RawOutput = truncated
	ev.HumanSummary = summarize(p, truncated)

	if err != nil {
		ev.Success = false
		ev.FailureReason = "nonzero_exit"
		slog.WarnContext(ctx, "probe exited nonzero", "probe_id", p.ID, "error", err)
		return ev
	}

	ev.Success = true
	e.cache.Put(p.ID, p.CommandVec, p.CacheClass, p.TTLOverride, ev, now)
	return ev
}

func capOutput(out []byte) string {
	if len(out) <= maxOutputBytes {
		return string(out)
	}
	return string(out[:maxOutputBytes]) + truncationMarker
}

// summarize produces a terse human-readable line for debug transcripts
// and as a fallback when no richer parser output is available; the
// coverage/scorer layers use Topic and Success, not this text.
func summarize(p model.Probe, output string) string {
	if len(output) > 120 {
		return output[:120] + "..."
	}
	return output
}

// BatchResult holds the outcome of an ExecuteMany call.
type BatchResult struct {
	Evidence []model.Evidence
	// Curtailed reports whether the batch stopped early because the
	// budget's safety margin was reached before every id was run.
	Curtailed bool
}

// ExecuteMany runs ids concurrently up to parallelism (0 = default 4),
// stopping enqueuement once the tracker's Probes-stage remaining time
// drops below its safety margin, and tracking accumulated output bytes
// against the tracker's MaxOutputBytes.
func (e *Executor) ExecuteMany(ctx context.Context, ids []string, tracker *budget.Tracker, parallelism int) BatchResult {
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}

	results := make([]model.Evidence, len(ids))
	var g errgroup.Group
	g.SetLimit(parallelism)
	curtailed := false

	// Reserve one id per submitted probe up front, so the batch's E#
	// ids follow submission order rather than completion order.
	e.idMu.Lock()
	base := e.idCounter
	e.idCounter += len(ids)
	e.idMu.Unlock()

	for i, id := range ids {
		if tracker != nil {
			if _, ok := tracker.ProbesRemaining(); !ok {
				curtailed = true
				break
			}
		}

		idx, probeID := i, id
		g.Go(func() error {
			ev := e.Execute(ctx, probeID)
			ev.ID = "E" + itoa(base+idx+1)
			if tracker != nil {
				tracker.RecordOutputBytes(len(ev.RawOutput))
			}
			results[idx] = ev
			return nil
		})
	}

	g.Wait()

	out := make([]model.Evidence, 0, len(results))
	for _, r := range results {
		if r.ID != "" {
			out = append(out, r)
		}
	}

	return BatchResult{Evidence: out, Curtailed: curtailed}
}
