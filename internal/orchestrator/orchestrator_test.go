package orchestrator

import (
	"context"
	"encoding/json"
	"testing"

	"anna.local/annad/common/llm"
	"anna.local/annad/internal/budget"
	"anna.local/annad/internal/model"
	"anna.local/annad/internal/probe"
)

type scriptedClient struct {
	responses []string
	calls     int
}

func (c *scriptedClient) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	if c.calls >= len(c.responses) {
		return nil, errNoMoreScriptedResponses
	}
	raw := c.responses[c.calls]
	c.calls++
	if err := json.Unmarshal([]byte(raw), result); err != nil {
		return nil, err
	}
	return &llm.Response{}, nil
}

func (c *scriptedClient) Model() string { return "scripted" }

var errNoMoreScriptedResponses = &scriptedErr{"no more scripted responses"}

type scriptedErr struct{ s string }

func (e *scriptedErr) Error() string { return e.s }

type fakeRunner struct{}

func (fakeRunner) Run(ctx context.Context, argv []string) ([]byte, error) {
	return []byte("ok"), nil
}

func newTestOrchestrator(junior, senior llm.Client) *Orchestrator {
	cat := probe.NewCatalog()
	cache := probe.NewCache()
	exec := probe.NewExecutor(cat, cache, fakeRunner{})
	return New(exec, cat, junior, senior, 0)
}

func TestRun_DirectApprovalSkipsSenior(t *testing.T) {
	junior := &scriptedClient{responses: []string{
		`{"type":"propose_answer","text":"You have 16GB of RAM. [E1]","citations":["E1"],"scores":{"evidence":0.9,"reasoning":0.9,"coverage":1.0,"overall":90},"ready_for_user":true}`,
	}}
	senior := &scriptedClient{}
	o := newTestOrchestrator(junior, senior)

	out := o.Run(context.Background(), "how much memory do I have", model.TargetMemory, budget.NewTracker(budget.DefaultConfig()))

	if out.IsRefusal || out.NeedsClarify {
		t.Fatalf("expected a direct final answer, got %+v", out)
	}
	if senior.calls != 0 {
		t.Fatalf("expected senior not to be consulted, got %d calls", senior.calls)
	}
}

func TestRun_LowScoreEscalatesToSenior(t *testing.T) {
	junior := &scriptedClient{responses: []string{
		`{"type":"propose_answer","text":"Maybe 16GB. [E1]","citations":["E1"],"scores":{"evidence":0.5,"reasoning":0.5,"coverage":0.5,"overall":50},"ready_for_user":true}`,
	}}
	senior := &scriptedClient{responses: []string{
		`{"type":"approve_answer","scores":{"evidence":0.8,"reasoning":0.8,"coverage":0.8,"overall":80}}`,
	}}
	o := newTestOrchestrator(junior, senior)

	out := o.Run(context.Background(), "how much memory do I have", model.TargetMemory, budget.NewTracker(budget.DefaultConfig()))

	if senior.calls != 1 {
		t.Fatalf("expected senior to be consulted once, got %d", senior.calls)
	}
	if out.IsRefusal {
		t.Fatal("expected an approved answer, not a refusal")
	}
}

func TestRun_MalformedSeniorResponseRefuses(t *testing.T) {
	junior := &scriptedClient{responses: []string{
		`{"type":"escalate_to_senior","summary":"not confident"}`,
	}}
	senior := &scriptedClient{responses: []string{
		`not json at all`,
	}}
	o := newTestOrchestrator(junior, senior)

	out := o.Run(context.Background(), "diagnose my system", model.TargetDiagnose, budget.NewTracker(budget.DefaultConfig()))

	if !out.IsRefusal {
		t.Fatal("expected a refusal on malformed senior response")
	}
	if out.Reliability != 0 {
		t.Fatalf("expected reliability 0 on refusal, got %d", out.Reliability)
	}
}

func TestRun_ClarificationRequestShortCircuits(t *testing.T) {
	junior := &scriptedClient{responses: []string{
		`{"type":"ask_clarification","question":"which disk?","options":["/dev/sda","/dev/sdb"]}`,
	}}
	o := newTestOrchestrator(junior, &scriptedClient{})

	out := o.Run(context.Background(), "is my disk full", model.TargetDiskFree, budget.NewTracker(budget.DefaultConfig()))

	if !out.NeedsClarify {
		t.Fatal("expected NeedsClarify")
	}
	if out.ClarifyQuestion != "which disk?" {
		t.Fatalf("unexpected clarify question: %q", out.ClarifyQuestion)
	}
}
