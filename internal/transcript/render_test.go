package transcript

import (
	"strings"
	"testing"

	"anna.local/annad/internal/model"
)

func TestValidate_FlagsForbiddenTerms(t *testing.T) {
	violations := Validate("Based on [E1], your hw_snapshot shows 16GB. tool_name: lscpu")
	if len(violations) == 0 {
		t.Fatal("expected forbidden terms to be flagged")
	}
}

func TestValidate_CleanTextHasNoViolations(t *testing.T) {
	violations := Validate("You have 16GB of RAM installed.")
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
}

func TestSelectFinalBlock_PrefersFinalAnswer(t *testing.T) {
	events := []model.TranscriptEvent{
		{Type: model.EventMessage, Speaker: "user", Text: "how much memory do I have"},
		{Type: model.EventStageStart, StageName: "evidence"},
		{Type: model.EventFinalAnswer, Text: "You have 16GB of RAM."},
	}
	got := selectFinalBlock(events)
	if got != "You have 16GB of RAM." {
		t.Fatalf("expected the final answer text, got %q", got)
	}
}

func TestRender_SingleAnswerInvariant(t *testing.T) {
	events := []model.TranscriptEvent{
		{Type: model.EventMessage, Speaker: "user", Text: "q"},
		{Type: model.EventStageStart, StageName: "triage"},
		{Type: model.EventProbeStart, ProbeID: "mem_info"},
		{Type: model.EventProbeEnd, ProbeID: "mem_info"},
		{Type: model.EventNote, Text: "internal debug note"},
		{Type: model.EventFinalAnswer, Text: "You have 16GB of RAM."},
	}
	out := Render(events, nil, model.RenderHuman, 95, "mem_info")

	if strings.Count(out, "Reliability:") != 1 {
		t.Fatalf("expected exactly one reliability footer, got: %s", out)
	}
	if !strings.Contains(out, "16GB of RAM") {
		t.Fatalf("expected the final answer text present, got: %s", out)
	}
}

func TestApplyConfidencePhrasing(t *testing.T) {
	cases := []struct {
		reliability int
		wantPrefix  string
	}{
		{95, ""},
		{80, "It looks like"},
		{65, "I think"},
		{40, "I'm not certain, but"},
	}
	for _, c := range cases {
		got := applyConfidencePhrasing("your disk is full", c.reliability)
		if c.wantPrefix == "" {
			if got != "your disk is full" {
				t.Errorf("reliability=%d: expected no prefix, got %q", c.reliability, got)
			}
			continue
		}
		if !strings.HasPrefix(got, c.wantPrefix) {
			t.Errorf("reliability=%d: expected prefix %q, got %q", c.reliability, c.wantPrefix, got)
		}
	}
}

func TestRenderDebug_ShowsCitationsAndStageSeparators(t *testing.T) {
	events := []model.TranscriptEvent{
		{Type: model.EventStageStart, StageName: "evidence"},
		{Type: model.EventProbeEnd, ProbeID: "mem_info"},
	}
	evidence := []model.Evidence{
		{ID: "E1", ProbeID: "mem_info", HumanSummary: "16GB total"},
	}

	out := Render(events, evidence, model.RenderDebug, 90, "mem_info")
	if !strings.Contains(out, "----- evidence -----") {
		t.Fatalf("expected stage separator, got: %s", out)
	}
	if !strings.Contains(out, "[E1]") {
		t.Fatalf("expected citation id in debug output, got: %s", out)
	}
}
