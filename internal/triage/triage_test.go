package triage

import (
	"testing"

	"anna.local/annad/internal/model"
)

func TestClassify_Memory(t *testing.T) {
	got := Classify("how much RAM do I have left")
	if got.Target != model.TargetMemory {
		t.Fatalf("expected memory target, got %s", got.Target)
	}
	if got.Confidence <= 0 {
		t.Fatalf("expected positive confidence, got %d", got.Confidence)
	}
}

func TestClassify_ActionRequestBeatsDiagnose(t *testing.T) {
	got := Classify("please install vim, something is broken")
	if got.Target != model.TargetActionRequest {
		t.Fatalf("expected action_request to win on keyword priority, got %s", got.Target)
	}
}

func TestClassify_Unknown(t *testing.T) {
	got := Classify("what is your favorite color")
	if got.Target != model.TargetUnknown || got.Confidence != 0 {
		t.Fatalf("expected unknown/0 confidence, got %+v", got)
	}
}
