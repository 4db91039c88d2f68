package skills

import (
	"testing"
)

func TestLearnFromSuccess_BecomesRoutable(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	sk, err := s.LearnFromSuccess("list_failed_units", "lists failed systemd units",
		[]string{"systemctl", "--failed"}, "what services failed", 120)
	if err != nil {
		t.Fatal(err)
	}

	got, ok := s.Get(sk.ID)
	if !ok || got.Intent != "list_failed_units" {
		t.Fatalf("expected to find learned skill, got %+v ok=%v", got, ok)
	}

	candidates := s.Routable("what services failed")
	found := false
	for _, c := range candidates {
		if c.ID == sk.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("expected newly learned skill to be routable")
	}
}

func TestRoutable_HidesUntrustedSkills(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(dir)
	sk, _ := s.LearnFromSuccess("x", "x", []string{"true"}, "do x", 10)

	for i := 0; i < 10; i++ {
		if err := s.RecordFailure(sk.ID); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := s.Get(sk.ID)
	if got.Stats.IsTrusted() {
		t.Fatalf("expected trust to have fallen below threshold, got %d", got.Stats.Trust)
	}

	for _, c := range s.Routable("do x") {
		if c.ID == sk.ID {
			t.Fatal("expected untrusted skill to be hidden from routing")
		}
	}

	if _, ok := s.Get(sk.ID); !ok {
		t.Fatal("expected untrusted skill to still be preserved in the store")
	}
}

func TestRoutable_HidesSkillsPastRetryThreshold(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(dir)
	sk, _ := s.LearnFromSuccess("y", "y", []string{"true"}, "do y", 10)

	_ = s.RecordSuccess(sk.ID, 10) // 2 successes total now
	for i := 0; i < 5; i++ {
		_ = s.RecordFailure(sk.ID)
	}

	got, _ := s.Get(sk.ID)
	if got.Stats.ShouldRetry() {
		t.Fatalf("expected ShouldRetry=false once total_uses>=5 and reliability<0.3, got %+v", got.Stats)
	}

	for _, c := range s.Routable("do y") {
		if c.ID == sk.ID {
			t.Fatal("expected skill past the retry threshold to be hidden from routing")
		}
	}
}
