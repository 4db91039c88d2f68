package persona

import (
	"testing"

	"anna.local/annad/internal/model"
)

func TestNew_InitializesDefaultCurrentState(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	current := s.Current()
	if current.Persona != model.PersonaUnknown {
		t.Fatalf("expected default persona unknown, got %q", current.Persona)
	}
	if _, ok := s.Override(); ok {
		t.Fatal("expected no override on a fresh store")
	}

	s2, err := New(dir)
	if err != nil {
		t.Fatalf("reopen New: %v", err)
	}
	if s2.Current().Persona != model.PersonaUnknown {
		t.Fatalf("expected persisted default to survive reopen, got %q", s2.Current().Persona)
	}
}

func TestSetOverride_PinsPersonaAndPersists(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.SetOverride(model.PersonaPowerNerd); err != nil {
		t.Fatalf("SetOverride: %v", err)
	}

	name, ok := s.Override()
	if !ok || name != model.PersonaPowerNerd {
		t.Fatalf("expected override power-nerd, got %q ok=%v", name, ok)
	}
	if s.Current().Persona != model.PersonaPowerNerd {
		t.Fatalf("expected current persona to follow override, got %q", s.Current().Persona)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if name, ok := reopened.Override(); !ok || name != model.PersonaPowerNerd {
		t.Fatalf("expected override to persist across reopen, got %q ok=%v", name, ok)
	}
}

func TestSetOverride_RejectsUnknownPersona(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetOverride(model.PersonaName("not-a-real-persona")); err == nil {
		t.Fatal("expected an error for an invalid persona name")
	}
}

func TestClearOverride_RevertsToDefault(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetOverride(model.PersonaCasualMinimal); err != nil {
		t.Fatalf("SetOverride: %v", err)
	}
	if err := s.ClearOverride(); err != nil {
		t.Fatalf("ClearOverride: %v", err)
	}

	if _, ok := s.Override(); ok {
		t.Fatal("expected override to be cleared")
	}
	if s.Current().Persona != model.PersonaUnknown {
		t.Fatalf("expected current persona reset to unknown, got %q", s.Current().Persona)
	}
}

func TestSetInferred_IgnoredWhileOverrideActive(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetOverride(model.PersonaDevEnthusiast); err != nil {
		t.Fatalf("SetOverride: %v", err)
	}
	if err := s.SetInferred(model.PersonaCreatorWriter, 0.9, 7, []string{"heavy editor usage"}); err != nil {
		t.Fatalf("SetInferred: %v", err)
	}
	if s.Current().Persona != model.PersonaDevEnthusiast {
		t.Fatalf("expected override to win over inference, got %q", s.Current().Persona)
	}
}

func TestSetInferred_AppliesWithoutOverride(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetInferred(model.PersonaAdminPragmatic, 0.8, 3, []string{"frequent systemctl usage"}); err != nil {
		t.Fatalf("SetInferred: %v", err)
	}
	current := s.Current()
	if current.Persona != model.PersonaAdminPragmatic || current.Source != model.PersonaSourceInferred {
		t.Fatalf("expected inferred persona to apply, got %+v", current)
	}
}
