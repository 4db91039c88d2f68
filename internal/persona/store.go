// Package persona persists Anna's current behavioral persona and the
// optional operator override that pins it, per spec.md §6's
// persona/current.json and persona/override.
package persona

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"anna.local/annad/common/fsutil"
	"anna.local/annad/internal/apperr"
	"anna.local/annad/internal/model"
)

const currentFile = "current.json"
const overrideFile = "override"

// Store is a process-wide, mutex-protected cache of the current
// persona state and its override, backed by root/current.json and
// root/override, matching the facts/skills per-item file layout.
type Store struct {
	mu          sync.RWMutex
	root        string
	current     model.PersonaState
	override    model.PersonaName
	hasOverride bool
}

// New builds a persona store rooted at root, loading whatever state
// and override already exist on disk. If no current.json exists yet,
// it is initialized to the unset default and persisted immediately so
// the file always exists once annad has started once.
func New(root string) (*Store, error) {
	s := &Store{root: root}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	if s.current.Updated.IsZero() {
		s.current = model.DefaultPersonaState(time.Now())
		if err := s.persistCurrentLocked(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Reload re-reads current.json and the override file from disk and
// replaces the in-memory state, picking up an operator hand-editing
// root/override without going through SetOverride. Intended to be
// called from a filesystem watcher, not the request path.
func (s *Store) Reload() error {
	current, override, hasOverride, err := loadFromDisk(s.root)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = current
	s.override = override
	s.hasOverride = hasOverride
	return nil
}

func loadFromDisk(root string) (model.PersonaState, model.PersonaName, bool, error) {
	var current model.PersonaState

	data, err := os.ReadFile(filepath.Join(root, currentFile))
	switch {
	case os.IsNotExist(err):
		// left zero-valued; New fills in the default and persists it
	case err != nil:
		return model.PersonaState{}, "", false, apperr.Wrap(apperr.CategoryStorage, "load persona current state", err)
	default:
		state, decodeErr := decodeState(data)
		if decodeErr != nil {
			return model.PersonaState{}, "", false, decodeErr
		}
		current = state
	}

	overrideData, err := os.ReadFile(filepath.Join(root, overrideFile))
	switch {
	case os.IsNotExist(err):
		return current, "", false, nil
	case err != nil:
		return model.PersonaState{}, "", false, apperr.Wrap(apperr.CategoryStorage, "load persona override", err)
	default:
		name, ok := model.ParsePersonaName(trimOverride(string(overrideData)))
		if !ok {
			return model.PersonaState{}, "", false, apperr.New(apperr.CategoryStorage, "persona override file holds an invalid persona name")
		}
		return current, name, true, nil
	}
}

// Current returns the currently active persona state.
func (s *Store) Current() model.PersonaState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Override returns the pinned persona name, if an override is set.
func (s *Store) Override() (model.PersonaName, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.override, s.hasOverride
}

// SetOverride pins persona as the active persona, rejecting anything
// outside model.ValidPersonas, and records it as the new current state
// with source "override" per the original persona-cli semantics.
func (s *Store) SetOverride(name model.PersonaName) error {
	if _, ok := model.ParsePersonaName(string(name)); !ok {
		return apperr.New(apperr.CategoryPolicy, "unknown persona: "+string(name))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fsutil.AtomicWrite(filepath.Join(s.root, overrideFile), []byte(name)); err != nil {
		return apperr.Wrap(apperr.CategoryStorage, "persist persona override", err)
	}
	s.override = name
	s.hasOverride = true

	s.current = model.PersonaState{
		Persona:      name,
		Confidence:   1.0,
		Updated:      time.Now(),
		Source:       model.PersonaSourceOverride,
		Explanations: []string{"manual override set to " + string(name)},
	}
	return s.persistCurrentLocked()
}

// ClearOverride removes the pinned persona, reverting the current
// state to unknown/default until the next inference run replaces it.
func (s *Store) ClearOverride() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.root, overrideFile)); err != nil && !os.IsNotExist(err) {
		return apperr.Wrap(apperr.CategoryStorage, "remove persona override", err)
	}
	s.override = ""
	s.hasOverride = false

	s.current = model.DefaultPersonaState(time.Now())
	s.current.Explanations = []string{"manual override cleared"}
	return s.persistCurrentLocked()
}

// SetInferred records a freshly-inferred persona, unless an override
// is active — an override always wins over inference, matching the
// original implementation's precedence.
func (s *Store) SetInferred(name model.PersonaName, confidence float64, windowDays int, explanations []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasOverride {
		return nil
	}

	s.current = model.PersonaState{
		Persona:      name,
		Confidence:   confidence,
		Updated:      time.Now(),
		Source:       model.PersonaSourceInferred,
		Explanations: explanations,
		WindowDays:   windowDays,
	}
	return s.persistCurrentLocked()
}

func (s *Store) persistCurrentLocked() error {
	if err := fsutil.AtomicWriteJSON(filepath.Join(s.root, currentFile), s.current); err != nil {
		return apperr.Wrap(apperr.CategoryStorage, "persist persona current state", err)
	}
	return nil
}

func decodeState(data []byte) (model.PersonaState, error) {
	var state model.PersonaState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.PersonaState{}, apperr.Wrap(apperr.CategoryStorage, "decode persona current state", err)
	}
	return state, nil
}

// trimOverride strips the trailing newline an operator's editor is
// likely to add when hand-editing the override file.
func trimOverride(raw string) string {
	return strings.TrimSpace(raw)
}
