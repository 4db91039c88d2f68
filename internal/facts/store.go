// Package facts persists durable knowledge about the host — preferred
// editor, shell, package tool, init system — keyed by the closed
// model.FactKey enum, per spec.md §4.7.
package facts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"anna.local/annad/common/fsutil"
	"anna.local/annad/internal/apperr"
	"anna.local/annad/internal/model"
)

// Store is a process-wide, mutex-protected fact cache backed by one
// JSON file per key under root, matching the skills store's per-item
// file layout.
type Store struct {
	mu    sync.RWMutex
	root  string
	facts map[model.FactKey]model.Fact
}

// New builds a fact store rooted at root and loads any facts already
// on disk.
func New(root string) (*Store, error) {
	s := &Store{root: root, facts: make(map[model.FactKey]model.Fact)}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) pathFor(key model.FactKey) string {
	return filepath.Join(s.root, string(key)+".json")
}

func (s *Store) loadAll() error {
	for _, key := range []model.FactKey{
		model.FactPreferredEditor, model.FactPreferredShell,
		model.FactPackageTool, model.FactInitSystem,
	} {
		data, err := os.ReadFile(s.pathFor(key))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return apperr.Wrap(apperr.CategoryStorage, "load fact "+string(key), err)
		}
		var f model.Fact
		if err := json.Unmarshal(data, &f); err != nil {
			return apperr.Wrap(apperr.CategoryStorage, "decode fact "+string(key), err)
		}
		s.facts[key] = f
	}
	return nil
}

// Get returns the current fact for key, if one has ever been recorded.
func (s *Store) Get(key model.FactKey) (model.Fact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.facts[key]
	return f, ok
}

// Fresh returns the fact for key only if it is fresh as of now, per
// spec.md §4.6's skip-clarification-on-fresh-verified-fact rule.
func (s *Store) Fresh(key model.FactKey, now time.Time) (model.Fact, bool) {
	f, ok := s.Get(key)
	if !ok || !f.IsFresh(now) {
		return model.Fact{}, false
	}
	return f, true
}

// Upsert writes a new value for key, overwriting whatever was there
// before: the store only ever holds the current value per key, older
// values live on in whichever transcript/episode recorded them.
func (s *Store) Upsert(key model.FactKey, value string, source model.FactSource, confidence int, ttlClass model.CacheClass, now time.Time) error {
	f := model.Fact{
		Key:        key,
		Value:      value,
		Source:     source,
		Confidence: confidence,
		Timestamp:  now,
		TTLClass:   ttlClass,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fsutil.AtomicWriteJSON(s.pathFor(key), f); err != nil {
		return apperr.Wrap(apperr.CategoryStorage, "persist fact "+string(key), err)
	}
	s.facts[key] = f
	return nil
}

// MarkStale flags key's fact as stale without deleting it, preserving
// its history for audit per spec.md §4.7.
func (s *Store) MarkStale(key model.FactKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.facts[key]
	if !ok {
		return nil
	}
	f.Stale = true

	if err := fsutil.AtomicWriteJSON(s.pathFor(key), f); err != nil {
		return apperr.Wrap(apperr.CategoryStorage, "persist stale fact "+string(key), err)
	}
	s.facts[key] = f
	return nil
}
