// Package skills persists learned command templates and implements
// the fast-path match/retry/trust policy of spec.md §4.7.
package skills

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"anna.local/annad/common"
	"anna.local/annad/common/fsutil"
	"anna.local/annad/internal/apperr"
	"anna.local/annad/internal/model"
	"github.com/google/uuid"
)

// Store is an in-memory cache of every skill, backed by one JSON file
// per skill under root.
type Store struct {
	mu     sync.RWMutex
	root   string
	skills map[string]model.Skill
}

// New builds a skill store rooted at root and loads every skill file
// already present.
func New(root string) (*Store, error) {
	s := &Store{root: root, skills: make(map[string]model.Skill)}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) pathFor(id string) string {
	return filepath.Join(s.root, id+".json")
}

// Reload re-scans root and replaces the in-memory skill set, picking
// up any skill file an operator dropped in or edited by hand without
// going through RecordSuccess/LearnFromSuccess. Intended to be called
// from a filesystem watcher, not the request path.
func (s *Store) Reload() error {
	fresh := make(map[string]model.Skill)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.skills
	s.skills = fresh
	if err := s.loadAll(); err != nil {
		s.skills = prev
		return err
	}
	return nil
}

func (s *Store) loadAll() error {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return apperr.Wrap(apperr.CategoryStorage, "list skills directory", err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.root, e.Name()))
		if err != nil {
			return apperr.Wrap(apperr.CategoryStorage, "read skill file "+e.Name(), err)
		}
		var sk model.Skill
		if err := json.Unmarshal(data, &sk); err != nil {
			return apperr.Wrap(apperr.CategoryStorage, "decode skill file "+e.Name(), err)
		}
		s.skills[sk.ID] = sk
	}
	return nil
}

func (s *Store) persist(sk model.Skill) error {
	if err := fsutil.AtomicWriteJSON(s.pathFor(sk.ID), sk); err != nil {
		return apperr.Wrap(apperr.CategoryStorage, "persist skill "+sk.ID, err)
	}
	return nil
}

// Get returns the skill with id, if any.
func (s *Store) Get(id string) (model.Skill, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sk, ok := s.skills[id]
	return sk, ok
}

// Routable returns every skill with trust >= 40 that still passes
// ShouldRetry, sorted by descending match score against question.
// Skills that fail either check are hidden from routing but not
// deleted, per spec.md §4.7.
func (s *Store) Routable(question string) []model.Skill {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Skill, 0, len(s.skills))
	for _, sk := range s.skills {
		if !sk.Stats.IsTrusted() {
			continue
		}
		if !sk.Stats.ShouldRetry() {
			continue
		}
		out = append(out, sk)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].MatchScore(question) > out[j].MatchScore(question)
	})
	return out
}

// Best returns the single best-matching routable skill for question,
// if its match score clears minScore.
func (s *Store) Best(question string, minScore float64) (model.Skill, bool) {
	candidates := s.Routable(question)
	if len(candidates) == 0 {
		return model.Skill{}, false
	}
	best := candidates[0]
	if best.MatchScore(question) < minScore {
		return model.Skill{}, false
	}
	return best, true
}

// RecordSuccess applies the trust/reliability update for a successful
// invocation of id and persists it.
func (s *Store) RecordSuccess(id string, latencyMs int64) error {
	return s.update(id, func(sk model.Skill) model.Skill {
		sk.Stats = sk.Stats.RecordSuccess(latencyMs)
		return sk
	})
}

// RecordFailure applies the trust/reliability update for a failed
// invocation of id and persists it.
func (s *Store) RecordFailure(id string) error {
	return s.update(id, func(sk model.Skill) model.Skill {
		sk.Stats = sk.Stats.RecordFailure()
		return sk
	})
}

func (s *Store) update(id string, mutate func(model.Skill) model.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sk, ok := s.skills[id]
	if !ok {
		return apperr.New(apperr.CategoryStorage, "unknown skill: "+id)
	}
	sk = mutate(sk)
	sk.UpdatedAt = time.Now()

	if err := s.persist(sk); err != nil {
		return err
	}
	s.skills[id] = sk
	return nil
}

// LearnFromSuccess records a successful, previously-unplanned command
// as a brand-new skill so future matching questions can consult the
// fast path instead of the full Junior/Senior dialogue.
func (s *Store) LearnFromSuccess(intent, description string, commandParts []string, question string, latencyMs int64) (model.Skill, error) {
	now := time.Now()
	slug, err := common.Slugify(intent, description)
	if err != nil {
		slug = "skill"
	}
	sk := model.Skill{
		ID:               slug + "-" + uuid.NewString()[:8],
		Version:          1,
		Intent:           intent,
		Description:      description,
		CommandTemplate:  strings.Join(commandParts, " "),
		ExampleQuestions: []string{question},
		Stats:            model.NewSkillStats().RecordSuccess(latencyMs),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(sk); err != nil {
		return model.Skill{}, err
	}
	s.skills[sk.ID] = sk
	return sk, nil
}
