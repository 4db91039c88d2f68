package episode

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"anna.local/annad/common/fsutil"
	"anna.local/annad/internal/apperr"
	"anna.local/annad/internal/model"
)

// record is the on-disk shape of one episode: the episode itself plus
// the FileBackups recorded against each of its actions, keyed by
// ActionRecord.ID, so a later rollback request can find the backups
// without re-deriving them from the filesystem.
type record struct {
	Episode model.ActionEpisode            `json:"episode"`
	Backups map[string][]model.FileBackup  `json:"backups"`
}

// Store persists ActionEpisodes as one JSON file per episode under
// root, mirroring spec.md §6's `episodes.db` as a local append-only
// store — here realized as a flat-file-per-episode directory, the
// same persistence shape already established for facts and skills.
type Store struct {
	mu       sync.RWMutex
	root     string
	episodes map[string]record
}

// New loads every persisted episode under root into memory.
func New(root string) (*Store, error) {
	s := &Store{root: root, episodes: make(map[string]record)}
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CategoryStorage, "read episode store directory", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, entry.Name()))
		if err != nil {
			return nil, apperr.Wrap(apperr.CategoryStorage, "read episode file "+entry.Name(), err)
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, apperr.Wrap(apperr.CategoryStorage, "decode episode file "+entry.Name(), err)
		}
		s.episodes[rec.Episode.ID] = rec
	}
	return s, nil
}

func (s *Store) pathFor(id string) string {
	return filepath.Join(s.root, id+".json")
}

// Save records an episode and the backups taken for its actions,
// keyed by ActionRecord.ID.
func (s *Store) Save(ep model.ActionEpisode, backups map[string][]model.FileBackup) error {
	rec := record{Episode: ep, Backups: backups}
	if err := fsutil.AtomicWriteJSON(s.pathFor(ep.ID), rec); err != nil {
		return apperr.Wrap(apperr.CategoryStorage, "write episode", err)
	}

	s.mu.Lock()
	s.episodes[ep.ID] = rec
	s.mu.Unlock()
	return nil
}

// Get returns the episode and its recorded backups, if any.
func (s *Store) Get(id string) (model.ActionEpisode, map[string][]model.FileBackup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.episodes[id]
	if !ok {
		return model.ActionEpisode{}, nil, false
	}
	return rec.Episode, rec.Backups, true
}

// UpdateStatus persists ep's ExecutionStatus after a rollback attempt.
func (s *Store) UpdateStatus(id string, status model.ExecutionStatus) error {
	s.mu.Lock()
	rec, ok := s.episodes[id]
	if !ok {
		s.mu.Unlock()
		return apperr.New(apperr.CategoryStorage, "unknown episode: "+id)
	}
	rec.Episode.ExecutionStatus = status
	s.episodes[id] = rec
	s.mu.Unlock()

	return fsutil.AtomicWriteJSON(s.pathFor(id), rec)
}
