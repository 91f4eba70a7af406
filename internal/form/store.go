package form

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"propertyad/internal/model"
)

// Store keeps the live form instances, one Controller per id.
type Store struct {
	mu    sync.RWMutex
	forms map[string]*Controller
	cfg   Config
}

// NewStore creates an empty store; every form it creates shares cfg.
func NewStore(cfg Config) *Store {
	return &Store{
		forms: make(map[string]*Controller),
		cfg:   cfg,
	}
}

// Create starts a new empty form.
func (s *Store) Create() *Controller {
	c := New(uuid.NewString(), s.cfg)

	s.mu.Lock()
	s.forms[c.ID()] = c
	s.mu.Unlock()
	return c
}

// Get returns the form with the given id.
func (s *Store) Get(id string) (*Controller, error) {
	s.mu.RLock()
	c, ok := s.forms[id]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrFormNotFound
	}
	return c, nil
}

// Delete discards a form and stops its pending previews.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	c, ok := s.forms[id]
	delete(s.forms, id)
	s.mu.Unlock()
	if !ok {
		return model.ErrFormNotFound
	}
	c.Close()
	return nil
}

// Len returns the number of live forms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.forms)
}

// SweepIdle discards forms untouched since before now-maxIdle. Forms with a
// submission in flight are kept. It returns how many forms were removed.
func (s *Store) SweepIdle(now time.Time, maxIdle time.Duration) int {
	cutoff := now.Add(-maxIdle)

	s.mu.Lock()
	var stale []*Controller
	for id, c := range s.forms {
		if c.State() == StateSubmitting || c.IdleSince().After(cutoff) {
			continue
		}
		stale = append(stale, c)
		delete(s.forms, id)
	}
	s.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	return len(stale)
}

// Close discards every form.
func (s *Store) Close() {
	s.mu.Lock()
	forms := s.forms
	s.forms = make(map[string]*Controller)
	s.mu.Unlock()

	for _, c := range forms {
		c.Close()
	}
}
