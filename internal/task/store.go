package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrNotFound = errors.New("task not found")

// Store is an in-memory task table keyed by task id. Each task is written
// by its one owning job and read by status pollers; Get hands out deep
// copies so a poller never observes a half-applied update.
//
// Finished tasks are evicted after a retention period so the table does
// not grow for the lifetime of the process.
type Store struct {
	mu        sync.RWMutex
	tasks     map[string]*Status
	retention time.Duration
}

func NewStore(retention time.Duration) *Store {
	return &Store{
		tasks:     make(map[string]*Status),
		retention: retention,
	}
}

// Create registers a new task in the processing state with the given
// progress total.
func (s *Store) Create(id string, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[id] = &Status{
		State:     StateProcessing,
		Progress:  Progress{Current: 0, Total: total},
		Errors:    []CityError{},
		Success:   []string{},
		UpdatedAt: time.Now(),
	}
}

// Get returns a copy of the task's status.
func (s *Store) Get(id string) (*Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return st.clone(), nil
}

// Update applies fn to the task's status under the store lock. Unknown
// ids are ignored: a job may outlive an evicted record.
func (s *Store) Update(id string, fn func(*Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.tasks[id]
	if !ok {
		return
	}
	fn(st)
	st.UpdatedAt = time.Now()
}

// Len returns the number of tracked tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// evictExpired drops terminal tasks whose last update is older than the
// retention window. Running tasks are never evicted.
func (s *Store) evictExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.retention)
	removed := 0
	for id, st := range s.tasks {
		if st.State == StateProcessing {
			continue
		}
		if st.UpdatedAt.Before(cutoff) {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed
}

// RunJanitor evicts expired tasks on a fixed interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := s.evictExpired(time.Now()); removed > 0 {
				slog.DebugContext(ctx, "Evicted finished tasks", "count", removed)
			}
		}
	}
}
