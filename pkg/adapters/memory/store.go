// Package memory provides in-process implementations of the run store
// and run lock. They back tests and single-node deployments that have
// no redis to point at.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/aretw0/flipper/pkg/domain"
)

// Store implements ports.RunStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Run
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Run),
	}
}

// Save persists the run in memory.
func (s *Store) Save(ctx context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Copy on write so later mutations by the caller stay out of the store.
	s.data[run.ID] = cloneRun(run)
	return nil
}

// Load retrieves a run from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.data[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}

	// Copy on read so the caller can't mutate stored records by pointer.
	return cloneRun(run), nil
}

// List returns runs most recently started first.
func (s *Store) List(ctx context.Context, limit int) ([]*domain.Run, error) {
	s.mu.RLock()
	runs := make([]*domain.Run, 0, len(s.data))
	for _, run := range s.data {
		runs = append(runs, cloneRun(run))
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Delete removes a run record.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

func cloneRun(run *domain.Run) *domain.Run {
	clone := *run
	clone.ChangedFiles = slices.Clone(run.ChangedFiles)
	clone.ReportPaths = slices.Clone(run.ReportPaths)
	return &clone
}
