package middleware_test

import (
	"context"
	"sort"

	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
// Save keeps the pointer as-is, so tests can detect a middleware that
// forgot to clone before mutating.
type MockStore struct {
	data map[string]*domain.Run
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Run),
	}
}

func (s *MockStore) Save(ctx context.Context, run *domain.Run) error {
	s.data[run.ID] = run
	return nil
}

func (s *MockStore) Load(ctx context.Context, id string) (*domain.Run, error) {
	run, ok := s.data[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

func (s *MockStore) List(ctx context.Context, limit int) ([]*domain.Run, error) {
	runs := make([]*domain.Run, 0, len(s.data))
	for _, run := range s.data {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MockStore) Delete(ctx context.Context, id string) error {
	delete(s.data, id)
	return nil
}

var _ ports.RunStore = (*MockStore)(nil)
