package task

import (
	"context"
	"slices"
	"sync"

	domain "github.com/example/taskboard/domain/task"
)

// MemoryStore keeps tasks in a slice guarded by a RWMutex.
type MemoryStore struct {
	tasks []domain.Task
	mu    sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding a copy of tasks.
func NewMemoryStore(tasks []domain.Task) *MemoryStore {
	return &MemoryStore{tasks: slices.Clone(tasks)}
}

func (s *MemoryStore) List(_ context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return domain.Task{}, domain.ErrNotFound
	}
	return s.tasks[i], nil
}

func (s *MemoryStore) Insert(_ context.Context, t domain.Task) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = domain.NextID(s.tasks)
	s.tasks = append(s.tasks, t)
	return t, nil
}

func (s *MemoryStore) Update(_ context.Context, id int64, mutate func(*domain.Task) error) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return domain.Task{}, domain.ErrNotFound
	}

	updated := s.tasks[i]
	if err := mutate(&updated); err != nil {
		return domain.Task{}, err
	}
	updated.ID = id
	s.tasks[i] = updated
	return updated, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks), nil
}

// index must be called with the lock held.
func (s *MemoryStore) index(id int64) int {
	return slices.IndexFunc(s.tasks, func(t domain.Task) bool { return t.ID == id })
}
