package pipeline

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/listing-pipeline/internal/pipeline/steps"
)

// Store persists runs and their step results. GetRun returns nil, nil for an
// unknown ID.
type Store interface {
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	ListRunsByStatus(ctx context.Context, statuses ...RunStatus) ([]*Run, error)
	SaveStep(ctx context.Context, id uuid.UUID, result steps.Result) error
	UpdateRunStatus(ctx context.Context, id uuid.UUID, status RunStatus) error
}

// MemoryStore keeps runs in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	runs  map[uuid.UUID]*Run
	order []uuid.UUID
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[uuid.UUID]*Run),
		now:  time.Now,
	}
}

// CreateRun implements Store.
func (s *MemoryStore) CreateRun(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		s.order = append(s.order, run.ID)
	}
	s.runs[run.ID] = run.Clone()
	return nil
}

// GetRun implements Store.
func (s *MemoryStore) GetRun(_ context.Context, id uuid.UUID) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	return run.Clone(), nil
}

// ListRuns implements Store. Runs are returned newest first.
func (s *MemoryStore) ListRuns(_ context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Run
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.runs[s.order[i]].Clone())
	}
	return out, nil
}

// ListRunsByStatus implements Store. Runs are returned oldest first.
func (s *MemoryStore) ListRunsByStatus(_ context.Context, statuses ...RunStatus) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Run
	for _, id := range s.order {
		run := s.runs[id]
		if slices.Contains(statuses, run.Status) {
			out = append(out, run.Clone())
		}
	}
	return out, nil
}

// SaveStep implements Store.
func (s *MemoryStore) SaveStep(_ context.Context, id uuid.UUID, result steps.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return &NotFoundError{RunID: id}
	}
	run.SetStep(result)
	run.UpdatedAt = s.now()
	return nil
}

// UpdateRunStatus implements Store.
func (s *MemoryStore) UpdateRunStatus(_ context.Context, id uuid.UUID, status RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return &NotFoundError{RunID: id}
	}
	now := s.now()
	run.Status = status
	run.UpdatedAt = now
	if status.Terminal() {
		run.CompletedAt = &now
	}
	return nil
}
