package store

import (
	"context"
	"sort"
	"sync"

	"github.com/veristudy/veristudy-backend/internal/domain"
)

// MemoryJobStore keeps jobs in process memory behind a mutex. Jobs are
// best-effort by design (no crash resume), so this is the default backend
// for single-node deployments and tests.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]domain.Job)}
}

func (s *MemoryJobStore) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, nil
	}
	out := job
	out.Errors = append([]string(nil), job.Errors...)
	return &out, nil
}

func (s *MemoryJobStore) Set(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *job
	stored.Errors = append([]string(nil), job.Errors...)
	s.jobs[job.ID] = stored
	return nil
}

func (s *MemoryJobStore) Update(ctx context.Context, jobID string, fields map[string]any) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, nil
	}
	if err := applyJobFields(&job, fields); err != nil {
		return nil, err
	}
	s.jobs[jobID] = job
	out := job
	out.Errors = append([]string(nil), job.Errors...)
	return &out, nil
}

// MemoryPackStore is the in-memory PackStore counterpart.
type MemoryPackStore struct {
	mu    sync.RWMutex
	packs map[string]domain.Pack
}

func NewMemoryPackStore() *MemoryPackStore {
	return &MemoryPackStore{packs: make(map[string]domain.Pack)}
}

func (s *MemoryPackStore) Get(ctx context.Context, packID string) (*domain.Pack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pack, ok := s.packs[packID]
	if !ok {
		return nil, nil
	}
	out := pack
	return &out, nil
}

func (s *MemoryPackStore) Set(ctx context.Context, pack *domain.Pack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packs[pack.ID] = *pack
	return nil
}

func (s *MemoryPackStore) List(ctx context.Context) ([]*domain.Pack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Pack, 0, len(s.packs))
	for id := range s.packs {
		pack := s.packs[id]
		out = append(out, &pack)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
