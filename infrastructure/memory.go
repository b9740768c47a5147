package infrastructure

import (
	"context"
	"sort"
	"sync"

	"talentscout/domain"
)

// MemoryStore is a process-local domain.Store. It backs tests and the
// DB-less demo mode; all data is lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.Job
	apps map[string]domain.Application
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]domain.Job),
		apps: make(map[string]domain.Application),
	}
}

func (s *MemoryStore) GetJobs(ctx context.Context) ([]domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]domain.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreatedAt.After(jobs[k].CreatedAt) })
	return jobs, nil
}

func (s *MemoryStore) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

func (s *MemoryStore) SaveJob(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *MemoryStore) GetApplications(ctx context.Context, jobID string) ([]domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var apps []domain.Application
	for _, a := range s.apps {
		if a.JobID == jobID {
			apps = append(apps, a)
		}
	}
	sort.Slice(apps, func(i, k int) bool { return apps[i].SubmittedAt.Before(apps[k].SubmittedAt) })
	return apps, nil
}

func (s *MemoryStore) GetApplication(ctx context.Context, id string) (*domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &app, nil
}

func (s *MemoryStore) SaveApplication(ctx context.Context, app *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[app.ID] = *app
	return nil
}

func (s *MemoryStore) UpdateApplication(ctx context.Context, app *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[app.ID] = *app
	return nil
}
