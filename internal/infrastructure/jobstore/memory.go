package jobstore

import (
	"context"
	"sort"
	"sync"

	"streamsplit/internal/domain/job"
)

// Memory is the default job store: a mutex-guarded map. Jobs are lost on
// restart, which matches the single-host batch use case.
type Memory struct {
	mu   sync.Mutex
	jobs map[string]job.Job
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{jobs: make(map[string]job.Job)}
}

// Create registers a new job record.
func (m *Memory) Create(_ context.Context, j job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = j
	return nil
}

// Get returns a copy of one job.
func (m *Memory) Get(_ context.Context, id string) (job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return job.Job{}, job.ErrNotFound
	}
	return cloneJob(j), nil
}

// List returns all jobs ordered by creation time.
func (m *Memory) List(_ context.Context) ([]job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]job.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, cloneJob(j))
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].ID < out[k].ID
		}
		return out[i].CreatedAt.Before(out[k].CreatedAt)
	})
	return out, nil
}

// Update applies fn to the stored job under the lock, so status changes
// are atomic with respect to concurrent reads.
func (m *Memory) Update(_ context.Context, id string, fn func(*job.Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return job.ErrNotFound
	}
	fn(&j)
	m.jobs[id] = j
	return nil
}

func cloneJob(j job.Job) job.Job {
	out := j
	out.OutputFiles = append([]string(nil), j.OutputFiles...)
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
