package taskqueue

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore es el store de dev/tests: no sobrevive reinicios.
type MemoryStore struct {
	mu   sync.Mutex
	jobs []Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(ctx context.Context, job Job) error {
	if err := job.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job)
	sort.SliceStable(s.jobs, func(i, j int) bool {
		return s.jobs[i].RunAt.Before(s.jobs[j].RunAt)
	})
	return nil
}

func (s *MemoryStore) PopDue(ctx context.Context, now time.Time, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 100
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for n < len(s.jobs) && n < limit && !s.jobs[n].RunAt.After(now) {
		n++
	}
	if n == 0 {
		return nil, nil
	}

	out := make([]Job, n)
	copy(out, s.jobs[:n])
	s.jobs = append(s.jobs[:0], s.jobs[n:]...)
	return out, nil
}

func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs), nil
}
