package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"petlink/internal/domain/activities"
)

type activityRepo struct {
	mu   sync.RWMutex
	byID map[string]activities.Activity
}

func NewActivityRepo() activities.Repository {
	return &activityRepo{
		byID: make(map[string]activities.Activity),
	}
}

func (r *activityRepo) Create(ctx context.Context, a activities.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return errors.New("activity id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("activity already exists")
	}

	r.byID[a.ID] = a
	return nil
}

func (r *activityRepo) GetByID(ctx context.Context, id string) (activities.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return activities.Activity{}, activities.ErrNotFound
	}
	return a, nil
}

func (r *activityRepo) ListByPet(ctx context.Context, petID string, filter activities.ListFilter) ([]activities.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = activities.DefaultListLimit
	}

	out := make([]activities.Activity, 0)
	for _, a := range r.byID {
		if a.PetID != petID || !filter.Match(a) {
			continue
		}
		out = append(out, a)
	}

	// Orden por fecha/hora desc (más reciente primero)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.After(out[j].Date)
		}
		if out[i].Time != out[j].Time {
			return out[j].Time.Before(out[i].Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *activityRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return activities.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
