// Package taskqueue es el ejecutor diferido de jobs: un Store ordenado por
// run_at y un Runner que los drena periódicamente.
package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidJob = errors.New("taskqueue: invalid job")
)

// Job es la unidad persistida. Payload es opaco para la cola.
type Job struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	RunAt      time.Time       `json:"run_at"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Attempts   int             `json:"attempts"`
}

// Store guarda jobs ordenados por RunAt.
//
// PopDue devuelve (y quita) hasta limit jobs con RunAt <= now. Un job
// devuelto por PopDue no vuelve a salir salvo que se re-agregue. Con error,
// los jobs devueltos ya fueron quitados del store y deben ejecutarse.
type Store interface {
	Add(ctx context.Context, job Job) error
	PopDue(ctx context.Context, now time.Time, limit int) ([]Job, error)
	Len(ctx context.Context) (int, error)
}

// NewJob arma un Job con id nuevo y el payload serializado a JSON.
func NewJob(kind string, payload any, runAt, now time.Time) (Job, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" || runAt.IsZero() {
		return Job{}, ErrInvalidJob
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("taskqueue: marshal payload: %w", err)
	}
	return Job{
		ID:         uuid.NewString(),
		Kind:       kind,
		Payload:    raw,
		RunAt:      runAt.UTC(),
		EnqueuedAt: now.UTC(),
	}, nil
}

func (j Job) validate() error {
	if strings.TrimSpace(j.ID) == "" || strings.TrimSpace(j.Kind) == "" || j.RunAt.IsZero() {
		return ErrInvalidJob
	}
	return nil
}
