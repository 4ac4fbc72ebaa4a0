package reminders

import (
	"context"
	"time"

	"petlink/internal/platform/taskqueue"
)

// JobKind es el kind con el que se encolan los recordatorios por mail.
const JobKind = "reminder.email"

// QueueDispatcher encola el job en el taskqueue para ejecutarse en FireAt.
type QueueDispatcher struct {
	store taskqueue.Store
	now   func() time.Time
}

func NewQueueDispatcher(store taskqueue.Store) *QueueDispatcher {
	return &QueueDispatcher{store: store, now: time.Now}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, job NotificationJob) error {
	j, err := taskqueue.NewJob(JobKind, job, job.FireAt, d.now())
	if err != nil {
		return err
	}
	return d.store.Add(ctx, j)
}
