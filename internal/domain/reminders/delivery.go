package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"syscall"

	"go.uber.org/zap"

	"petlink/internal/platform/taskqueue"
)

// Message es lo que recibe el transporte de mail.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Deliverer ejecuta NotificationJobs. Ningún error ni panic del transporte
// sale de Deliver: se loguean y el job termina.
type Deliverer struct {
	sender Sender
	from   string
	logger *zap.Logger
}

func NewDeliverer(sender Sender, from string, logger *zap.Logger) *Deliverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deliverer{
		sender: sender,
		from:   from,
		logger: logger,
	}
}

// Deliver envía el mail. Devuelve true si el transporte lo aceptó.
func (d *Deliverer) Deliver(ctx context.Context, job NotificationJob) (sent bool) {
	log := d.logger.With(
		zap.String("activity_id", job.ActivityID),
		zap.String("kind", string(job.Kind)),
		zap.String("recipient", job.Recipient),
	)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("reminder delivery panicked", zap.Any("panic", rec))
			sent = false
		}
	}()

	if d.sender == nil {
		log.Error("reminder delivery failed: no mail sender configured")
		return false
	}

	err := d.sender.Send(ctx, Message{
		From:    d.from,
		To:      []string{job.Recipient},
		Subject: job.Subject,
		Body:    job.Body,
	})
	switch {
	case err == nil:
		log.Info("reminder sent")
		return true
	case errors.Is(err, ErrBadHeader):
		log.Error("reminder delivery failed: invalid header", zap.Error(err))
	case errors.Is(err, syscall.ECONNREFUSED):
		log.Error("reminder delivery failed: mail server refused connection", zap.Error(err))
	default:
		log.Error("reminder delivery failed", zap.Error(err))
	}
	return false
}

// HandleJob adapta Deliver al runner de la cola. Siempre devuelve nil:
// la entrega no se reintenta y un payload ilegible se descarta.
func (d *Deliverer) HandleJob(ctx context.Context, j taskqueue.Job) error {
	var job NotificationJob
	if err := json.Unmarshal(j.Payload, &job); err != nil {
		d.logger.Error("discarding unreadable reminder job",
			zap.String("job_id", j.ID),
			zap.Error(fmt.Errorf("decode payload: %w", err)))
		return nil
	}
	d.Deliver(ctx, job)
	return nil
}
