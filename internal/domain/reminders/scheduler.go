package reminders

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Dispatcher entrega el job al ejecutor diferido. Fire-and-forget: el
// scheduler no espera la ejecución ni la trackea.
type Dispatcher interface {
	Dispatch(ctx context.Context, job NotificationJob) error
}

type Scheduler struct {
	leads      LeadTimes
	loc        *time.Location
	dispatcher Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

func NewScheduler(leads LeadTimes, loc *time.Location, dispatcher Dispatcher, logger *zap.Logger) *Scheduler {
	if leads == nil {
		leads = DefaultLeadTimes()
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		leads:      leads,
		loc:        loc,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Location es la zona con la que se interpretan fecha/hora civiles.
func (s *Scheduler) Location() *time.Location { return s.loc }

// Plan calcula el recordatorio sin efectos. ok=false significa que el
// fire time ya pasó (o es exactamente ahora) y no corresponde avisar.
func (s *Scheduler) Plan(a ScheduledActivity) (job NotificationJob, ok bool, err error) {
	if !a.Kind.Valid() {
		return NotificationJob{}, false, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, a.Kind)
	}
	lead, err := s.leads.For(a.Kind)
	if err != nil {
		return NotificationJob{}, false, err
	}

	at, err := ActivityInstant(a.Date, a.Time, s.loc)
	if err != nil {
		return NotificationJob{}, false, err
	}

	fireAt := at.Add(-lead)
	if !fireAt.After(s.now()) {
		return NotificationJob{}, false, nil
	}

	recipient, err := normalizeRecipient(a.RecipientEmail)
	if err != nil {
		return NotificationJob{}, false, err
	}

	subject, body := compose(a, at)
	return NotificationJob{
		ActivityID: a.ActivityID,
		Kind:       a.Kind,
		Recipient:  recipient,
		Subject:    subject,
		Body:       body,
		FireAt:     fireAt,
	}, true, nil
}

// Schedule es el único punto de entrada para todos los tipos: planifica y,
// si corresponde, entrega el job al Dispatcher.
func (s *Scheduler) Schedule(ctx context.Context, a ScheduledActivity) (NotificationJob, bool, error) {
	job, ok, err := s.Plan(a)
	if err != nil {
		return NotificationJob{}, false, err
	}

	log := s.logger.With(
		zap.String("activity_id", a.ActivityID),
		zap.String("kind", string(a.Kind)),
	)

	if !ok {
		log.Debug("reminder skipped: fire time already elapsed")
		return NotificationJob{}, false, nil
	}

	if s.dispatcher == nil {
		return NotificationJob{}, false, fmt.Errorf("reminders: no dispatcher configured")
	}
	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		return NotificationJob{}, false, fmt.Errorf("reminders: dispatch: %w", err)
	}

	log.Info("reminder scheduled", zap.Time("fire_at", job.FireAt))
	return job, true, nil
}

func normalizeRecipient(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoRecipient
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", fmt.Errorf("%w: recipient %q: %v", ErrInvalidInput, raw, err)
	}
	return addr.Address, nil
}
