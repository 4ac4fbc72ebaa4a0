package activities

import (
	"context"
	"fmt"
	"strings"
	"time"

	"petlink/internal/domain/activities/details"
	"petlink/internal/domain/reminders"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ReminderScheduler es el punto de entrada único del scheduler de recordatorios.
type ReminderScheduler interface {
	Schedule(ctx context.Context, a reminders.ScheduledActivity) (reminders.NotificationJob, bool, error)
}

// RecipientResolver devuelve el email del dueño de la mascota.
type RecipientResolver interface {
	EmailOf(ctx context.Context, userID string) (string, error)
}

type Service struct {
	repo       Repository
	scheduler  ReminderScheduler
	recipients RecipientResolver
	logger     *zap.Logger
	now        func() time.Time
}

// scheduler y recipients pueden ser nil: la actividad se guarda sin recordatorio.
func NewService(repo Repository, scheduler ReminderScheduler, recipients RecipientResolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       repo,
		scheduler:  scheduler,
		recipients: recipients,
		logger:     logger,
		now:        time.Now,
	}
}

type CreateInput struct {
	Kind  Kind
	Date  civil.Date
	Time  civil.Time
	Notes string

	Medication  *details.Medication
	Feeding     *details.Feeding
	Appointment *details.Appointment
	Vaccination *details.Vaccination
}

// Actor es quien crea la actividad (claims del request).
type Actor struct {
	UserID string
	Email  string
}

// Create persiste la actividad y después pide el recordatorio. Un fallo al
// agendar se loguea y no afecta la creación.
func (s *Service) Create(ctx context.Context, pet PetRef, actor Actor, in CreateInput) (Activity, Reminder, error) {
	if strings.TrimSpace(pet.ID) == "" || strings.TrimSpace(actor.UserID) == "" {
		return Activity{}, Reminder{}, ErrInvalidInput
	}
	if err := validate(&in); err != nil {
		return Activity{}, Reminder{}, err
	}

	now := s.now()
	a := Activity{
		ID:          uuid.NewString(),
		PetID:       pet.ID,
		Kind:        in.Kind,
		Date:        in.Date,
		Time:        in.Time,
		Notes:       strings.TrimSpace(in.Notes),
		Medication:  in.Medication,
		Feeding:     in.Feeding,
		Appointment: in.Appointment,
		Vaccination: in.Vaccination,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Activity{}, Reminder{}, err
	}

	return a, s.scheduleReminder(ctx, pet, actor, a), nil
}

func (s *Service) scheduleReminder(ctx context.Context, pet PetRef, actor Actor, a Activity) Reminder {
	if s.scheduler == nil {
		return Reminder{}
	}

	log := s.logger.With(
		zap.String("activity_id", a.ID),
		zap.String("pet_id", pet.ID),
		zap.String("kind", string(a.Kind)),
	)

	job, ok, err := s.scheduler.Schedule(ctx, ToScheduled(a, pet.Name, s.recipientFor(ctx, pet, actor)))
	if err != nil {
		log.Warn("reminder not scheduled", zap.Error(err))
		return Reminder{}
	}
	if !ok {
		return Reminder{}
	}
	return Reminder{Scheduled: true, FireAt: job.FireAt}
}

// El recordatorio va al dueño. Si el dueño no está registrado localmente
// (modo dev) y es quien crea la actividad, se usa el email de sus claims.
func (s *Service) recipientFor(ctx context.Context, pet PetRef, actor Actor) string {
	if s.recipients != nil {
		email, err := s.recipients.EmailOf(ctx, pet.OwnerUserID)
		if err == nil && strings.TrimSpace(email) != "" {
			return email
		}
	}
	if actor.UserID == pet.OwnerUserID {
		return actor.Email
	}
	return ""
}

func (s *Service) GetByID(ctx context.Context, petID, id string) (Activity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Activity{}, ErrNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Activity{}, err
	}
	if a.PetID != petID {
		return Activity{}, ErrNotFound
	}
	return a, nil
}

func (s *Service) ListByPet(ctx context.Context, petID string, filter ListFilter) ([]Activity, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: from after to", ErrInvalidInput)
	}
	return s.repo.ListByPet(ctx, petID, filter)
}

// Delete no cancela un recordatorio ya encolado.
func (s *Service) Delete(ctx context.Context, petID, id string) error {
	a, err := s.GetByID(ctx, petID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, a.ID)
}

// ToScheduled arma la vista que consume el scheduler de recordatorios.
func ToScheduled(a Activity, petName, recipient string) reminders.ScheduledActivity {
	out := reminders.ScheduledActivity{
		ActivityID:     a.ID,
		Kind:           a.Kind,
		Date:           a.Date,
		Time:           a.Time,
		Notes:          a.Notes,
		SubjectName:    petName,
		RecipientEmail: recipient,
	}
	switch {
	case a.Medication != nil:
		out.Details = reminders.Details{Name: a.Medication.Name, Dosage: a.Medication.Dosage}
	case a.Feeding != nil:
		out.Details = reminders.Details{Name: a.Feeding.FoodType, Amount: a.Feeding.Amount}
	case a.Appointment != nil:
		out.Details = reminders.Details{Name: a.Appointment.Name, Description: a.Appointment.Description}
	case a.Vaccination != nil:
		out.Details = reminders.Details{Name: a.Vaccination.Vaccine}
	}
	return out
}

func validate(in *CreateInput) error {
	if !in.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, in.Kind)
	}
	if !in.Date.IsValid() {
		return fmt.Errorf("%w: date required", ErrInvalidInput)
	}
	if !in.Time.IsValid() {
		return fmt.Errorf("%w: time required", ErrInvalidInput)
	}

	present := 0
	for _, p := range []bool{in.Medication != nil, in.Feeding != nil, in.Appointment != nil, in.Vaccination != nil} {
		if p {
			present++
		}
	}
	if present > 1 {
		return fmt.Errorf("%w: details for more than one kind", ErrInvalidInput)
	}

	switch in.Kind {
	case KindMedication:
		m := in.Medication
		if m == nil || strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Dosage) == "" {
			return fmt.Errorf("%w: medication requires name and dosage", ErrInvalidInput)
		}
		if m.Frequency < 0 {
			return fmt.Errorf("%w: frequency must be positive", ErrInvalidInput)
		}
		if m.Frequency == 0 {
			m.Frequency = 1
		}
	case KindFeeding:
		f := in.Feeding
		if f == nil || strings.TrimSpace(f.FoodType) == "" || strings.TrimSpace(f.Amount) == "" {
			return fmt.Errorf("%w: feeding requires food_type and amount", ErrInvalidInput)
		}
	case KindWalk:
		if present > 0 {
			return fmt.Errorf("%w: walk has no details", ErrInvalidInput)
		}
	case KindAppointment:
		if in.Appointment == nil || strings.TrimSpace(in.Appointment.Name) == "" {
			return fmt.Errorf("%w: appointment requires name", ErrInvalidInput)
		}
	case KindVaccination:
		v := in.Vaccination
		if v == nil || strings.TrimSpace(v.Vaccine) == "" {
			return fmt.Errorf("%w: vaccination requires vaccine", ErrInvalidInput)
		}
		if v.NextDue != nil && v.NextDue.Before(in.Date) {
			return fmt.Errorf("%w: next_due before vaccination date", ErrInvalidInput)
		}
	}

	// Details de otro tipo.
	if present == 1 {
		mismatch := (in.Medication != nil && in.Kind != KindMedication) ||
			(in.Feeding != nil && in.Kind != KindFeeding) ||
			(in.Appointment != nil && in.Kind != KindAppointment) ||
			(in.Vaccination != nil && in.Kind != KindVaccination)
		if mismatch {
			return fmt.Errorf("%w: details do not match kind %s", ErrInvalidInput, in.Kind)
		}
	}
	return nil
}
