package activities

import (
	"errors"
	"time"

	"petlink/internal/domain/activities/details"
	"petlink/internal/domain/reminders"

	"cloud.google.com/go/civil"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("activity not found")
)

// Kind reutiliza los tipos del scheduler: cada actividad puede generar recordatorio.
type Kind = reminders.Kind

const (
	KindMedication  = reminders.KindMedication
	KindFeeding     = reminders.KindFeeding
	KindWalk        = reminders.KindWalk
	KindAppointment = reminders.KindAppointment
	KindVaccination = reminders.KindVaccination
)

// Activity es una actividad agendada para una mascota. Date/Time son civiles;
// se interpretan en la zona configurada del servicio.
type Activity struct {
	ID    string
	PetID string
	Kind  Kind

	Date  civil.Date
	Time  civil.Time
	Notes string

	// Solo el del Kind correspondiente es no-nil (walk no tiene detalle).
	Medication  *details.Medication
	Feeding     *details.Feeding
	Appointment *details.Appointment
	Vaccination *details.Vaccination

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PetRef es lo que activities necesita saber de la mascota.
type PetRef struct {
	ID          string
	Name        string
	OwnerUserID string
}

// Reminder informa si la creación agendó un recordatorio.
type Reminder struct {
	Scheduled bool
	FireAt    time.Time
}
