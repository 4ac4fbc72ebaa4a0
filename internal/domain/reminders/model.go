package reminders

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoRecipient  = errors.New("no recipient for reminder")
	// ErrBadHeader lo devuelven los Sender cuando un header (To/Subject) es inválido.
	ErrBadHeader = errors.New("invalid mail header")
)

// Details son los datos propios del tipo que van en el cuerpo del mail.
type Details struct {
	Name        string // medicamento, tipo de alimento, nombre del turno o vacuna
	Dosage      string
	Amount      string
	Description string
}

// ScheduledActivity es lo que el scheduler lee de una actividad recién creada.
// Date y Time son civiles (sin zona); la zona la pone el Scheduler.
type ScheduledActivity struct {
	ActivityID     string
	Kind           Kind
	Date           civil.Date
	Time           civil.Time
	Notes          string
	SubjectName    string
	RecipientEmail string
	Details        Details
}

// NotificationJob es el recordatorio listo para entregar en FireAt.
type NotificationJob struct {
	ActivityID string    `json:"activity_id,omitempty"`
	Kind       Kind      `json:"kind"`
	Recipient  string    `json:"recipient"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	FireAt     time.Time `json:"fire_at"`
}

// ActivityInstant combina fecha y hora civiles en loc.
func ActivityInstant(d civil.Date, t civil.Time, loc *time.Location) (time.Time, error) {
	if !d.IsValid() || !t.IsValid() {
		return time.Time{}, ErrInvalidInput
	}
	if loc == nil {
		loc = time.Local
	}
	return civil.DateTime{Date: d, Time: t}.In(loc), nil
}
