package reminders

import (
	"fmt"
	"strings"
	"time"
)

// Kind es el tipo de actividad que dispara un recordatorio.
type Kind string

const (
	KindMedication  Kind = "medication"
	KindFeeding     Kind = "feeding"
	KindWalk        Kind = "walk"
	KindAppointment Kind = "appointment"
	KindVaccination Kind = "vaccination"
)

var allKinds = []Kind{KindMedication, KindFeeding, KindWalk, KindAppointment, KindVaccination}

func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// LeadTimes es la anticipación con la que se avisa, por tipo.
type LeadTimes map[Kind]time.Duration

func DefaultLeadTimes() LeadTimes {
	return LeadTimes{
		KindMedication:  2 * time.Hour,
		KindAppointment: 2 * time.Hour,
		KindVaccination: 2 * time.Hour,
		KindWalk:        30 * time.Minute,
		KindFeeding:     time.Minute,
	}
}

// LeadTimesFrom arma la política desde config (keys en minúscula).
// Los tipos no presentes usan el default; tipos desconocidos o duraciones
// negativas son error.
func LeadTimesFrom(raw map[string]time.Duration) (LeadTimes, error) {
	out := DefaultLeadTimes()
	for k, d := range raw {
		kind := Kind(strings.ToLower(strings.TrimSpace(k)))
		if !kind.Valid() {
			return nil, fmt.Errorf("reminders: unknown activity kind %q", k)
		}
		if d < 0 {
			return nil, fmt.Errorf("reminders: negative lead time for %s", kind)
		}
		out[kind] = d
	}
	return out, nil
}

func (l LeadTimes) For(k Kind) (time.Duration, error) {
	d, ok := l[k]
	if !ok {
		return 0, fmt.Errorf("%w: no lead time for kind %q", ErrInvalidInput, k)
	}
	return d, nil
}
