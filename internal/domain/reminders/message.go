package reminders

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "02-01-2006"
	clockLayout = "15:04"
)

// compose arma subject y body según el tipo de actividad.
func compose(a ScheduledActivity, at time.Time) (subject, body string) {
	pet := strings.TrimSpace(a.SubjectName)
	if pet == "" {
		pet = "your pet"
	}
	d := a.Details
	when := fmt.Sprintf("%s at %s", at.Format(dateLayout), at.Format(clockLayout))

	var b strings.Builder

	switch a.Kind {
	case KindMedication:
		subject = fmt.Sprintf("Reminder: %s for %s", orDefault(d.Name, "medication"), pet)
		fmt.Fprintf(&b, "Give %s %s", pet, orDefault(d.Name, "the medication"))
		if d.Dosage != "" {
			fmt.Fprintf(&b, " (%s)", d.Dosage)
		}
		fmt.Fprintf(&b, " on %s.", when)

	case KindFeeding:
		subject = fmt.Sprintf("Reminder: feeding %s", pet)
		fmt.Fprintf(&b, "Don't forget to feed %s on %s.", pet, when)
		if d.Name != "" {
			fmt.Fprintf(&b, " Food type: %s.", d.Name)
		}
		if d.Amount != "" {
			fmt.Fprintf(&b, " Amount: %s.", d.Amount)
		}

	case KindWalk:
		subject = fmt.Sprintf("Reminder: walk with %s", pet)
		fmt.Fprintf(&b, "Walk with %s scheduled for %s.", pet, when)

	case KindAppointment:
		subject = fmt.Sprintf("Reminder: %s for %s", orDefault(d.Name, "vet appointment"), pet)
		fmt.Fprintf(&b, "Vet appointment for %s scheduled for %s.", pet, when)
		if d.Description != "" {
			fmt.Fprintf(&b, "\nDetails: %s.", d.Description)
		}

	case KindVaccination:
		subject = fmt.Sprintf("Reminder: %s vaccination for %s", orDefault(d.Name, "scheduled"), pet)
		fmt.Fprintf(&b, "%s is due for %s vaccination on %s.", pet, orDefault(d.Name, "a"), when)

	default:
		subject = fmt.Sprintf("Reminder: %s for %s", a.Kind, pet)
		fmt.Fprintf(&b, "Scheduled for %s.", when)
	}

	if notes := strings.TrimSpace(a.Notes); notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s", notes)
	}
	return subject, b.String()
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
