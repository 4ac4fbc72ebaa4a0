// Package details contiene los datos propios de cada tipo de actividad.
package details

import "cloud.google.com/go/civil"

type Medication struct {
	Name   string
	Dosage string // "5ml", "1 tablet"
	// Veces por día.
	Frequency int
}

type Feeding struct {
	FoodType string
	Amount   string
}

type Appointment struct {
	Name        string
	Description string
}

type Vaccination struct {
	Vaccine string
	NextDue *civil.Date
}
