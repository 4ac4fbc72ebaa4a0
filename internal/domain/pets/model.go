package pets

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
	ErrForbidden    = errors.New("forbidden")
	ErrLimitReached = errors.New("pet limit reached")

	ErrNoPhoto         = errors.New("pet has no photo")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("photo too large")
)

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Pet representa el perfil de una mascota registrada en el sistema.
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species string // texto libre: dog, cat, hamster...
	Breed   string
	Sex     Sex

	BirthDate civil.Date
	Microchip string

	// Pasaporte veterinario (texto libre del dueño).
	VetNotes string
	Notes    string

	// Foto de perfil; PhotoKey vacío = sin foto.
	PhotoKey         string
	PhotoContentType string

	CreatedAt time.Time
	UpdatedAt time.Time
}
