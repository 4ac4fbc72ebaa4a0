package documents

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("document not found")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
)

// Type clasifica el documento.
// @Enum passport, vaccination, analysis, insurance, other
type Type string

const (
	TypePassport    Type = "passport"
	TypeVaccination Type = "vaccination"
	TypeAnalysis    Type = "analysis"
	TypeInsurance   Type = "insurance"
	TypeOther       Type = "other"
)

func (t Type) Valid() bool {
	switch t {
	case TypePassport, TypeVaccination, TypeAnalysis, TypeInsurance, TypeOther:
		return true
	}
	return false
}

// Document es la metadata; el contenido vive en el BlobStore bajo StorageKey.
type Document struct {
	ID    string
	PetID string

	Title string
	Type  Type

	Filename    string
	ContentType string // detectado del contenido, no del header del cliente
	Size        int64
	StorageKey  string

	UploadedBy string
	UploadedAt time.Time
}
