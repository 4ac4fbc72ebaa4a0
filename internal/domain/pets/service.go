package pets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultMaxPerOwner = 5

type Config struct {
	// MaxPerOwner <= 0 usa DefaultMaxPerOwner.
	MaxPerOwner int
	// Zona con la que se calcula "hoy" para la edad.
	Location *time.Location
	// Photos nil deshabilita las fotos de perfil.
	Photos PhotoStore
	// MaxPhotoBytes <= 0 usa DefaultMaxPhotoBytes.
	MaxPhotoBytes int64
	Logger        *zap.Logger
}

type Service struct {
	repo        Repository
	maxPerOwner int
	loc         *time.Location
	photos      PhotoStore
	maxPhoto    int64
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(repo Repository, cfg Config) *Service {
	if cfg.MaxPerOwner <= 0 {
		cfg.MaxPerOwner = DefaultMaxPerOwner
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxPhotoBytes <= 0 {
		cfg.MaxPhotoBytes = DefaultMaxPhotoBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		maxPerOwner: cfg.MaxPerOwner,
		loc:         cfg.Location,
		photos:      cfg.Photos,
		maxPhoto:    cfg.MaxPhotoBytes,
		logger:      cfg.Logger,
		now:         time.Now,
	}
}

type CreateInput struct {
	Name      string
	Species   string
	Breed     string
	Sex       Sex
	BirthDate civil.Date
	Microchip string
	VetNotes  string
	Notes     string
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	Name      *string
	Species   *string
	Breed     *string
	Sex       *Sex
	BirthDate *civil.Date
	Microchip *string
	VetNotes  *string
	Notes     *string
}

// Today es la fecha civil actual en la zona configurada.
func (s *Service) Today() civil.Date {
	return civil.DateOf(s.now().In(s.loc))
}

// AgeOf calcula la edad de la mascota a hoy.
func (s *Service) AgeOf(p Pet) (string, error) {
	return Age(p.BirthDate, s.Today())
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Species) == "" {
		return Pet{}, ErrInvalidInput
	}
	if err := s.checkBirthDate(in.BirthDate); err != nil {
		return Pet{}, err
	}
	sex, err := normalizeSex(in.Sex)
	if err != nil {
		return Pet{}, err
	}

	n, err := s.repo.CountByOwner(ctx, ownerUserID)
	if err != nil {
		return Pet{}, err
	}
	if n >= s.maxPerOwner {
		return Pet{}, fmt.Errorf("%w: max %d pets per owner", ErrLimitReached, s.maxPerOwner)
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Species:     strings.TrimSpace(in.Species),
		Breed:       strings.TrimSpace(in.Breed),
		Sex:         sex,
		BirthDate:   in.BirthDate,
		Microchip:   strings.TrimSpace(in.Microchip),
		VetNotes:    strings.TrimSpace(in.VetNotes),
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// List devuelve las mascotas del viewer; staff ve todas.
func (s *Service) List(ctx context.Context, v Viewer) ([]Pet, error) {
	if v.IsStaff {
		return s.repo.ListAll(ctx)
	}
	if strings.TrimSpace(v.UserID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, v.UserID)
}

func (s *Service) Update(ctx context.Context, v Viewer, id string, in UpdateInput) (Pet, error) {
	p, err := s.Accessible(ctx, v, id)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.Species != nil {
		species := strings.TrimSpace(*in.Species)
		if species == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Species = species
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Sex != nil {
		sex, err := normalizeSex(*in.Sex)
		if err != nil {
			return Pet{}, err
		}
		p.Sex = sex
	}
	if in.BirthDate != nil {
		if err := s.checkBirthDate(*in.BirthDate); err != nil {
			return Pet{}, err
		}
		p.BirthDate = *in.BirthDate
	}
	if in.Microchip != nil {
		p.Microchip = strings.TrimSpace(*in.Microchip)
	}
	if in.VetNotes != nil {
		p.VetNotes = strings.TrimSpace(*in.VetNotes)
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, v Viewer, id string) error {
	p, err := s.Accessible(ctx, v, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return err
	}
	if p.PhotoKey != "" {
		s.removePhoto(ctx, p.PhotoKey)
	}
	return nil
}

// La fecha de nacimiento es obligatoria y no puede ser futura.
func (s *Service) checkBirthDate(d civil.Date) error {
	if !d.IsValid() {
		return fmt.Errorf("%w: birth_date required", ErrInvalidInput)
	}
	if d.After(s.Today()) {
		return fmt.Errorf("%w: birth_date in the future", ErrInvalidInput)
	}
	return nil
}

func normalizeSex(sex Sex) (Sex, error) {
	switch Sex(strings.ToLower(strings.TrimSpace(string(sex)))) {
	case "", SexUnknown:
		return SexUnknown, nil
	case SexMale:
		return SexMale, nil
	case SexFemale:
		return SexFemale, nil
	default:
		return "", fmt.Errorf("%w: sex must be male, female or unknown", ErrInvalidInput)
	}
}
