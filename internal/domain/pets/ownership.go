package pets

import (
	"context"
	"strings"
)

// Viewer es quien hace el request. Staff ve y edita todas las mascotas.
type Viewer struct {
	UserID  string
	IsStaff bool
}

func (v Viewer) CanAccess(p Pet) bool {
	return v.IsStaff || (strings.TrimSpace(v.UserID) != "" && p.OwnerUserID == v.UserID)
}

// OwnerOf expone el ownerUserID de una mascota.
// Lo usan activities/documents sin depender del modelo completo.
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}

// Accessible devuelve la mascota si el viewer puede verla.
// ErrNotFound si no existe, ErrForbidden si es de otro dueño.
func (s *Service) Accessible(ctx context.Context, v Viewer, petID string) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if !v.CanAccess(p) {
		return Pet{}, ErrForbidden
	}
	return p, nil
}
