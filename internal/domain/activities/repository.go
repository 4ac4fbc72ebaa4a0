package activities

import (
	"context"

	"cloud.google.com/go/civil"
)

type Repository interface {
	Create(ctx context.Context, a Activity) error
	GetByID(ctx context.Context, id string) (Activity, error)
	ListByPet(ctx context.Context, petID string, filter ListFilter) ([]Activity, error)
	Delete(ctx context.Context, id string) error
}

// ListFilter: rango de fechas inclusivo. Orden: más reciente primero.
type ListFilter struct {
	Kinds []Kind
	From  *civil.Date
	To    *civil.Date
	Limit int
}

func (f ListFilter) Match(a Activity) bool {
	if len(f.Kinds) > 0 {
		ok := false
		for _, k := range f.Kinds {
			if a.Kind == k {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.From != nil && a.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && a.Date.After(*f.To) {
		return false
	}
	return true
}
