package pets

import (
	"context"
	"io"
)

// Los adapters devuelven ErrNotFound cuando el id no existe.
type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)
	ListAll(ctx context.Context) ([]Pet, error)
	CountByOwner(ctx context.Context, ownerUserID string) (int, error)
}

// PhotoStore guarda el contenido de las fotos. Open devuelve un error que
// cumple errors.Is(err, fs.ErrNotExist) si la key no existe.
type PhotoStore interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
