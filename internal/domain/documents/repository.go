package documents

import (
	"context"
	"io"
)

type Repository interface {
	Create(ctx context.Context, d Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	// ListByPet ordena por uploaded_at desc.
	ListByPet(ctx context.Context, petID string) ([]Document, error)
	Delete(ctx context.Context, id string) error
}

// BlobStore guarda el contenido de los archivos.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
