package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultMaxBytes = 10 << 20
	sniffLen        = 3072
)

// Tipos aceptados, comparados contra el tipo detectado.
var allowedTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/heic",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type Service struct {
	repo     Repository
	blobs    BlobStore
	maxBytes int64
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, blobs BlobStore, maxBytes int64, logger *zap.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		blobs:    blobs,
		maxBytes: maxBytes,
		logger:   logger,
		now:      time.Now,
	}
}

// MaxBytes es el límite de tamaño de un archivo.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

type UploadInput struct {
	Title    string
	Type     Type
	Filename string
	Content  io.Reader
}

func (s *Service) Upload(ctx context.Context, petID, uploadedBy string, in UploadInput) (Document, error) {
	title := strings.TrimSpace(in.Title)
	if strings.TrimSpace(petID) == "" || title == "" || len(title) > 150 || in.Content == nil {
		return Document{}, ErrInvalidInput
	}
	typ := in.Type
	if typ == "" {
		typ = TypeOther
	}
	if !typ.Valid() {
		return Document{}, fmt.Errorf("%w: unknown document_type %q", ErrInvalidInput, in.Type)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Document{}, fmt.Errorf("documents: read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return Document{}, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}

	mt := mimetype.Detect(head)
	if !allowed(mt) {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	id := uuid.NewString()
	key := petID + "/" + id + mt.Extension()

	// Leemos un byte de más para detectar el exceso.
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), in.Content), s.maxBytes+1)
	size, err := s.blobs.Put(ctx, key, body)
	if err != nil {
		return Document{}, fmt.Errorf("documents: store blob: %w", err)
	}
	if size > s.maxBytes {
		s.removeBlob(ctx, key)
		return Document{}, fmt.Errorf("%w: max %d bytes", ErrTooLarge, s.maxBytes)
	}

	d := Document{
		ID:          id,
		PetID:       petID,
		Title:       title,
		Type:        typ,
		Filename:    cleanFilename(in.Filename, mt.Extension()),
		ContentType: mt.String(),
		Size:        size,
		StorageKey:  key,
		UploadedBy:  uploadedBy,
		UploadedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		s.removeBlob(ctx, key)
		return Document{}, err
	}
	return d, nil
}

func (s *Service) GetByID(ctx context.Context, petID, id string) (Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Document{}, ErrNotFound
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if d.PetID != petID {
		return Document{}, ErrNotFound
	}
	return d, nil
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]Document, error) {
	return s.repo.ListByPet(ctx, petID)
}

// Open devuelve metadata y contenido. El caller cierra el ReadCloser.
func (s *Service) Open(ctx context.Context, petID, id string) (Document, io.ReadCloser, error) {
	d, err := s.GetByID(ctx, petID, id)
	if err != nil {
		return Document{}, nil, err
	}
	rc, err := s.blobs.Open(ctx, d.StorageKey)
	if err != nil {
		return Document{}, nil, err
	}
	return d, rc, nil
}

func (s *Service) Delete(ctx context.Context, petID, id string) error {
	d, err := s.GetByID(ctx, petID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, d.ID); err != nil {
		return err
	}
	s.removeBlob(ctx, d.StorageKey)
	return nil
}

// Un blob huérfano no es un error para el caller.
func (s *Service) removeBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove document blob", zap.String("key", key), zap.Error(err))
	}
}

func allowed(mt *mimetype.MIME) bool {
	for _, a := range allowedTypes {
		if mt.Is(a) {
			return true
		}
	}
	return false
}

func cleanFilename(name, ext string) string {
	name = filepath.Base(strings.TrimSpace(strings.ReplaceAll(name, "\\", "/")))
	if name == "." || name == "/" || name == "" {
		return "document" + ext
	}
	return name
}
