package pets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultMaxPhotoBytes = 5 << 20
	photoSniffLen        = 3072
	photoPrefix          = "pets_photo/"
)

var photoTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/heic",
}

// MaxPhotoBytes es el límite de tamaño de una foto.
func (s *Service) MaxPhotoBytes() int64 { return s.maxPhoto }

// SetPhoto reemplaza la foto de perfil. El tipo se detecta del contenido.
func (s *Service) SetPhoto(ctx context.Context, v Viewer, id string, content io.Reader) (Pet, error) {
	if s.photos == nil {
		return Pet{}, errors.New("pets: photo store not configured")
	}
	p, err := s.Accessible(ctx, v, id)
	if err != nil {
		return Pet{}, err
	}
	if content == nil {
		return Pet{}, ErrInvalidInput
	}

	head := make([]byte, photoSniffLen)
	n, err := io.ReadFull(content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Pet{}, fmt.Errorf("pets: read photo: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return Pet{}, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}

	mt := mimetype.Detect(head)
	if !isPhotoType(mt) {
		return Pet{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	key := photoPrefix + p.ID + "/" + uuid.NewString() + mt.Extension()
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), content), s.maxPhoto+1)
	size, err := s.photos.Put(ctx, key, body)
	if err != nil {
		return Pet{}, fmt.Errorf("pets: store photo: %w", err)
	}
	if size > s.maxPhoto {
		s.removePhoto(ctx, key)
		return Pet{}, fmt.Errorf("%w: max %d bytes", ErrTooLarge, s.maxPhoto)
	}

	old := p.PhotoKey
	p.PhotoKey = key
	p.PhotoContentType = mt.String()
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		s.removePhoto(ctx, key)
		return Pet{}, err
	}
	if old != "" {
		s.removePhoto(ctx, old)
	}
	return p, nil
}

// Photo abre la foto de perfil. El caller cierra el ReadCloser.
func (s *Service) Photo(ctx context.Context, v Viewer, id string) (Pet, io.ReadCloser, error) {
	p, err := s.Accessible(ctx, v, id)
	if err != nil {
		return Pet{}, nil, err
	}
	if p.PhotoKey == "" || s.photos == nil {
		return Pet{}, nil, ErrNoPhoto
	}
	rc, err := s.photos.Open(ctx, p.PhotoKey)
	if errors.Is(err, fs.ErrNotExist) {
		return Pet{}, nil, ErrNoPhoto
	}
	if err != nil {
		return Pet{}, nil, err
	}
	return p, rc, nil
}

func (s *Service) DeletePhoto(ctx context.Context, v Viewer, id string) error {
	p, err := s.Accessible(ctx, v, id)
	if err != nil {
		return err
	}
	if p.PhotoKey == "" {
		return ErrNoPhoto
	}
	key := p.PhotoKey
	p.PhotoKey = ""
	p.PhotoContentType = ""
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.removePhoto(ctx, key)
	return nil
}

func (s *Service) removePhoto(ctx context.Context, key string) {
	if s.photos == nil {
		return
	}
	if err := s.photos.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove pet photo", zap.String("key", key), zap.Error(err))
	}
}

func isPhotoType(mt *mimetype.MIME) bool {
	for _, t := range photoTypes {
		if mt.Is(t) {
			return true
		}
	}
	return false
}
