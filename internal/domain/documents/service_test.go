package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

type fakeRepo struct {
	mu   sync.Mutex
	byID map[string]Document
}

func (r *fakeRepo) Create(ctx context.Context, d Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[d.ID] = d
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return d, nil
}

func (r *fakeRepo) ListByPet(ctx context.Context, petID string) ([]Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Document
	for _, d := range r.byID {
		if d.PetID == petID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

type memBlobs struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (b *memBlobs) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[key] = data
	return int64(len(data)), nil
}

func (b *memBlobs) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.files[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.files, key)
	return nil
}

func newTestService(max int64) (*Service, *memBlobs) {
	blobs := &memBlobs{files: map[string][]byte{}}
	return NewService(&fakeRepo{byID: map[string]Document{}}, blobs, max, nil), blobs
}

const samplePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n"

func TestService_Upload_SniffsContentType(t *testing.T) {
	svc, blobs := newTestService(0)
	ctx := context.Background()

	d, err := svc.Upload(ctx, "pet-1", "owner-1", UploadInput{
		Title:    "Vet passport",
		Type:     TypePassport,
		Filename: `C:\scans\passport.pdf`,
		Content:  strings.NewReader(samplePDF),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if d.ContentType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", d.ContentType)
	}
	if d.Filename != "passport.pdf" || d.Size != int64(len(samplePDF)) {
		t.Fatalf("unexpected metadata %+v", d)
	}
	if !strings.HasSuffix(d.StorageKey, ".pdf") || len(blobs.files) != 1 {
		t.Fatalf("blob not stored as expected: key=%q files=%d", d.StorageKey, len(blobs.files))
	}

	_, rc, err := svc.Open(ctx, "pet-1", d.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != samplePDF {
		t.Fatalf("content mismatch")
	}
}

func TestService_Upload_DefaultsTypeToOther(t *testing.T) {
	svc, _ := newTestService(0)
	d, err := svc.Upload(context.Background(), "pet-1", "owner-1", UploadInput{
		Title:   "Notes",
		Content: strings.NewReader("plain text notes"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if d.Type != TypeOther || !strings.HasPrefix(d.ContentType, "text/plain") {
		t.Fatalf("unexpected document %+v", d)
	}
}

func TestService_Upload_Rejections(t *testing.T) {
	svc, blobs := newTestService(16)
	ctx := context.Background()

	cases := []struct {
		name string
		in   UploadInput
		want error
	}{
		{"missing title", UploadInput{Content: strings.NewReader("x")}, ErrInvalidInput},
		{"bad type", UploadInput{Title: "t", Type: "selfie", Content: strings.NewReader("x")}, ErrInvalidInput},
		{"empty file", UploadInput{Title: "t", Content: strings.NewReader("")}, ErrInvalidInput},
		{"html", UploadInput{Title: "t", Content: strings.NewReader("<html><body>x</body></html>")}, ErrUnsupportedType},
		{"too large", UploadInput{Title: "t", Content: strings.NewReader(strings.Repeat("a", 64))}, ErrTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Upload(ctx, "pet-1", "owner-1", tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if len(blobs.files) != 0 {
		t.Fatalf("rejected uploads must not leave blobs, got %d", len(blobs.files))
	}
}

func TestService_ScopedToPetAndDeleteRemovesBlob(t *testing.T) {
	svc, blobs := newTestService(0)
	ctx := context.Background()

	d, err := svc.Upload(ctx, "pet-1", "owner-1", UploadInput{Title: "Analysis", Type: TypeAnalysis, Content: strings.NewReader(samplePDF)})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := svc.GetByID(ctx, "pet-2", d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound through other pet, got %v", err)
	}
	if err := svc.Delete(ctx, "pet-1", d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(blobs.files) != 0 {
		t.Fatalf("expected blob removed")
	}
	if _, err := svc.GetByID(ctx, "pet-1", d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected document gone, got %v", err)
	}
}
