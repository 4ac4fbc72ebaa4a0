package files

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"petlink/internal/domain/documents"
)

func TestLocalStore_PutOpenDelete(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	n, err := s.Put(ctx, "pet-1/doc.pdf", strings.NewReader("content"))
	if err != nil || n != int64(len("content")) {
		t.Fatalf("Put = %d, %v", n, err)
	}

	rc, err := s.Open(ctx, "pet-1/doc.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "content" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := s.Delete(ctx, "pet-1/doc.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = s.Open(ctx, "pet-1/doc.pdf")
	if !errors.Is(err, documents.ErrNotFound) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// Borrar dos veces no es error.
	if err := s.Delete(ctx, "pet-1/doc.pdf"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	for _, key := range []string{"", "../outside", "/etc/passwd", "pet/../../x"} {
		if _, err := s.Put(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
