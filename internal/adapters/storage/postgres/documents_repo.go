package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"petlink/internal/domain/documents"
)

type DocumentsRepo struct {
	db *sql.DB
}

func NewDocumentsRepo(db *sql.DB) *DocumentsRepo {
	return &DocumentsRepo{db: db}
}

const documentColumns = `
	id, pet_id, title, document_type,
	filename, content_type, size_bytes, storage_key,
	uploaded_by, uploaded_at`

func (r *DocumentsRepo) Create(ctx context.Context, d documents.Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pet_documents (`+documentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		d.ID,
		d.PetID,
		d.Title,
		string(d.Type),
		d.Filename,
		d.ContentType,
		d.Size,
		d.StorageKey,
		d.UploadedBy,
		d.UploadedAt,
	)
	return err
}

func (r *DocumentsRepo) GetByID(ctx context.Context, id string) (documents.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return documents.Document{}, documents.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM pet_documents WHERE id = $1`, id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return documents.Document{}, documents.ErrNotFound
	}
	return d, err
}

func (r *DocumentsRepo) ListByPet(ctx context.Context, petID string) ([]documents.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM pet_documents
		WHERE pet_id = $1
		ORDER BY uploaded_at DESC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]documents.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DocumentsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pet_documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return documents.ErrNotFound
	}
	return nil
}

func scanDocument(s scanner) (documents.Document, error) {
	var d documents.Document
	var typ string
	err := s.Scan(
		&d.ID,
		&d.PetID,
		&d.Title,
		&typ,
		&d.Filename,
		&d.ContentType,
		&d.Size,
		&d.StorageKey,
		&d.UploadedBy,
		&d.UploadedAt,
	)
	d.Type = documents.Type(typ)
	return d, err
}
