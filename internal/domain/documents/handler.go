package documents

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"petlink/internal/domain/pets"
	"petlink/internal/middleware"

	"github.com/go-chi/chi/v5"
)

const multipartMemory = 1 << 20

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service) {
	r.Route("/pets/{petID}/documents", func(dr chi.Router) {
		dr.Post("/", uploadDocumentHandler(svc, petsSvc))
		dr.Get("/", listDocumentsHandler(svc, petsSvc))
		dr.Get("/{documentID}", downloadDocumentHandler(svc, petsSvc))
		dr.Delete("/{documentID}", deleteDocumentHandler(svc, petsSvc))
	})
}

// documentResponse es la metadata de un documento.
type documentResponse struct {
	ID          string    `json:"id"`
	PetID       string    `json:"pet_id"`
	Title       string    `json:"title"`
	Type        Type      `json:"document_type"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// uploadDocumentHandler godoc
// @Summary Subir documento
// @Description multipart/form-data con `file`, `title` y `document_type` (passport, vaccination, analysis, insurance, other; default other). El tipo de contenido se detecta del archivo.
// @Tags documents
// @Accept mpfd
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param file formData file true "Archivo"
// @Param title formData string true "Título"
// @Param document_type formData string false "Tipo de documento"
// @Success 201 {object} documentResponse
// @Failure 400 {string} string "invalid form"
// @Failure 413 {string} string "file too large"
// @Failure 415 {string} string "unsupported file type"
// @Router /pets/{petID}/documents [post]
func uploadDocumentHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, claims, ok := accessiblePet(w, r, petsSvc)
		if !ok {
			return
		}

		// Margen para los campos del form además del archivo.
		r.Body = http.MaxBytesReader(w, r.Body, svc.MaxBytes()+multipartMemory)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		d, err := svc.Upload(r.Context(), p.ID, claims, UploadInput{
			Title:    r.FormValue("title"),
			Type:     Type(strings.ToLower(strings.TrimSpace(r.FormValue("document_type")))),
			Filename: header.Filename,
			Content:  file,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toDocumentResponse(d))
	}
}

// listDocumentsHandler godoc
// @Summary Listar documentos
// @Tags documents
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} documentResponse
// @Router /pets/{petID}/documents [get]
func listDocumentsHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _, ok := accessiblePet(w, r, petsSvc)
		if !ok {
			return
		}

		items, err := svc.ListByPet(r.Context(), p.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]documentResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDocumentResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// downloadDocumentHandler godoc
// @Summary Descargar documento
// @Tags documents
// @Produce octet-stream
// @Param petID path string true "ID de la mascota"
// @Param documentID path string true "ID del documento"
// @Success 200 {file} file
// @Failure 404 {string} string "document not found"
// @Router /pets/{petID}/documents/{documentID} [get]
func downloadDocumentHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _, ok := accessiblePet(w, r, petsSvc)
		if !ok {
			return
		}

		d, rc, err := svc.Open(r.Context(), p.ID, chi.URLParam(r, "documentID"))
		if err != nil {
			writeError(w, err)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", d.ContentType)
		w.Header().Set("Content-Length", strconv.FormatInt(d.Size, 10))
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.Filename}))
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, rc)
	}
}

// deleteDocumentHandler godoc
// @Summary Eliminar documento
// @Tags documents
// @Param petID path string true "ID de la mascota"
// @Param documentID path string true "ID del documento"
// @Success 204
// @Failure 404 {string} string "document not found"
// @Router /pets/{petID}/documents/{documentID} [delete]
func deleteDocumentHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _, ok := accessiblePet(w, r, petsSvc)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), p.ID, chi.URLParam(r, "documentID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// accessiblePet devuelve la mascota y el user id del request.
// Si devuelve false ya escribió la respuesta.
func accessiblePet(w http.ResponseWriter, r *http.Request, petsSvc *pets.Service) (pets.Pet, string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return pets.Pet{}, "", false
	}

	p, err := petsSvc.Accessible(r.Context(), pets.Viewer{UserID: claims.UserID, IsStaff: claims.IsStaff}, chi.URLParam(r, "petID"))
	switch {
	case err == nil:
		return p, claims.UserID, true
	case errors.Is(err, pets.ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	case errors.Is(err, pets.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
	return pets.Pet{}, "", false
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "document not found", http.StatusNotFound)
	case errors.Is(err, ErrUnsupportedType):
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
	case errors.Is(err, ErrTooLarge):
		http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toDocumentResponse(d Document) documentResponse {
	return documentResponse{
		ID:          d.ID,
		PetID:       d.PetID,
		Title:       d.Title,
		Type:        d.Type,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		Size:        d.Size,
		UploadedAt:  d.UploadedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
