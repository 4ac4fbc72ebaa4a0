package activities

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"petlink/internal/domain/activities/details"
	"petlink/internal/domain/pets"
	"petlink/internal/middleware"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service) {
	r.Route("/pets/{petID}/activities", func(ar chi.Router) {
		ar.Post("/", createActivityHandler(svc, petsSvc))
		ar.Get("/", listActivitiesHandler(svc, petsSvc))
		ar.Get("/{activityID}", getActivityHandler(svc, petsSvc))
		ar.Delete("/{activityID}", deleteActivityHandler(svc, petsSvc))
	})
}

type medicationPayload struct {
	Name      string `json:"name" validate:"required,max=100"`
	Dosage    string `json:"dosage" validate:"required,max=50"`
	Frequency int    `json:"frequency" validate:"gte=0"` // veces por día, default 1
}

type feedingPayload struct {
	FoodType string `json:"food_type" validate:"required,max=100"`
	Amount   string `json:"amount" validate:"required,max=50"`
}

type appointmentPayload struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type vaccinationPayload struct {
	Vaccine string `json:"vaccine" validate:"required,max=100"`
	NextDue string `json:"next_due,omitempty"` // YYYY-MM-DD
}

// createActivityRequest: solo se envía el bloque de detalle del kind.
type createActivityRequest struct {
	Kind  Kind   `json:"kind" enums:"medication,feeding,walk,appointment,vaccination" validate:"required,oneof=medication feeding walk appointment vaccination"`
	Date  string `json:"date" validate:"required"` // YYYY-MM-DD
	Time  string `json:"time" validate:"required"` // HH:MM o HH:MM:SS
	Notes string `json:"notes"`

	Medication  *medicationPayload  `json:"medication,omitempty"`
	Feeding     *feedingPayload     `json:"feeding,omitempty"`
	Appointment *appointmentPayload `json:"appointment,omitempty"`
	Vaccination *vaccinationPayload `json:"vaccination,omitempty"`
}

type reminderResponse struct {
	Scheduled bool       `json:"scheduled"`
	FireAt    *time.Time `json:"fire_at,omitempty"`
}

// activityResponse representa una actividad de la mascota devuelta por la API.
type activityResponse struct {
	ID        string    `json:"id"`
	PetID     string    `json:"pet_id"`
	Kind      Kind      `json:"kind"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Notes     string    `json:"notes"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Medication  *medicationPayload  `json:"medication,omitempty"`
	Feeding     *feedingPayload     `json:"feeding,omitempty"`
	Appointment *appointmentPayload `json:"appointment,omitempty"`
	Vaccination *vaccinationPayload `json:"vaccination,omitempty"`

	Reminder *reminderResponse `json:"reminder,omitempty"`
}

// createActivityHandler godoc
// @Summary Crear actividad
// @Description Agenda una actividad (medicación, comida, paseo, turno, vacuna). Si la hora menos la anticipación del tipo está en el futuro, se agenda un recordatorio por email al dueño.
// @Tags activities
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Param petID path string true "ID de la mascota"
// @Param payload body createActivityRequest true "Actividad; date YYYY-MM-DD, time HH:MM"
// @Success 201 {object} activityResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/activities [post]
func createActivityHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, ok := accessiblePet(w, r, petsSvc)
		if !ok {
			return
		}

		var req createActivityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := requestValidator.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		in, err := req.toInput()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		a, rem, err := svc.Create(r.Context(),
			PetRef{ID: p.ID, Name: p.Name, OwnerUserID: p.OwnerUserID},
			Actor{UserID: claims.UserID, Email: claims.Email},
			in,
		)
		if err != nil {
			writeError(w, err)
			return
		}

		out := toActivityResponse(a)
		out.Reminder = &reminderResponse{Scheduled: rem.Scheduled}
		if rem.Scheduled {
			fire := rem.FireAt
			out.Reminder.FireAt = &fire
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// listActivitiesHandler godoc
// @Summary Listar actividades de una mascota
// @Tags activities
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param limit query int false "Máximo a devolver (1-200). Por defecto 50"
// @Param kinds query string false "CSV de tipos (ej: medication,walk)"
// @Param from query string false "Fecha mínima (YYYY-MM-DD)"
// @Param to query string false "Fecha máxima (YYYY-MM-DD)"
// @Success 200 {array} activityResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/activities [get]
func listActivitiesHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := accessiblePet(w, r, petsSvc)
		if !ok {
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByPet(r.Context(), p.ID, filter)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]activityResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toActivityResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getActivityHandler godoc
// @Summary Detalle de actividad
// @Tags activities
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param activityID path string true "ID de la actividad"
// @Success 200 {object} activityResponse
// @Failure 404 {string} string "activity not found"
// @Router /pets/{petID}/activities/{activityID} [get]
func getActivityHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := accessiblePet(w, r, petsSvc)
		if !ok {
			return
		}

		a, err := svc.GetByID(r.Context(), p.ID, chi.URLParam(r, "activityID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toActivityResponse(a))
	}
}

// deleteActivityHandler godoc
// @Summary Eliminar actividad
// @Description Un recordatorio ya agendado no se cancela.
// @Tags activities
// @Param petID path string true "ID de la mascota"
// @Param activityID path string true "ID de la actividad"
// @Success 204
// @Failure 404 {string} string "activity not found"
// @Router /pets/{petID}/activities/{activityID} [delete]
func deleteActivityHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := accessiblePet(w, r, petsSvc)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), p.ID, chi.URLParam(r, "activityID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// accessiblePet resuelve auth + permisos sobre la mascota del path.
// Si devuelve false ya escribió la respuesta.
func accessiblePet(w http.ResponseWriter, r *http.Request, petsSvc *pets.Service) (pets.Pet, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return pets.Pet{}, false
	}

	p, err := petsSvc.Accessible(r.Context(), pets.Viewer{UserID: claims.UserID, IsStaff: claims.IsStaff}, chi.URLParam(r, "petID"))
	switch {
	case err == nil:
		return p, true
	case errors.Is(err, pets.ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	case errors.Is(err, pets.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
	return pets.Pet{}, false
}

func (req createActivityRequest) toInput() (CreateInput, error) {
	d, err := civil.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return CreateInput{}, errors.New("date must be YYYY-MM-DD")
	}
	t, err := parseClock(req.Time)
	if err != nil {
		return CreateInput{}, err
	}

	in := CreateInput{Kind: req.Kind, Date: d, Time: t, Notes: req.Notes}
	if m := req.Medication; m != nil {
		in.Medication = &details.Medication{Name: m.Name, Dosage: m.Dosage, Frequency: m.Frequency}
	}
	if f := req.Feeding; f != nil {
		in.Feeding = &details.Feeding{FoodType: f.FoodType, Amount: f.Amount}
	}
	if a := req.Appointment; a != nil {
		in.Appointment = &details.Appointment{Name: a.Name, Description: a.Description}
	}
	if v := req.Vaccination; v != nil {
		vac := &details.Vaccination{Vaccine: v.Vaccine}
		if s := strings.TrimSpace(v.NextDue); s != "" {
			nd, err := civil.ParseDate(s)
			if err != nil {
				return CreateInput{}, errors.New("next_due must be YYYY-MM-DD")
			}
			vac.NextDue = &nd
		}
		in.Vaccination = vac
	}
	return in, nil
}

// parseClock acepta HH:MM o HH:MM:SS.
func parseClock(s string) (civil.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) == len("15:04") {
		s += ":00"
	}
	t, err := civil.ParseTime(s)
	if err != nil {
		return civil.Time{}, errors.New("time must be HH:MM or HH:MM:SS")
	}
	return t, nil
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= MaxListLimit {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	// kinds=medication,walk
	if v := strings.TrimSpace(r.URL.Query().Get("kinds")); v != "" {
		for _, part := range strings.Split(v, ",") {
			k := Kind(strings.ToLower(strings.TrimSpace(part)))
			if k == "" {
				continue
			}
			if !k.Valid() {
				return ListFilter{}, fmt.Errorf("unknown kind %q", k)
			}
			filter.Kinds = append(filter.Kinds, k)
		}
	}

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		d, err := civil.ParseDate(v)
		if err != nil {
			return ListFilter{}, errors.New("from must be YYYY-MM-DD")
		}
		filter.From = &d
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		d, err := civil.ParseDate(v)
		if err != nil {
			return ListFilter{}, errors.New("to must be YYYY-MM-DD")
		}
		filter.To = &d
	}

	return filter, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "activity not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toActivityResponse(a Activity) activityResponse {
	out := activityResponse{
		ID:        a.ID,
		PetID:     a.PetID,
		Kind:      a.Kind,
		Date:      a.Date.String(),
		Time:      a.Time.String(),
		Notes:     a.Notes,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if m := a.Medication; m != nil {
		out.Medication = &medicationPayload{Name: m.Name, Dosage: m.Dosage, Frequency: m.Frequency}
	}
	if f := a.Feeding; f != nil {
		out.Feeding = &feedingPayload{FoodType: f.FoodType, Amount: f.Amount}
	}
	if ap := a.Appointment; ap != nil {
		out.Appointment = &appointmentPayload{Name: ap.Name, Description: ap.Description}
	}
	if v := a.Vaccination; v != nil {
		vp := &vaccinationPayload{Vaccine: v.Vaccine}
		if v.NextDue != nil {
			vp.NextDue = v.NextDue.String()
		}
		out.Vaccination = vp
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
