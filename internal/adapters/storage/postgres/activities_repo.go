package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"petlink/internal/domain/activities"
	"petlink/internal/domain/activities/details"

	"cloud.google.com/go/civil"
)

type ActivitiesRepo struct {
	db *sql.DB
}

func NewActivitiesRepo(db *sql.DB) *ActivitiesRepo {
	return &ActivitiesRepo{db: db}
}

// activityDetails es el JSONB de la columna details.
type activityDetails struct {
	Medication  *medicationJSON  `json:"medication,omitempty"`
	Feeding     *feedingJSON     `json:"feeding,omitempty"`
	Appointment *appointmentJSON `json:"appointment,omitempty"`
	Vaccination *vaccinationJSON `json:"vaccination,omitempty"`
}

type medicationJSON struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency int    `json:"frequency"`
}

type feedingJSON struct {
	FoodType string `json:"food_type"`
	Amount   string `json:"amount"`
}

type appointmentJSON struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type vaccinationJSON struct {
	Vaccine string      `json:"vaccine"`
	NextDue *civil.Date `json:"next_due,omitempty"`
}

const activityColumns = `
	id, pet_id, kind,
	activity_date::text, activity_time::text,
	notes, details,
	created_by, created_at, updated_at`

func (r *ActivitiesRepo) Create(ctx context.Context, a activities.Activity) error {
	det, err := json.Marshal(toDetailsJSON(a))
	if err != nil {
		return fmt.Errorf("postgres: encode activity details: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO activities (
			id, pet_id, kind,
			activity_date, activity_time,
			notes, details,
			created_by, created_at, updated_at
		) VALUES ($1,$2,$3,$4::date,$5::time,$6,$7::jsonb,$8,$9,$10)
	`,
		a.ID,
		a.PetID,
		string(a.Kind),
		a.Date.String(),
		a.Time.String(),
		a.Notes,
		string(det),
		a.CreatedBy,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *ActivitiesRepo) GetByID(ctx context.Context, id string) (activities.Activity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return activities.Activity{}, activities.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return activities.Activity{}, activities.ErrNotFound
	}
	return a, err
}

func (r *ActivitiesRepo) ListByPet(ctx context.Context, petID string, filter activities.ListFilter) ([]activities.Activity, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + activityColumns + ` FROM activities WHERE pet_id = $1`)

	args := []any{petID}
	argN := 2

	if len(filter.Kinds) > 0 {
		placeholders := make([]string, 0, len(filter.Kinds))
		for _, k := range filter.Kinds {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(k))
			argN++
		}
		sb.WriteString(" AND kind IN (" + strings.Join(placeholders, ",") + ")")
	}

	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND activity_date >= $%d::date", argN))
		args = append(args, filter.From.String())
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND activity_date <= $%d::date", argN))
		args = append(args, filter.To.String())
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = activities.DefaultListLimit
	}
	if limit > activities.MaxListLimit {
		limit = activities.MaxListLimit
	}

	sb.WriteString(" ORDER BY activity_date DESC, activity_time DESC, created_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]activities.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ActivitiesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return activities.ErrNotFound
	}
	return nil
}

func scanActivity(s scanner) (activities.Activity, error) {
	var a activities.Activity
	var kind, date, clock string
	var raw []byte
	if err := s.Scan(
		&a.ID,
		&a.PetID,
		&kind,
		&date,
		&clock,
		&a.Notes,
		&raw,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return activities.Activity{}, err
	}

	a.Kind = activities.Kind(kind)

	d, err := civil.ParseDate(date)
	if err != nil {
		return activities.Activity{}, fmt.Errorf("postgres: activity %s date %q: %w", a.ID, date, err)
	}
	t, err := civil.ParseTime(clock)
	if err != nil {
		return activities.Activity{}, fmt.Errorf("postgres: activity %s time %q: %w", a.ID, clock, err)
	}
	a.Date, a.Time = d, t

	var det activityDetails
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &det); err != nil {
			return activities.Activity{}, fmt.Errorf("postgres: activity %s details: %w", a.ID, err)
		}
	}
	fromDetailsJSON(&a, det)
	return a, nil
}

func toDetailsJSON(a activities.Activity) activityDetails {
	var out activityDetails
	if m := a.Medication; m != nil {
		out.Medication = &medicationJSON{Name: m.Name, Dosage: m.Dosage, Frequency: m.Frequency}
	}
	if f := a.Feeding; f != nil {
		out.Feeding = &feedingJSON{FoodType: f.FoodType, Amount: f.Amount}
	}
	if ap := a.Appointment; ap != nil {
		out.Appointment = &appointmentJSON{Name: ap.Name, Description: ap.Description}
	}
	if v := a.Vaccination; v != nil {
		out.Vaccination = &vaccinationJSON{Vaccine: v.Vaccine, NextDue: v.NextDue}
	}
	return out
}

func fromDetailsJSON(a *activities.Activity, d activityDetails) {
	if m := d.Medication; m != nil {
		a.Medication = &details.Medication{Name: m.Name, Dosage: m.Dosage, Frequency: m.Frequency}
	}
	if f := d.Feeding; f != nil {
		a.Feeding = &details.Feeding{FoodType: f.FoodType, Amount: f.Amount}
	}
	if ap := d.Appointment; ap != nil {
		a.Appointment = &details.Appointment{Name: ap.Name, Description: ap.Description}
	}
	if v := d.Vaccination; v != nil {
		a.Vaccination = &details.Vaccination{Vaccine: v.Vaccine, NextDue: v.NextDue}
	}
}
