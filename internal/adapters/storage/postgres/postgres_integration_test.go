//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"petlink/internal/domain/activities"
	"petlink/internal/domain/activities/details"
	"petlink/internal/domain/documents"
	"petlink/internal/domain/pets"
	"petlink/internal/domain/users"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

// Corre con: PETLINK_TEST_DSN=postgres://... go test -tags integration ./internal/adapters/storage/postgres/
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PETLINK_TEST_DSN")
	if dsn == "" {
		t.Skip("PETLINK_TEST_DSN not set")
	}

	db, err := Open(context.Background(), dsn, PoolConfig{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(db, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return db
}

// Postgres guarda microsegundos.
func pgNow() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

func TestUsersRepo_Integration(t *testing.T) {
	db := openTestDB(t)
	repo := NewUsersRepo(db)
	ctx := context.Background()

	suffix := uuid.NewString()[:8]
	u := users.User{
		ID:           uuid.NewString(),
		Username:     "ana_" + suffix,
		Email:        "ana_" + suffix + "@example.com",
		PasswordHash: "hash",
		FirstName:    "Ana",
		CreatedAt:    pgNow(),
		UpdatedAt:    pgNow(),
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup := u
	dup.ID = uuid.NewString()
	dup.Email = "other_" + suffix + "@example.com"
	if err := repo.Create(ctx, dup); !errors.Is(err, users.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}

	got, err := repo.GetByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if diff := cmp.Diff(u, got); diff != "" {
		t.Fatalf("user mismatch (-want +got):\n%s", diff)
	}

	u.LastName = "Pérez"
	u.UpdatedAt = pgNow()
	if err := repo.Update(ctx, u); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := repo.GetByID(ctx, u.ID); got.LastName != "Pérez" {
		t.Fatalf("update not persisted: %+v", got)
	}

	if _, err := repo.GetByUsername(ctx, "missing_"+suffix); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPetsActivitiesDocuments_Integration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	petRepo := NewPetsRepo(db)
	activityRepo := NewActivitiesRepo(db)
	documentRepo := NewDocumentsRepo(db)

	owner := "owner-" + uuid.NewString()
	p := pets.Pet{
		ID:          uuid.NewString(),
		OwnerUserID: owner,
		Name:        "Milo",
		Species:     "dog",
		Sex:         pets.SexMale,
		BirthDate:   civil.Date{Year: 2024, Month: time.February, Day: 29},
		CreatedAt:   pgNow(),
		UpdatedAt:   pgNow(),
	}
	if err := petRepo.Create(ctx, p); err != nil {
		t.Fatalf("Create pet: %v", err)
	}
	t.Cleanup(func() { _ = petRepo.Delete(context.Background(), p.ID) })

	p.PhotoKey = "pets_photo/" + p.ID + "/a.png"
	p.PhotoContentType = "image/png"
	p.UpdatedAt = pgNow()
	if err := petRepo.Update(ctx, p); err != nil {
		t.Fatalf("Update pet: %v", err)
	}
	got, err := petRepo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID pet: %v", err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Fatalf("pet mismatch (-want +got):\n%s", diff)
	}
	if n, err := petRepo.CountByOwner(ctx, owner); err != nil || n != 1 {
		t.Fatalf("CountByOwner = %d, %v", n, err)
	}

	next := civil.Date{Year: 2025, Month: time.March, Day: 1}
	walk := activities.Activity{
		ID: uuid.NewString(), PetID: p.ID, Kind: activities.KindWalk,
		Date: civil.Date{Year: 2025, Month: time.January, Day: 10}, Time: civil.Time{Hour: 8},
		CreatedBy: owner, CreatedAt: pgNow(), UpdatedAt: pgNow(),
	}
	vacc := activities.Activity{
		ID: uuid.NewString(), PetID: p.ID, Kind: activities.KindVaccination,
		Date: civil.Date{Year: 2025, Month: time.February, Day: 1}, Time: civil.Time{Hour: 9, Minute: 30},
		Vaccination: &details.Vaccination{Vaccine: "rabies", NextDue: &next},
		CreatedBy:   owner, CreatedAt: pgNow(), UpdatedAt: pgNow(),
	}
	for _, a := range []activities.Activity{walk, vacc} {
		if err := activityRepo.Create(ctx, a); err != nil {
			t.Fatalf("Create activity %s: %v", a.Kind, err)
		}
	}

	gotVacc, err := activityRepo.GetByID(ctx, vacc.ID)
	if err != nil {
		t.Fatalf("GetByID activity: %v", err)
	}
	if diff := cmp.Diff(vacc, gotVacc); diff != "" {
		t.Fatalf("activity mismatch (-want +got):\n%s", diff)
	}

	all, err := activityRepo.ListByPet(ctx, p.ID, activities.ListFilter{})
	if err != nil || len(all) != 2 || all[0].ID != vacc.ID {
		t.Fatalf("ListByPet should be newest first, got %d items err=%v", len(all), err)
	}
	from := civil.Date{Year: 2025, Month: time.January, Day: 15}
	filtered, err := activityRepo.ListByPet(ctx, p.ID, activities.ListFilter{From: &from})
	if err != nil || len(filtered) != 1 || filtered[0].ID != vacc.ID {
		t.Fatalf("date filter returned %d items err=%v", len(filtered), err)
	}
	walks, err := activityRepo.ListByPet(ctx, p.ID, activities.ListFilter{Kinds: []activities.Kind{activities.KindWalk}})
	if err != nil || len(walks) != 1 || walks[0].ID != walk.ID {
		t.Fatalf("kind filter returned %d items err=%v", len(walks), err)
	}

	doc := documents.Document{
		ID: uuid.NewString(), PetID: p.ID, Title: "Carnet", Type: documents.TypeVaccination,
		Filename: "carnet.pdf", ContentType: "application/pdf", Size: 42,
		StorageKey: p.ID + "/carnet.pdf", UploadedBy: owner, UploadedAt: pgNow(),
	}
	if err := documentRepo.Create(ctx, doc); err != nil {
		t.Fatalf("Create document: %v", err)
	}
	gotDoc, err := documentRepo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID document: %v", err)
	}
	if diff := cmp.Diff(doc, gotDoc); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}

	// Borrar la mascota arrastra actividades y documentos.
	if err := petRepo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete pet: %v", err)
	}
	if _, err := activityRepo.GetByID(ctx, walk.ID); !errors.Is(err, activities.ErrNotFound) {
		t.Fatalf("expected activity ErrNotFound after cascade, got %v", err)
	}
	if _, err := documentRepo.GetByID(ctx, doc.ID); !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("expected document ErrNotFound after cascade, got %v", err)
	}
	if err := petRepo.Delete(ctx, p.ID); !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected pet ErrNotFound on second delete, got %v", err)
	}
}
