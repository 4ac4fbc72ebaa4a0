package pets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

type fakeRepo struct {
	mu   sync.Mutex
	byID map[string]Pet
}

func newFakeRepo() *fakeRepo { return &fakeRepo{byID: map[string]Pet{}} }

func (r *fakeRepo) Create(ctx context.Context, p Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, p Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) ListByOwner(ctx context.Context, owner string) ([]Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Pet
	for _, p := range r.byID {
		if p.OwnerUserID == owner {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAll(ctx context.Context) ([]Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Pet, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) CountByOwner(ctx context.Context, owner string) (int, error) {
	items, _ := r.ListByOwner(ctx, owner)
	return len(items), nil
}

func newTestService(t *testing.T, max int) *Service {
	t.Helper()
	svc := NewService(newFakeRepo(), Config{MaxPerOwner: max, Location: time.UTC})
	svc.now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func validInput(name string) CreateInput {
	return CreateInput{
		Name:      name,
		Species:   "dog",
		BirthDate: civil.Date{Year: 2024, Month: time.March, Day: 31},
	}
}

func TestService_Create_EnforcesLimitPerOwner(t *testing.T) {
	svc := newTestService(t, 2)
	ctx := context.Background()

	for _, name := range []string{"Milo", "Luna"} {
		if _, err := svc.Create(ctx, "owner-1", validInput(name)); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	if _, err := svc.Create(ctx, "owner-1", validInput("Rex")); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	// El límite es por dueño.
	if _, err := svc.Create(ctx, "owner-2", validInput("Rex")); err != nil {
		t.Fatalf("other owner should not be limited: %v", err)
	}
}

func TestService_Create_ValidatesBirthDate(t *testing.T) {
	svc := newTestService(t, 0)
	ctx := context.Background()

	in := validInput("Milo")
	in.BirthDate = civil.Date{}
	if _, err := svc.Create(ctx, "owner-1", in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing birth date, got %v", err)
	}

	in.BirthDate = civil.Date{Year: 2025, Month: time.March, Day: 16}
	if _, err := svc.Create(ctx, "owner-1", in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for future birth date, got %v", err)
	}

	in.Sex = "robot"
	in.BirthDate = civil.Date{Year: 2024, Month: time.March, Day: 31}
	if _, err := svc.Create(ctx, "owner-1", in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad sex, got %v", err)
	}
}

func TestService_AgeOf_UsesConfiguredToday(t *testing.T) {
	svc := newTestService(t, 0)
	p, err := svc.Create(context.Background(), "owner-1", validInput("Milo"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	age, err := svc.AgeOf(p)
	if err != nil {
		t.Fatalf("AgeOf: %v", err)
	}
	if age != "11 months" {
		t.Fatalf("expected 11 months, got %q", age)
	}
}

func TestService_AccessRules(t *testing.T) {
	svc := newTestService(t, 0)
	ctx := context.Background()

	p, err := svc.Create(ctx, "owner-1", validInput("Milo"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	owner := Viewer{UserID: "owner-1"}
	stranger := Viewer{UserID: "owner-2"}
	staff := Viewer{UserID: "vet-1", IsStaff: true}

	if _, err := svc.Accessible(ctx, stranger, p.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
	if _, err := svc.Accessible(ctx, staff, p.ID); err != nil {
		t.Fatalf("staff should access any pet: %v", err)
	}
	if _, err := svc.Accessible(ctx, owner, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	all, _ := svc.List(ctx, staff)
	if len(all) != 1 {
		t.Fatalf("staff should list all pets, got %d", len(all))
	}
	mine, _ := svc.List(ctx, stranger)
	if len(mine) != 0 {
		t.Fatalf("stranger should list no pets, got %d", len(mine))
	}

	name := "Milo II"
	if _, err := svc.Update(ctx, stranger, p.ID, UpdateInput{Name: &name}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden updating foreign pet, got %v", err)
	}
	updated, err := svc.Update(ctx, owner, p.ID, UpdateInput{Name: &name})
	if err != nil || updated.Name != name {
		t.Fatalf("owner update failed: %v (%q)", err, updated.Name)
	}

	if err := svc.Delete(ctx, stranger, p.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden deleting foreign pet, got %v", err)
	}
	if err := svc.Delete(ctx, owner, p.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected pet gone, got %v", err)
	}
}
