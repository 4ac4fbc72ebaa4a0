package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"petlink/internal/domain/activities"
	"petlink/internal/domain/users"

	"cloud.google.com/go/civil"
)

func TestActivityRepo_ListByPet_FiltersAndOrders(t *testing.T) {
	repo := NewActivityRepo()
	ctx := context.Background()

	day := func(d int) civil.Date { return civil.Date{Year: 2025, Month: time.March, Day: d} }
	seed := []activities.Activity{
		{ID: "a1", PetID: "p1", Kind: activities.KindWalk, Date: day(1), Time: civil.Time{Hour: 8}},
		{ID: "a2", PetID: "p1", Kind: activities.KindFeeding, Date: day(1), Time: civil.Time{Hour: 18}},
		{ID: "a3", PetID: "p1", Kind: activities.KindWalk, Date: day(5), Time: civil.Time{Hour: 8}},
		{ID: "a4", PetID: "p2", Kind: activities.KindWalk, Date: day(3), Time: civil.Time{Hour: 8}},
	}
	for _, a := range seed {
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create %s: %v", a.ID, err)
		}
	}

	all, _ := repo.ListByPet(ctx, "p1", activities.ListFilter{})
	if got := ids(all); got != "a3,a2,a1" {
		t.Fatalf("expected newest first a3,a2,a1, got %s", got)
	}

	walks, _ := repo.ListByPet(ctx, "p1", activities.ListFilter{Kinds: []activities.Kind{activities.KindWalk}})
	if got := ids(walks); got != "a3,a1" {
		t.Fatalf("expected walks a3,a1, got %s", got)
	}

	from, to := day(1), day(2)
	ranged, _ := repo.ListByPet(ctx, "p1", activities.ListFilter{From: &from, To: &to, Limit: 1})
	if got := ids(ranged); got != "a2" {
		t.Fatalf("expected a2 with range+limit, got %s", got)
	}

	if err := repo.Delete(ctx, "a1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "a1"); !errors.Is(err, activities.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepo_UniqueUsernameAndEmail(t *testing.T) {
	repo := NewUserRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, users.User{ID: "u1", Username: "anna", Email: "anna@example.com"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, users.User{ID: "u2", Username: "ANNA", Email: "x@example.com"}); !errors.Is(err, users.ErrConflict) {
		t.Fatalf("expected ErrConflict for username, got %v", err)
	}
	if err := repo.Create(ctx, users.User{ID: "u3", Username: "bob", Email: "Anna@example.com"}); !errors.Is(err, users.ErrConflict) {
		t.Fatalf("expected ErrConflict for email, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func ids(items []activities.Activity) string {
	out := ""
	for i, a := range items {
		if i > 0 {
			out += ","
		}
		out += a.ID
	}
	return out
}
