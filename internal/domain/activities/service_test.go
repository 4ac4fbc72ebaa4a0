package activities

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"petlink/internal/domain/activities/details"
	"petlink/internal/domain/reminders"

	"cloud.google.com/go/civil"
)

type fakeRepo struct {
	mu   sync.Mutex
	byID map[string]Activity
}

func newFakeRepo() *fakeRepo { return &fakeRepo{byID: map[string]Activity{}} }

func (r *fakeRepo) Create(ctx context.Context, a Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = a
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return Activity{}, ErrNotFound
	}
	return a, nil
}

func (r *fakeRepo) ListByPet(ctx context.Context, petID string, f ListFilter) ([]Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Activity
	for _, a := range r.byID {
		if a.PetID == petID && f.Match(a) {
			out = append(out, a)
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

type fakeScheduler struct {
	got []reminders.ScheduledActivity
	ok  bool
	err error
}

func (s *fakeScheduler) Schedule(ctx context.Context, a reminders.ScheduledActivity) (reminders.NotificationJob, bool, error) {
	s.got = append(s.got, a)
	if s.err != nil {
		return reminders.NotificationJob{}, false, s.err
	}
	if !s.ok {
		return reminders.NotificationJob{}, false, nil
	}
	return reminders.NotificationJob{FireAt: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)}, true, nil
}

type fakeRecipients map[string]string

func (f fakeRecipients) EmailOf(ctx context.Context, userID string) (string, error) {
	if e, ok := f[userID]; ok {
		return e, nil
	}
	return "", errors.New("user not found")
}

var (
	milo  = PetRef{ID: "pet-1", Name: "Milo", OwnerUserID: "owner-1"}
	owner = Actor{UserID: "owner-1", Email: "claims@example.com"}
)

func medicationInput() CreateInput {
	return CreateInput{
		Kind:       KindMedication,
		Date:       civil.Date{Year: 2025, Month: time.March, Day: 10},
		Time:       civil.Time{Hour: 10},
		Medication: &details.Medication{Name: "Amoxicillin", Dosage: "5ml"},
	}
}

func TestService_Create_SchedulesReminderAfterPersisting(t *testing.T) {
	repo := newFakeRepo()
	sched := &fakeScheduler{ok: true}
	svc := NewService(repo, sched, fakeRecipients{"owner-1": "owner@example.com"}, nil)

	a, rem, err := svc.Create(context.Background(), milo, owner, medicationInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), a.ID); err != nil {
		t.Fatalf("activity not persisted: %v", err)
	}
	if !rem.Scheduled || rem.FireAt.IsZero() {
		t.Fatalf("expected scheduled reminder, got %+v", rem)
	}
	if len(sched.got) != 1 {
		t.Fatalf("expected exactly one Schedule call, got %d", len(sched.got))
	}
	got := sched.got[0]
	if got.ActivityID != a.ID || got.SubjectName != "Milo" || got.RecipientEmail != "owner@example.com" {
		t.Fatalf("unexpected scheduled activity %+v", got)
	}
	if got.Details.Name != "Amoxicillin" || got.Details.Dosage != "5ml" {
		t.Fatalf("details not forwarded: %+v", got.Details)
	}
	if a.Medication.Frequency != 1 {
		t.Fatalf("expected default frequency 1, got %d", a.Medication.Frequency)
	}
}

func TestService_Create_SchedulingFailureDoesNotFailCreation(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeScheduler{err: errors.New("queue down")}, nil, nil)

	a, rem, err := svc.Create(context.Background(), milo, owner, medicationInput())
	if err != nil {
		t.Fatalf("creation must succeed, got %v", err)
	}
	if rem.Scheduled {
		t.Fatalf("expected no reminder")
	}
	if _, err := repo.GetByID(context.Background(), a.ID); err != nil {
		t.Fatalf("activity not persisted: %v", err)
	}
}

func TestService_Create_RecipientFallsBackToOwnerClaims(t *testing.T) {
	sched := &fakeScheduler{}
	svc := NewService(newFakeRepo(), sched, fakeRecipients{}, nil)

	if _, _, err := svc.Create(context.Background(), milo, owner, medicationInput()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sched.got[0].RecipientEmail != "claims@example.com" {
		t.Fatalf("expected owner claims email, got %q", sched.got[0].RecipientEmail)
	}

	// Staff creando para una mascota ajena: no se usa su email.
	staff := Actor{UserID: "vet-1", Email: "vet@example.com"}
	if _, _, err := svc.Create(context.Background(), milo, staff, medicationInput()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sched.got[1].RecipientEmail != "" {
		t.Fatalf("expected no recipient for staff-created activity, got %q", sched.got[1].RecipientEmail)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil, nil)
	ctx := context.Background()
	day := civil.Date{Year: 2025, Month: time.March, Day: 10}

	cases := map[string]CreateInput{
		"unknown kind":           {Kind: "grooming", Date: day, Time: civil.Time{Hour: 9}},
		"missing date":           {Kind: KindWalk, Time: civil.Time{Hour: 9}},
		"bad time":               {Kind: KindWalk, Date: day, Time: civil.Time{Hour: 25}},
		"medication w/o details": {Kind: KindMedication, Date: day, Time: civil.Time{Hour: 9}},
		"feeding w/o amount": {Kind: KindFeeding, Date: day, Time: civil.Time{Hour: 9},
			Feeding: &details.Feeding{FoodType: "dry"}},
		"walk with details": {Kind: KindWalk, Date: day, Time: civil.Time{Hour: 9},
			Feeding: &details.Feeding{FoodType: "dry", Amount: "100g"}},
		"details of other kind": {Kind: KindAppointment, Date: day, Time: civil.Time{Hour: 9},
			Appointment: &details.Appointment{Name: "Checkup"}, Feeding: &details.Feeding{FoodType: "dry", Amount: "1"}},
		"next due before date": {Kind: KindVaccination, Date: day, Time: civil.Time{Hour: 9},
			Vaccination: &details.Vaccination{Vaccine: "Rabies", NextDue: &civil.Date{Year: 2024, Month: time.March, Day: 10}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := svc.Create(ctx, milo, owner, in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	walk := CreateInput{Kind: KindWalk, Date: day, Time: civil.Time{Hour: 9}}
	if _, rem, err := svc.Create(ctx, milo, owner, walk); err != nil || rem.Scheduled {
		t.Fatalf("walk without scheduler: rem=%+v err=%v", rem, err)
	}
}

func TestService_GetAndDelete_ScopedToPet(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil, nil)
	ctx := context.Background()

	a, _, err := svc.Create(ctx, milo, owner, medicationInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.GetByID(ctx, "other-pet", a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound through another pet, got %v", err)
	}
	if err := svc.Delete(ctx, "other-pet", a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting through another pet, got %v", err)
	}
	if err := svc.Delete(ctx, milo.ID, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, milo.ID, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected activity gone, got %v", err)
	}
}

func TestService_ListByPet_RejectsInvertedRange(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil, nil)
	from := civil.Date{Year: 2025, Month: time.April, Day: 1}
	to := civil.Date{Year: 2025, Month: time.March, Day: 1}
	if _, err := svc.ListByPet(context.Background(), milo.ID, ListFilter{From: &from, To: &to}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseClock(t *testing.T) {
	for in, want := range map[string]civil.Time{
		"10:30":    {Hour: 10, Minute: 30},
		"07:05:09": {Hour: 7, Minute: 5, Second: 9},
	} {
		got, err := parseClock(in)
		if err != nil || got != want {
			t.Fatalf("parseClock(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := parseClock("25:00"); err == nil {
		t.Fatalf("expected error for invalid clock")
	}
}
