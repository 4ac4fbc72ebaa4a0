package users

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"petlink/internal/ports/auth"

	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	mu   sync.Mutex
	byID map[string]User
}

func newFakeRepo() *fakeRepo { return &fakeRepo{byID: map[string]User{}} }

func (r *fakeRepo) Create(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = u
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return ErrNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) find(match func(User) bool) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if match(u) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	return r.find(func(u User) bool { return u.Username == username })
}

func (r *fakeRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.find(func(u User) bool { return u.Email == email })
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(ctx context.Context, c auth.Claims) (string, time.Time, error) {
	return "token-" + c.UserID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func newTestService() *Service {
	svc := NewService(newFakeRepo(), fakeIssuer{})
	svc.cost = bcrypt.MinCost
	return svc
}

func registerInput() RegisterInput {
	return RegisterInput{
		Username:        "anna",
		Email:           "Anna@Example.com",
		Password:        "s3cret-pass",
		PasswordConfirm: "s3cret-pass",
		FirstName:       "Anna",
	}
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, err := svc.Register(ctx, registerInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.User.Email != "anna@example.com" {
		t.Fatalf("expected normalized email, got %q", sess.User.Email)
	}
	if sess.User.PasswordHash == "s3cret-pass" || sess.Token != "token-"+sess.User.ID {
		t.Fatalf("unexpected session %+v", sess)
	}

	if _, err := svc.Login(ctx, "anna", "s3cret-pass"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Login(ctx, "anna", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "s3cret-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	email, err := svc.EmailOf(ctx, sess.User.ID)
	if err != nil || email != "anna@example.com" {
		t.Fatalf("EmailOf = %q, %v", email, err)
	}
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	mismatch := registerInput()
	mismatch.PasswordConfirm = "other-pass"
	if _, err := svc.Register(ctx, mismatch); !errors.Is(err, ErrInvalidInput) || !strings.Contains(err.Error(), "do not match") {
		t.Fatalf("expected passwords mismatch error, got %v", err)
	}

	short := registerInput()
	short.Password, short.PasswordConfirm = "short", "short"
	if _, err := svc.Register(ctx, short); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}

	long := registerInput()
	long.Password = strings.Repeat("p", 80)
	long.PasswordConfirm = long.Password
	if _, err := svc.Register(ctx, long); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for password over 72 bytes, got %v", err)
	}

	badEmail := registerInput()
	badEmail.Email = "not-an-email"
	if _, err := svc.Register(ctx, badEmail); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad email, got %v", err)
	}

	if _, err := svc.Register(ctx, registerInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	dupUser := registerInput()
	dupUser.Email = "other@example.com"
	if _, err := svc.Register(ctx, dupUser); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicated username, got %v", err)
	}
	dupEmail := registerInput()
	dupEmail.Username = "anna2"
	if _, err := svc.Register(ctx, dupEmail); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicated email, got %v", err)
	}
}

func TestService_UpdateProfile(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, err := svc.Register(ctx, registerInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	last := "  Petrova "
	u, err := svc.UpdateProfile(ctx, sess.User.ID, ProfileInput{LastName: &last})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if u.LastName != "Petrova" || u.FirstName != "Anna" {
		t.Fatalf("unexpected profile %+v", u)
	}

	if _, err := svc.UpdateProfile(ctx, "missing", ProfileInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
