package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ledgerly/apiserver/internal/store"
	"github.com/ledgerly/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users  map[int64]types.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]types.User)}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user, nil
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password string) types.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := repo.Create(context.Background(), types.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: string(hashed),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	service := NewUserService(newFakeUserRepo())

	_, err := service.Authenticate(context.Background(), "a@b.com", "x")
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if authErr.Message != "user not found" {
		t.Fatalf("expected %q, got %q", "user not found", authErr.Message)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "a@b.com", "secret")
	service := NewUserService(repo)

	_, err := service.Authenticate(context.Background(), "a@b.com", "wrong")
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if authErr.Message != "invalid password" {
		t.Fatalf("expected %q, got %q", "invalid password", authErr.Message)
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	seeded := seedUser(t, repo, "a@b.com", "secret")
	service := NewUserService(repo)

	user, err := service.Authenticate(context.Background(), "a@b.com", "secret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != seeded.ID {
		t.Fatalf("expected user %d, got %d", seeded.ID, user.ID)
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewUserService(repo)

	user, err := service.Register(context.Background(), types.User{
		Name:  "Alice",
		Email: "alice@example.com",
	}, "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if user.PasswordHash == "hunter2" || user.PasswordHash == "" {
		t.Fatalf("expected hashed password, got %q", user.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewUserService(repo)

	first, err := service.Register(context.Background(), types.User{Name: "Alice", Email: "dup@example.com"}, "pw1")
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	if first.ID == 0 {
		t.Fatalf("expected assigned id for first registration")
	}

	_, err = service.Register(context.Background(), types.User{Name: "Bob", Email: "dup@example.com"}, "pw2")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Message != "email already registered" {
		t.Fatalf("expected duplicate email message, got %q", validationErr.Message)
	}
}

func TestEmailAvailable(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "taken@example.com", "pw")
	service := NewUserService(repo)

	available, err := service.EmailAvailable(context.Background(), "taken@example.com")
	if err != nil {
		t.Fatalf("email available: %v", err)
	}
	if available {
		t.Fatalf("expected taken email to be unavailable")
	}

	available, err = service.EmailAvailable(context.Background(), "free@example.com")
	if err != nil {
		t.Fatalf("email available: %v", err)
	}
	if !available {
		t.Fatalf("expected free email to be available")
	}
}
