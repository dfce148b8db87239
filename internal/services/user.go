package services

import (
	"context"
	"errors"

	"github.com/ledgerly/apiserver/internal/store"
	"github.com/ledgerly/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Authenticate verifies the credentials and returns the matching user.
// The password is compared against the stored bcrypt hash; the plaintext
// never touches the database.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, &AuthenticationError{Message: "user not found"}
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, &AuthenticationError{Message: "invalid password"}
	}

	return user, nil
}

// Register hashes the password and persists a new user. Registration is
// rejected when the email is already taken; two simultaneous registrations
// with the same email race at the unique index and the loser surfaces an
// opaque persistence error.
func (s *UserService) Register(ctx context.Context, user types.User, password string) (types.User, error) {
	available, err := s.EmailAvailable(ctx, user.Email)
	if err != nil {
		return types.User{}, err
	}
	if !available {
		return types.User{}, &ValidationError{Message: "email already registered"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}
	user.PasswordHash = string(hashed)

	return s.repo.Create(ctx, user)
}

// EmailAvailable reports whether no user is registered under the email.
func (s *UserService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
