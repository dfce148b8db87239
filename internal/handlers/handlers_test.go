package handlers

import (
	"context"
	"errors"

	"github.com/go-chi/chi/v5"
	"github.com/ledgerly/apiserver/internal/services"
	"github.com/ledgerly/apiserver/internal/store"
	"github.com/ledgerly/apiserver/types"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

type memUserRepo struct {
	users  map[int64]types.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int64]types.User)}
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) seed(email, password string) types.User {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user, _ := r.Create(context.Background(), types.User{
		Name:         "Seed User",
		Email:        email,
		PasswordHash: string(hashed),
	})
	return user
}

type memEntryRepo struct {
	entries map[int64]types.Entry
	nextID  int64
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: make(map[int64]types.Entry)}
}

func (r *memEntryRepo) Get(ctx context.Context, id int64) (types.Entry, error) {
	entry, ok := r.entries[id]
	if !ok {
		return types.Entry{}, store.ErrNotFound
	}
	return entry, nil
}

func (r *memEntryRepo) Create(ctx context.Context, entry types.Entry) (types.Entry, error) {
	r.nextID++
	entry.ID = r.nextID
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *memEntryRepo) Update(ctx context.Context, entry types.Entry) (types.Entry, error) {
	if _, ok := r.entries[entry.ID]; !ok {
		return types.Entry{}, store.ErrNotFound
	}
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *memEntryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.entries[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *memEntryRepo) Search(ctx context.Context, filter store.EntryFilter) ([]types.Entry, error) {
	entries := make([]types.Entry, 0)
	for _, entry := range r.entries {
		if entry.UserID != filter.UserID {
			continue
		}
		if filter.Month != 0 && entry.Month != filter.Month {
			continue
		}
		if filter.Year != 0 && entry.Year != filter.Year {
			continue
		}
		if filter.Type != "" && entry.Type != filter.Type {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *memEntryRepo) SumValueByUserAndType(ctx context.Context, userID int64, entryType types.EntryType) (decimal.Decimal, bool, error) {
	sum := decimal.Zero
	found := false
	for _, entry := range r.entries {
		if entry.UserID == userID && entry.Type == entryType {
			sum = sum.Add(entry.Value)
			found = true
		}
	}
	return sum, found, nil
}

type testEnv struct {
	router    *chi.Mux
	userRepo  *memUserRepo
	entryRepo *memEntryRepo
}

func newTestEnv() *testEnv {
	userRepo := newMemUserRepo()
	entryRepo := newMemEntryRepo()

	userService := services.NewUserService(userRepo)
	entryService := services.NewEntryService(entryRepo, nil)

	router := chi.NewRouter()
	router.Route("/entries", func(r chi.Router) {
		EntryRouter(r, entryService, userService, nil)
	})
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, userService, entryService, testJWTSecret)
	})

	return &testEnv{
		router:    router,
		userRepo:  userRepo,
		entryRepo: entryRepo,
	}
}
