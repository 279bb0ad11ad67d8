package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/casedesk/session-guard/internal/core/domain"
	"github.com/casedesk/session-guard/internal/core/ports"
)

// UsersKey is the store key holding the JSON array of user records.
const UsersKey = "casedesk_users"

// UserRepository keeps every user record in one JSON array under UsersKey.
// The read-modify-write in Create is serialised per repository instance.
type UserRepository struct {
	mu    sync.Mutex
	store ports.KeyValueStore
}

func NewUserRepository(store ports.KeyValueStore) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for i := range users {
		if users[i].Email == email {
			u := users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}

	created := *user
	users = append(users, created)

	data, err := json.Marshal(users)
	if err != nil {
		return nil, fmt.Errorf("encode users: %w", err)
	}
	if err := r.store.Set(ctx, UsersKey, string(data)); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}
	return &created, nil
}

// List returns every stored user in insertion order.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.load(ctx)
}

func (r *UserRepository) load(ctx context.Context) ([]domain.User, error) {
	raw, ok, err := r.store.Get(ctx, UsersKey)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var users []domain.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}
