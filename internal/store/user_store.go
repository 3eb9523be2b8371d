package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/evently/evently/internal/domain"
	"github.com/evently/evently/internal/password"
	"github.com/spf13/afero"
)

// UserStore owns the user collection. Mutations are serialized with a mutex
// so two concurrent writers cannot interleave between the in-memory change
// and the file rewrite; without it the last writer would silently win.
type UserStore struct {
	fs     afero.Fs
	path   string
	hasher password.Hasher

	mu     sync.Mutex
	users  []domain.User
	nextID int64
}

// var _ ensures UserStore satisfies the repository contract at compile time.
var _ domain.UserRepository = (*UserStore)(nil)

// NewUserStore loads the user collection from path and resumes id assignment
// at max(existing ids)+1. A missing file starts an empty collection.
func NewUserStore(fs afero.Fs, path string, hasher password.Hasher) (*UserStore, error) {
	users, err := loadCollection[domain.User](fs, path)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	nextID := int64(1)
	for _, u := range users {
		if u.ID >= nextID {
			nextID = u.ID + 1
		}
	}

	return &UserStore{fs: fs, path: path, hasher: hasher, users: users, nextID: nextID}, nil
}

// Create appends a new user and persists the collection. Email uniqueness is
// advisory: callers are expected to check FindByEmail first, the store does
// not enforce it. The returned copy has the password hash cleared.
func (s *UserStore) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	user := domain.User{
		ID:               s.nextID,
		Name:             name,
		Email:            domain.NormalizeEmail(email),
		Password:         passwordHash,
		RegisteredEvents: []int64{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.nextID++
	s.users = append(s.users, user)

	if err := s.persistLocked(); err != nil {
		return nil, err
	}

	out := cloneUser(&user)
	out.Password = ""
	return out, nil
}

// FindByEmail returns the user with the given (case-insensitive) email, or
// domain.ErrNotFound.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for i := range s.users {
		if s.users[i].Email == email {
			return cloneUser(&s.users[i]), nil
		}
	}
	return nil, domain.ErrNotFound
}

// FindByID returns the user with the given id, or domain.ErrNotFound.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findLocked(id)
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return cloneUser(u), nil
}

// All returns every user in insertion order.
func (s *UserStore) All(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.User, len(s.users))
	for i := range s.users {
		out[i] = *cloneUser(&s.users[i])
	}
	return out, nil
}

// Update merges the non-nil fields into the user and refreshes UpdatedAt.
func (s *UserStore) Update(ctx context.Context, id int64, upd domain.UserUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findLocked(id)
	if u == nil {
		return nil, domain.ErrNotFound
	}

	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = domain.NormalizeEmail(*upd.Email)
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return cloneUser(u), nil
}

// Delete removes the user from the collection.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.users, func(u domain.User) bool { return u.ID == id })
	if idx < 0 {
		return domain.ErrNotFound
	}
	s.users = slices.Delete(s.users, idx, idx+1)
	return s.persistLocked()
}

// AddRegisteredEvent appends an event id to the user's registration list.
// Adding an id that is already present is a no-op, not an error.
func (s *UserStore) AddRegisteredEvent(ctx context.Context, userID, eventID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findLocked(userID)
	if u == nil {
		return domain.ErrNotFound
	}
	if u.HasRegisteredEvent(eventID) {
		return nil
	}
	u.RegisteredEvents = append(u.RegisteredEvents, eventID)
	u.UpdatedAt = time.Now().UTC()
	return s.persistLocked()
}

// RemoveRegisteredEvent removes an event id from the user's registration
// list. Removing an id that is absent is a no-op.
func (s *UserStore) RemoveRegisteredEvent(ctx context.Context, userID, eventID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findLocked(userID)
	if u == nil {
		return domain.ErrNotFound
	}
	idx := slices.Index(u.RegisteredEvents, eventID)
	if idx < 0 {
		return nil
	}
	u.RegisteredEvents = slices.Delete(u.RegisteredEvents, idx, idx+1)
	u.UpdatedAt = time.Now().UTC()
	return s.persistLocked()
}

// ValidatePassword reports whether the plaintext matches the user's stored
// hash. Any failure, including an unknown id, counts as a mismatch rather
// than an error so callers cannot distinguish a missing account from a bad
// password.
func (s *UserStore) ValidatePassword(ctx context.Context, id int64, plain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findLocked(id)
	if u == nil {
		return false
	}
	return s.hasher.Verify(u.Password, plain)
}

// ChangePassword rehashes the new plaintext and persists it.
func (s *UserStore) ChangePassword(ctx context.Context, id int64, newPlain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findLocked(id)
	if u == nil {
		return domain.ErrNotFound
	}

	hash, err := s.hasher.Hash(newPlain)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = hash
	u.UpdatedAt = time.Now().UTC()
	return s.persistLocked()
}

func (s *UserStore) findLocked(id int64) *domain.User {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i]
		}
	}
	return nil
}

func (s *UserStore) persistLocked() error {
	return saveCollection(s.fs, s.path, s.users)
}

func cloneUser(u *domain.User) *domain.User {
	out := *u
	out.RegisteredEvents = slices.Clone(u.RegisteredEvents)
	return &out
}
