package identity

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used when no database is configured
// (local development) and by unit tests. It enforces the same uniqueness
// contract as the Postgres store.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]User
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		users:  make(map[int64]User),
	}
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (User, error) {
	const op = "identity.FindByEmail"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	email = NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, NotFoundError{Op: op, Resource: "user"}
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (User, error) {
	const op = "identity.FindByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return u, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	in, err := validateCreate(op, in)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Uniqueness is checked under the same lock that performs the insert, so
	// concurrent creates for one identifier serialize here like they would on
	// the database constraint.
	for _, u := range s.users {
		if u.Email == in.Email {
			return User{}, ConflictError{Op: op, Field: "email"}
		}
		if u.Username == in.Username {
			return User{}, ConflictError{Op: op, Field: "username"}
		}
	}

	now := time.Now().UTC()
	u := User{
		ID:           s.nextID,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FullName:     in.FullName,
		Bio:          in.Bio,
		AvatarURL:    in.AvatarURL,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.nextID++
	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (User, error) {
	const op = "identity.UpdateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if err := validateUpdate(op, in); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}

	if in.PasswordHash != nil {
		u.PasswordHash = in.PasswordHash
	}
	if in.FullName != nil {
		u.FullName = in.FullName
	}
	if in.Bio != nil {
		u.Bio = in.Bio
	}
	if in.AvatarURL != nil {
		u.AvatarURL = in.AvatarURL
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	u.UpdatedAt = time.Now().UTC()

	s.users[id] = u
	return u, nil
}
