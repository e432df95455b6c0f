package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/joshemcr2/users-api/internal/users"
)

// The Repo interface allows read and write access
type Repo interface {
	Reader
	Writer
}

// The Writer interface allows other services to
// write to the database without read access.
type Writer interface {
	// CreateUser adds a new user and returns it with its assigned id.
	CreateUser(ctx context.Context, username string) (users.User, error)
	// UpdateUser overwrites the username of an existing user.
	UpdateUser(ctx context.Context, id int64, username string) (users.User, error)
	// DeleteUser removes a user and returns its last known state.
	DeleteUser(ctx context.Context, id int64) (users.User, error)
}

// The Reader interface allows other services to
// read from the database without write access.
type Reader interface {
	ListUsers(ctx context.Context) ([]users.User, error)
	GetUser(ctx context.Context, id int64) (users.User, error)
}

// New in-memory ReadWriter
func New() Repo {
	return &repo{
		m: make(map[int64]users.User),
	}
}

type repo struct {
	mu sync.Mutex
	// m is a map of id to user
	m      map[int64]users.User
	lastID int64
}

func (r *repo) ListUsers(ctx context.Context) ([]users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	us := make([]users.User, 0, len(r.m))
	for _, u := range r.m {
		us = append(us, u)
	}

	sort.Slice(us, func(i, j int) bool { return us[i].ID < us[j].ID })
	return us, nil
}

func (r *repo) GetUser(ctx context.Context, id int64) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.m[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *repo) CreateUser(ctx context.Context, username string) (users.User, error) {
	if err := users.ValidateUsername(username); err != nil {
		return users.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	u := users.User{ID: r.lastID, Username: username}
	r.m[u.ID] = u
	return u, nil
}

func (r *repo) UpdateUser(ctx context.Context, id int64, username string) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.m[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}

	if err := users.ValidateUsername(username); err != nil {
		return users.User{}, err
	}

	u.Username = username
	r.m[id] = u
	return u, nil
}

func (r *repo) DeleteUser(ctx context.Context, id int64) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.m[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}

	delete(r.m, id)
	return u, nil
}
