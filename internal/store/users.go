// internal/store/users.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"application-workers/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserDirectory resolves notification recipients.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type PostgresUserDirectory struct {
	db *sql.DB
}

func NewPostgresUserDirectory(db *sql.DB) *PostgresUserDirectory {
	return &PostgresUserDirectory{db: db}
}

func (d *PostgresUserDirectory) GetUser(ctx context.Context, id string) (*models.User, error) {
	var (
		user      models.User
		firstName sql.NullString
	)
	err := d.db.QueryRowContext(ctx, `SELECT id, email, first_name FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Email, &firstName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user %s: %w", id, err)
	}
	user.FirstName = firstName.String
	return &user, nil
}

type MemoryUserDirectory struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserDirectory(users ...models.User) *MemoryUserDirectory {
	d := &MemoryUserDirectory{users: make(map[string]models.User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *MemoryUserDirectory) GetUser(_ context.Context, id string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}
