// internal/store/store.go
package store

import (
	"context"
	"errors"

	"application-workers/internal/models"
)

var (
	ErrNotFound       = errors.New("application not found")
	ErrLockTimeout    = errors.New("timed out waiting for application lock")
	ErrCursorNotFound = errors.New("list cursor not found")
)

// MutateFunc inspects the current record (nil when it does not exist) and
// returns the changes to persist. Returning no changes skips the write.
type MutateFunc func(current *models.Application) models.Changes

// BlockFunc inspects an owner's existing applications and returns the one
// that prevents a new application, or nil.
type BlockFunc func(existing []*models.Application) *models.Application

// ListFilter narrows List. After is the id of the last item of the
// previous page; results are ordered newest first. An After that names no
// application fails with ErrCursorNotFound.
type ListFilter struct {
	UserID string
	Status string
	Limit  int
	After  string
}

// Store persists applications. Mutate must run the read, the callback and
// the write as one atomic step per application id.
type Store interface {
	Create(ctx context.Context, app *models.Application) error
	// CreateUnique runs blocks over the owner's applications and inserts app
	// only when it returns nil. The check and the insert are one step per
	// user id. The blocking application is returned when nothing was inserted.
	CreateUnique(ctx context.Context, app *models.Application, blocks BlockFunc) (*models.Application, error)
	GetByID(ctx context.Context, id string) (*models.Application, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Application, error)
	List(ctx context.Context, filter ListFilter) ([]*models.Application, error)
	Mutate(ctx context.Context, id string, fn MutateFunc) (*models.Application, error)
}
