// internal/store/memory.go
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"application-workers/internal/models"
)

// userLockPrefix keeps per-user lock keys apart from application ids.
const userLockPrefix = "user:"

// MemoryStore keeps applications in process. Mutations on the same id are
// serialized by a per-id mutex; different ids proceed in parallel.
type MemoryStore struct {
	mu    sync.RWMutex
	apps  map[string]*models.Application
	locks map[string]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		apps:  make(map[string]*models.Application),
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) Create(ctx context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apps[app.ID]; exists {
		return fmt.Errorf("application %s already exists", app.ID)
	}
	s.apps[app.ID] = app.Clone()
	return nil
}

// CreateUnique holds a per-user mutex across the duplicate check and the
// insert.
func (s *MemoryStore) CreateUnique(ctx context.Context, app *models.Application, blocks BlockFunc) (*models.Application, error) {
	lock := s.lockFor(userLockPrefix + app.UserID)
	lock.Lock()
	defer lock.Unlock()

	if blocks != nil {
		existing, err := s.ListByUser(ctx, app.UserID)
		if err != nil {
			return nil, err
		}
		if blocking := blocks(existing); blocking != nil {
			return blocking, nil
		}
	}
	return nil, s.Create(ctx, app)
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, ErrNotFound
	}
	return app.Clone(), nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]*models.Application, error) {
	return s.List(ctx, ListFilter{UserID: userID})
}

func (s *MemoryStore) List(ctx context.Context, filter ListFilter) ([]*models.Application, error) {
	s.mu.RLock()
	var cursor *models.Application
	if filter.After != "" {
		c, ok := s.apps[filter.After]
		if !ok {
			s.mu.RUnlock()
			return nil, fmt.Errorf("%w: %s", ErrCursorNotFound, filter.After)
		}
		cursor = c
	}

	all := make([]*models.Application, 0, len(s.apps))
	for _, app := range s.apps {
		if filter.UserID != "" && app.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		if cursor != nil && !newerFirst(cursor, app) {
			continue
		}
		all = append(all, app.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return newerFirst(all[i], all[j])
	})

	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}

// newerFirst orders by (createdAt, id) descending, the same order as the
// postgres listing.
func newerFirst(a, b *models.Application) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (s *MemoryStore) Mutate(ctx context.Context, id string, fn MutateFunc) (*models.Application, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	current, ok := s.apps[id]
	s.mu.RUnlock()
	if !ok {
		fn(nil)
		return nil, nil
	}

	next := current.Clone()
	changes := fn(current.Clone())
	if len(changes) == 0 {
		return next, nil
	}
	if err := next.Apply(changes); err != nil {
		return nil, fmt.Errorf("apply changes to %s: %w", id, err)
	}

	s.mu.Lock()
	s.apps[id] = next
	s.mu.Unlock()
	return next.Clone(), nil
}

func (s *MemoryStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
