// internal/store/redis_lock.go
package store

import (
	"context"
	"fmt"
	"time"

	"application-workers/internal/common/logger"
	"application-workers/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const (
	lockKeyPrefix     = "application:lock:"
	userLockKeyPrefix = "application:user:"
)

// LockOptions bounds how long a lock is held and waited for.
type LockOptions struct {
	TTL   time.Duration
	Wait  time.Duration
	Retry time.Duration
}

// LockingStore serializes Mutate per application id, and CreateUnique per
// owner, across processes by holding a redis lock around the wrapped call.
type LockingStore struct {
	Store
	client   *redis.Client
	opts     LockOptions
	release  *redis.Script
	newToken func() string
	logger   logger.Logger
}

func NewLockingStore(inner Store, client *redis.Client, opts LockOptions, log logger.Logger) *LockingStore {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Second
	}
	if opts.Retry <= 0 {
		opts.Retry = 50 * time.Millisecond
	}
	return &LockingStore{
		Store:    inner,
		client:   client,
		opts:     opts,
		release:  redis.NewScript(releaseLockScript),
		newToken: func() string { return uuid.New().String() },
		logger:   log,
	}
}

func (s *LockingStore) Mutate(ctx context.Context, id string, fn MutateFunc) (*models.Application, error) {
	key := lockKeyPrefix + id
	token := s.newToken()

	if err := s.acquire(ctx, key, token); err != nil {
		return nil, err
	}
	defer s.unlock(key, token)

	return s.Store.Mutate(ctx, id, fn)
}

func (s *LockingStore) CreateUnique(ctx context.Context, app *models.Application, blocks BlockFunc) (*models.Application, error) {
	key := userLockKeyPrefix + app.UserID
	token := s.newToken()

	if err := s.acquire(ctx, key, token); err != nil {
		return nil, err
	}
	defer s.unlock(key, token)

	return s.Store.CreateUnique(ctx, app, blocks)
}

func (s *LockingStore) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(s.opts.Wait)
	for {
		ok, err := s.client.SetNX(ctx, key, token, s.opts.TTL).Result()
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
		case <-time.After(s.opts.Retry):
		}
	}
}

func (s *LockingStore) unlock(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.release.Run(ctx, s.client, []string{key}, token).Err(); err != nil {
		s.logger.Warn("failed to release application lock", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}
