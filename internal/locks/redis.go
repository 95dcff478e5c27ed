package locks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/plansdb/internal/logging"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const releaseTimeout = 2 * time.Second

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis is a distributed keyed lock for deployments running several
// instances over a store without row locks.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

// NewRedis creates a lock over client. ttl bounds how long a crashed holder
// keeps the key, retry is the polling interval while waiting. The lease is
// not renewed: a holder running longer than ttl loses exclusivity, so ttl
// must exceed the longest reconcile transaction.
func NewRedis(client *redis.Client, prefix string, ttl, retry time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl, retry: retry}
}

// NewRedisFromURL parses a redis:// URL and creates the lock
func NewRedisFromURL(url, prefix string, ttl, retry time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return NewRedis(redis.NewClient(opts), prefix, ttl, retry), nil
}

// Client exposes the underlying client for health checks and shutdown
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Ping checks the redis connection with a protocol round trip
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Acquire polls SET NX until the key is ours or ctx is done
func (r *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	name := r.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, name, token, r.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("acquire lock %s: %w", name, err)
		}
		if ok {
			return r.release(logging.FromContext(ctx), name, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Redis) release(log *logrus.Entry, name, token string) Release {
	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be cancelled, the key must still go.
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			deleted, err := releaseScript.Run(ctx, r.client, []string{name}, token).Int()
			if err != nil {
				log.WithError(err).WithField("lock", name).Error("failed to release lock")
				return
			}
			if deleted == 0 {
				log.WithField("lock", name).Warn("lock expired before release")
			}
		})
	}
}
