package locks

import (
	"github.com/localnerve/plansdb/internal/config"
)

// KeyPrefix namespaces the redis lock keys
const KeyPrefix = "plansdb:lock:"

// FromConfig builds the locker for the resolved LOCK_MODE. The returned close
// function releases backend resources and is never nil.
func FromConfig(cfg *config.Config) (Locker, func() error, error) {
	switch cfg.ResolvedLockMode() {
	case config.LockModeRedis:
		r, err := NewRedisFromURL(cfg.RedisURL, KeyPrefix, cfg.LockTTL, cfg.LockRetry)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Client().Close, nil
	case config.LockModeLocal:
		return NewLocal(), func() error { return nil }, nil
	}
	return Noop{}, func() error { return nil }, nil
}
