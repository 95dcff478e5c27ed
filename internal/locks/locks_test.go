package locks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/localnerve/plansdb/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKey(t *testing.T) {
	assert.Equal(t, "plan:1:procedure:2", PairKey(1, 2))
	assert.NotEqual(t, PairKey(1, 23), PairKey(12, 3))
}

func TestNoopHonorsCancelledContext(t *testing.T) {
	release, err := Noop{}.Acquire(context.Background(), "k")
	require.NoError(t, err)
	release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Noop{}.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalSerializesSameKey(t *testing.T) {
	l := NewLocal()
	var active, maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), PairKey(1, 2))
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Zero(t, l.Len())
}

func TestLocalDifferentKeysDoNotBlock(t *testing.T) {
	l := NewLocal()
	release, err := l.Acquire(context.Background(), PairKey(1, 2))
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	other, err := l.Acquire(ctx, PairKey(1, 3))
	require.NoError(t, err)
	other()
}

func TestLocalWaiterGivesUpOnCancel(t *testing.T) {
	l := NewLocal()
	release, err := l.Acquire(context.Background(), "busy")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "busy")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release()
	assert.Zero(t, l.Len())

	again, err := l.Acquire(context.Background(), "busy")
	require.NoError(t, err)
	again()
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{DBType: "postgres", LockMode: config.LockModeAuto}
	locker, closeFn, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, locker)
	assert.NoError(t, closeFn())

	cfg.DBType = "sqlite"
	locker, _, err = FromConfig(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Local{}, locker)

	cfg.LockMode = config.LockModeRedis
	cfg.RedisURL = "redis://localhost:6379/2"
	locker, closeFn, err = FromConfig(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, locker)
	assert.NoError(t, closeFn())

	cfg.RedisURL = "http://nope"
	_, _, err = FromConfig(cfg)
	assert.Error(t, err)
}
