package locks

import (
	"context"
	"fmt"
	"sync"
)

// Release gives a lock back. Calling it more than once is a no-op.
type Release func()

// Locker provides mutual exclusion keyed by string
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// PairKey is the lock key for a plan procedure pair
func PairKey(planID, procedureID int64) string {
	return fmt.Sprintf("plan:%d:procedure:%d", planID, procedureID)
}

// Noop is used when the store transaction already serializes writers
type Noop struct{}

// Acquire returns immediately unless ctx is already done
func (Noop) Acquire(ctx context.Context, _ string) (Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return func() {}, nil
}

// Local is an in-process keyed mutex. Waiters on different keys never block
// each other, and idle keys are dropped.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

// NewLocal creates an empty keyed mutex
func NewLocal() *Local {
	return &Local{entries: make(map[string]*entry)}
}

// Acquire blocks until key is free or ctx is done
func (l *Local) Acquire(ctx context.Context, key string) (Release, error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.sem
				l.unref(key, e)
			})
		}, nil
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	}
}

// Len returns the number of keys held or waited on
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Local) unref(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}
