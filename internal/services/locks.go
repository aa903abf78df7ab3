package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Locker serialises work on a single invoice. unlock must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// LockBackend is a shared lock store such as Redis or DynamoDB
type LockBackend interface {
	TryLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key, token string) error
}

// MemoryLocker is a keyed mutex for a single process
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedMutex
}

type keyedMutex struct {
	ch   chan struct{}
	refs int
}

// NewMemoryLocker creates an empty keyed mutex
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*keyedMutex)}
}

// Lock blocks until key is free or ctx is done
func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	km, ok := l.locks[key]
	if !ok {
		km = &keyedMutex{ch: make(chan struct{}, 1)}
		l.locks[key] = km
	}
	km.refs++
	l.mu.Unlock()

	select {
	case km.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, km)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-km.ch
			l.release(key, km)
		})
	}, nil
}

func (l *MemoryLocker) release(key string, km *keyedMutex) {
	l.mu.Lock()
	defer l.mu.Unlock()

	km.refs--
	if km.refs == 0 {
		delete(l.locks, key)
	}
}

// size reports how many keys are tracked
func (l *MemoryLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// DistributedLocker combines a local keyed mutex with a shared backend so
// replicas of the service exclude each other on the same invoice.
type DistributedLocker struct {
	local        *MemoryLocker
	backend      LockBackend
	ttl          time.Duration
	pollInterval time.Duration
	logger       *logrus.Logger
}

// NewDistributedLocker creates a locker whose backend entries expire after ttl
func NewDistributedLocker(backend LockBackend, ttl time.Duration, logger *logrus.Logger) *DistributedLocker {
	return &DistributedLocker{
		local:        NewMemoryLocker(),
		backend:      backend,
		ttl:          ttl,
		pollInterval: 50 * time.Millisecond,
		logger:       logger,
	}
}

// Lock acquires the local mutex, then polls the backend until it grants the
// lock or ctx is done.
func (l *DistributedLocker) Lock(ctx context.Context, key string) (func(), error) {
	unlockLocal, err := l.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.backend.TryLock(ctx, key, token, l.ttl)
		if err != nil {
			unlockLocal()
			return nil, fmt.Errorf("error acquiring lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			unlockLocal()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release even if the request context was cancelled meanwhile.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := l.backend.Unlock(releaseCtx, key, token); err != nil {
				l.logger.WithFields(logrus.Fields{
					"key":   key,
					"error": err.Error(),
				}).Warn("Failed to release lock, it will expire on its own")
			}
			unlockLocal()
		})
	}, nil
}

func invoiceLockKey(id uuid.UUID) string {
	return "invoice:" + id.String()
}
