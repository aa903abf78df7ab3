package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Locker = (*MemoryLocker)(nil)
	_ Locker = (*DistributedLocker)(nil)
)

func TestLockerInterface(t *testing.T) {
	lockers := map[string]Locker{
		"memory":      NewMemoryLocker(),
		"distributed": NewDistributedLocker(newMemoryBackend(), time.Second, testLogger()),
	}

	for name, locker := range lockers {
		t.Run(name, func(t *testing.T) {
			unlock, err := locker.Lock(context.Background(), "invoice:abc")
			require.NoError(t, err)
			require.NotNil(t, unlock)
			unlock()
		})
	}
}

func TestMemoryLocker_SerialisesSameKey(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	var (
		active  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "invoice:1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
	assert.Equal(t, 0, locker.size())
}

func TestMemoryLocker_DifferentKeysDoNotBlock(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "a")
	require.NoError(t, err)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, err := locker.Lock(ctx, "b")
		if err == nil {
			unlockB()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestMemoryLocker_ContextCancelled(t *testing.T) {
	locker := NewMemoryLocker()

	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.Equal(t, 0, locker.size())
}

func TestMemoryLocker_UnlockIsIdempotent(t *testing.T) {
	locker := NewMemoryLocker()

	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
	unlock()

	unlock, err = locker.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
}

// memoryBackend is a shared lock table standing in for Redis or DynamoDB
type memoryBackend struct {
	mu       sync.Mutex
	owners   map[string]string
	tryErr   error
	unlocked []string
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{owners: make(map[string]string)}
}

func (b *memoryBackend) TryLock(_ context.Context, key, token string, _ time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tryErr != nil {
		return false, b.tryErr
	}
	if _, held := b.owners[key]; held {
		return false, nil
	}
	b.owners[key] = token
	return true, nil
}

func (b *memoryBackend) Unlock(_ context.Context, key, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owners[key] == token {
		delete(b.owners, key)
	}
	b.unlocked = append(b.unlocked, key)
	return nil
}

func (b *memoryBackend) holder(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.owners[key]
}

func TestDistributedLocker_ExcludesOtherReplicas(t *testing.T) {
	backend := newMemoryBackend()
	replicaA := NewDistributedLocker(backend, time.Minute, testLogger())
	replicaB := NewDistributedLocker(backend, time.Minute, testLogger())
	replicaB.pollInterval = 5 * time.Millisecond

	unlockA, err := replicaA.Lock(context.Background(), "invoice:1")
	require.NoError(t, err)
	require.NotEmpty(t, backend.holder("invoice:1"))

	acquired := make(chan struct{})
	go func() {
		unlockB, err := replicaB.Lock(context.Background(), "invoice:1")
		if err == nil {
			close(acquired)
			unlockB()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second replica acquired a held lock")
	case <-time.After(30 * time.Millisecond):
	}

	unlockA()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second replica never acquired the released lock")
	}
}

func TestDistributedLocker_GivesUpWhenContextDone(t *testing.T) {
	backend := newMemoryBackend()
	backend.owners["k"] = "someone-else"
	locker := NewDistributedLocker(backend, time.Minute, testLogger())
	locker.pollInterval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	_, err := locker.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, locker.local.size())
}

func TestDistributedLocker_BackendError(t *testing.T) {
	backend := newMemoryBackend()
	backend.tryErr = errors.New("connection refused")
	locker := NewDistributedLocker(backend, time.Minute, testLogger())

	_, err := locker.Lock(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 0, locker.local.size())
}
