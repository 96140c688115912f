//go:build integration

package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"origo/internal/application/lock"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/testutil/containers"
)

// TestRedisLockMutualExclusion proves two writers on the same application
// never hold the lock at once, which is the whole point of the distributed
// locker when several replicas share a database.
func TestRedisLockMutualExclusion(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	locker := lock.NewRedis(rc.Client, lock.WithTTL(5*time.Second))
	applicationID := id.NewApplicationID()

	var inside int32
	var overlaps int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.Do(context.Background(), applicationID, func(context.Context) error {
				if atomic.AddInt32(&inside, 1) > 1 {
					atomic.AddInt32(&overlaps, 1)
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlaps), "critical sections overlapped")
}

// TestRedisLockIndependentKeys verifies different applications do not
// contend with each other.
func TestRedisLockIndependentKeys(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	locker := lock.NewRedis(rc.Client, lock.WithTTL(5*time.Second))

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = locker.Do(context.Background(), id.NewApplicationID(), func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	done := make(chan error, 1)
	go func() {
		done <- locker.Do(context.Background(), id.NewApplicationID(), func(context.Context) error {
			return nil
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("unrelated application blocked on a foreign lock")
	}
}

// TestRedisLockAcquireTimeout verifies a contended writer gives up with a
// timeout error instead of waiting forever.
func TestRedisLockAcquireTimeout(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	locker := lock.NewRedis(rc.Client,
		lock.WithTTL(10*time.Second),
		lock.WithAcquireTimeout(300*time.Millisecond),
	)
	applicationID := id.NewApplicationID()

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = locker.Do(context.Background(), applicationID, func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	err := locker.Do(context.Background(), applicationID, func(context.Context) error {
		t.Error("should never enter the critical section while contended")
		return nil
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout), "got %v", err)
}

// TestRedisLockReusableAfterRelease verifies sequential writers take turns
// without waiting for the TTL.
func TestRedisLockReusableAfterRelease(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	locker := lock.NewRedis(rc.Client, lock.WithTTL(30*time.Second))
	applicationID := id.NewApplicationID()

	start := time.Now()
	for i := 0; i < 5; i++ {
		err := locker.Do(context.Background(), applicationID, func(context.Context) error { return nil })
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 5*time.Second, "release must free the lock immediately, not on TTL expiry")
}
