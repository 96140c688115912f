// Package lock serializes status-changing operations per application.
//
// Every writer runs inside Locker.Do for its application, so two staff
// members acting on the same application queue up instead of racing. Reads
// never take the lock, and timeline appends rely on store-side atomic
// sequence assignment instead.
package lock

import (
	"context"
	"sync"
	"time"

	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
)

// Locker runs fn while holding the mutation lock for one application.
type Locker interface {
	Do(ctx context.Context, applicationID id.ApplicationID, fn func(ctx context.Context) error) error
}

// Sharded distributes per-application locks across N shards keyed by a hash
// of the application ID. Instead of a single global lock, contention is
// limited to applications that happen to share a shard.
const numShards = 128

// defaultLockTimeout bounds how long a mutation may hold or wait for a shard.
const defaultLockTimeout = 5 * time.Second

type Sharded struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

// NewSharded builds the in-process locker. A zero timeout uses the default.
func NewSharded(timeout time.Duration) *Sharded {
	return &Sharded{timeout: timeout}
}

func (l *Sharded) Do(ctx context.Context, applicationID id.ApplicationID, fn func(ctx context.Context) error) error {
	// Check if context is already cancelled
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "mutation aborted: context cancelled")
	}

	// Apply timeout if not already set
	timeout := l.timeout
	if timeout == 0 {
		timeout = defaultLockTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := int(hashString(applicationID.String()) % numShards)
	l.shards[shard].Lock()
	defer l.shards[shard].Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "mutation aborted: context cancelled")
	}

	return fn(ctx)
}

// hashString uses FNV-1a for better hash distribution than simple multiply-add.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
