package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
)

// releaseScript deletes the lock key only if this process still owns it, so
// a lock that expired and was re-acquired elsewhere is never released by the
// stale holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis serializes per-application mutations across server replicas using a
// token-guarded SET NX lock. Use it when more than one instance writes to
// the same database; a single instance gets the same guarantee cheaper from
// the Sharded locker.
type Redis struct {
	client     *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
	timeout    time.Duration
}

type RedisOption func(*Redis)

// WithTTL overrides how long a held lock survives a crashed holder.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// WithAcquireTimeout bounds how long Do waits for a contended lock.
func WithAcquireTimeout(timeout time.Duration) RedisOption {
	return func(r *Redis) {
		r.timeout = timeout
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client:     client,
		ttl:        10 * time.Second,
		retryDelay: 25 * time.Millisecond,
		timeout:    defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Do(ctx context.Context, applicationID id.ApplicationID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "mutation aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	key := "origo:lock:application:" + applicationID.String()
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "acquire application lock")
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for application lock")
		case <-time.After(r.retryDelay):
		}
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, r.client, []string{key}, token).Err()
	}()

	return fn(ctx)
}
