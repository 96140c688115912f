package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
)

func TestSharded_SerializesSameApplication(t *testing.T) {
	locker := NewSharded(0)
	appID := id.NewApplicationID()

	counter := 0
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.Do(context.Background(), appID, func(context.Context) error {
				// Unsynchronized increment; the locker is the only guard.
				v := counter
				time.Sleep(time.Microsecond)
				counter = v + 1
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter, "all increments must be serialized")
}

func TestSharded_PropagatesCallbackError(t *testing.T) {
	locker := NewSharded(0)
	want := errors.New("boom")

	err := locker.Do(context.Background(), id.NewApplicationID(), func(context.Context) error {
		return want
	})

	assert.ErrorIs(t, err, want)
}

func TestSharded_CancelledContext(t *testing.T) {
	locker := NewSharded(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := locker.Do(ctx, id.NewApplicationID(), func(context.Context) error {
		t.Fatal("callback must not run with a cancelled context")
		return nil
	})

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}

func TestSharded_AppliesDefaultDeadline(t *testing.T) {
	locker := NewSharded(time.Second)

	err := locker.Do(context.Background(), id.NewApplicationID(), func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "callback context should carry the lock timeout")
		return nil
	})
	require.NoError(t, err)
}

func TestHashString_Distributes(t *testing.T) {
	seen := make(map[uint32]bool)
	for _, s := range []string{"a", "b", "c", "ab", "ba", ""} {
		seen[hashString(s)] = true
	}
	assert.Greater(t, len(seen), 4, "distinct keys should mostly hash apart")
}
