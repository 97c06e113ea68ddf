package admission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_KeyedMutex_DistinctKeysDoNotContend(t *testing.T) {
	km := newKeyedMutex()
	ctx := context.Background()

	unlockA, err := km.lock(ctx, "a")
	require.NoError(t, err)
	defer unlockA()

	// With "a" still held, "b" must be acquirable immediately.
	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockB, err := km.lock(ctx2, "b")
	require.NoError(t, err)
	unlockB()
}

func Test_KeyedMutex_SameKeySerializes(t *testing.T) {
	km := newKeyedMutex()
	ctx := context.Background()

	unlock, err := km.lock(ctx, "a")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		unlock2, err := km.lock(ctx, "a")
		assert.NoError(t, err)
		unlock2()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired the lock while it was held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second holder never acquired the lock after release")
	}
}

func Test_KeyedMutex_CancelledAcquisition(t *testing.T) {
	km := newKeyedMutex()

	unlock, err := km.lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = km.lock(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}
