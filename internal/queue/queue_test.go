package queue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueue_FIFOOrder(t *testing.T) {
	q := New()
	for i := 0; i < 5; i++ {
		_, err := q.Enqueue(&Message{Kind: KindDecode})
		require.NoError(t, err)
	}
	assert.Equal(t, 5, q.Size())

	var stopped atomic.Bool
	for i := 0; i < 5; i++ {
		msg, ok := q.Pop(stopped.Load)
		require.True(t, ok)
		require.NotNil(t, msg)
	}
	assert.Equal(t, 0, q.Size())
}

func TestEnqueue_AfterSealFails(t *testing.T) {
	q := New()
	q.Seal()
	assert.True(t, q.Sealed())

	_, err := q.Enqueue(&Message{Kind: KindDecode})
	assert.ErrorIs(t, err, ErrSealed)
}

func TestSeal_IsIdempotent(t *testing.T) {
	q := New()
	q.Seal()
	q.Seal() // must not panic or deadlock
	assert.True(t, q.Sealed())
}

func TestDrain_BlocksUntilEmpty(t *testing.T) {
	q := New()
	_, err := q.Enqueue(&Message{Kind: KindEncode})
	require.NoError(t, err)

	var drained atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		q.Drain()
		drained.Store(true)
	}()

	// Give Drain a chance to block before we consume.
	time.Sleep(10 * time.Millisecond)
	assert.False(t, drained.Load(), "drain must not return while a message is pending")

	var stopped atomic.Bool
	_, ok := q.Pop(stopped.Load)
	require.True(t, ok)

	wg.Wait()
	assert.True(t, drained.Load())
}

func TestClear_DiscardsPendingAndReleases(t *testing.T) {
	q := New()
	for i := 0; i < 3; i++ {
		_, err := q.Enqueue(&Message{Kind: KindDecode})
		require.NoError(t, err)
	}

	var released atomic.Int64
	q.Clear(func(msg *Message) {
		released.Add(1)
	})

	assert.Equal(t, 0, q.Size())
	assert.Equal(t, int64(3), released.Load())
}

func TestPop_WakesOnStop(t *testing.T) {
	q := New()
	var stopped atomic.Bool

	done := make(chan struct{})
	go func() {
		_, ok := q.Pop(stopped.Load)
		assert.False(t, ok)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	stopped.Store(true)
	q.WakeConsumer()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake on stop signal")
	}
}

func TestNewID_IsMonotoneAndUnique(t *testing.T) {
	q := New()
	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 50; i++ {
		id := q.NewID()
		assert.False(t, seen[id], "id must be unique")
		seen[id] = true
		if prev != "" {
			assert.Greater(t, id, prev, "ids minted from the same queue must sort monotonically")
		}
		prev = id
	}
}

func TestEnqueue_ConcurrentProducers(t *testing.T) {
	q := New()
	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := q.Enqueue(&Message{Kind: KindEncode})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, n, q.Size())
}
