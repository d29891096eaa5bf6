package queue

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

func TestQueue_FIFO(t *testing.T) {
	q := New[int]()
	for i := range 200 {
		require.NoError(t, q.Push(i))
	}
	assert.Equal(t, 200, q.Len())

	for i := range 200 {
		v, st := q.TryPop()
		require.Equal(t, Ready, st)
		require.Equal(t, i, v)
	}

	_, st := q.TryPop()
	assert.Equal(t, Empty, st)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_InterleavedCompaction(t *testing.T) {
	q := New[int]()
	next := 0
	want := 0

	// Keep a sliding window alive so compaction shifts live values.
	for round := range 50 {
		for range 10 {
			require.NoError(t, q.Push(next))
			next++
		}
		for range 7 {
			v, st := q.TryPop()
			require.Equal(t, Ready, st, "round %d", round)
			require.Equal(t, want, v)
			want++
		}
	}

	for {
		v, st := q.TryPop()
		if st != Ready {
			break
		}
		require.Equal(t, want, v)
		want++
	}
	assert.Equal(t, next, want)
}

func TestQueue_CloseDrainsBeforeReportingClosed(t *testing.T) {
	q := New[string]()
	require.NoError(t, q.Push("a"))
	require.NoError(t, q.Push("b"))
	q.Close()
	q.Close()

	assert.True(t, q.IsClosed())
	assert.ErrorIs(t, q.Push("c"), ErrClosed)

	v, st := q.TryPop()
	require.Equal(t, Ready, st)
	assert.Equal(t, "a", v)

	v, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	_, st = q.TryPop()
	assert.Equal(t, Closed, st)

	_, err = q.Pop(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := New[int]()
	got := make(chan int, 1)

	go func() {
		v, err := q.Pop(context.Background())
		if err == nil {
			got <- v
		}
	}()

	select {
	case <-got:
		t.Fatal("Pop returned before anything was pushed")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, q.Push(42))

	select {
	case v := <-got:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up after Push")
	}
}

func TestQueue_PopContextCancelled(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestQueue_CloseWakesAllConsumers(t *testing.T) {
	q := New[int]()
	const consumers = 8

	var wg sync.WaitGroup
	var closedCount atomic.Int32
	for range consumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := q.Pop(context.Background()); errors.Is(err, ErrClosed) {
				closedCount.Add(1)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	q.Close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumers still parked after Close")
	}
	assert.Equal(t, int32(consumers), closedCount.Load())
}

func TestQueue_ConcurrentProducersConsumers(t *testing.T) {
	q := New[int]()
	const (
		producers   = 4
		consumers   = 6
		perProducer = 500
	)

	var seen sync.Map
	var consumed atomic.Int32
	var cwg sync.WaitGroup
	for range consumers {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				v, err := q.Pop(context.Background())
				if err != nil {
					return
				}
				if _, dup := seen.LoadOrStore(v, struct{}{}); dup {
					t.Errorf("value %d delivered twice", v)
				}
				consumed.Add(1)
			}
		}()
	}

	var pwg sync.WaitGroup
	for p := range producers {
		pwg.Add(1)
		go func() {
			defer pwg.Done()
			for i := range perProducer {
				_ = q.Push(p*perProducer + i)
			}
		}()
	}

	pwg.Wait()
	q.Close()
	cwg.Wait()

	assert.Equal(t, int32(producers*perProducer), consumed.Load())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "unknown", State(99).String())
}
