package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueMsg(project string) Inbound {
	return Inbound{Command: CommandConvert, Project: project, Payload: []byte("[]")}
}

func TestMessageQueue_EnqueueDequeue(t *testing.T) {
	q := newMessageQueue()

	ok := q.Enqueue(queueMsg("p-1"))
	require.True(t, ok, "enqueue should succeed")

	got, ok := q.TryDequeue()
	require.True(t, ok, "dequeue should succeed")
	assert.Equal(t, CommandConvert, got.Command)
	assert.Equal(t, "p-1", got.Project)
}

func TestMessageQueue_FIFO(t *testing.T) {
	q := newMessageQueue()

	for _, p := range []string{"A", "B", "C"} {
		q.Enqueue(queueMsg(p))
	}

	for _, want := range []string{"A", "B", "C"} {
		m, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, m.Project)
	}
}

func TestMessageQueue_TryDequeue_Empty(t *testing.T) {
	q := newMessageQueue()

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestMessageQueue_WaitSignals(t *testing.T) {
	q := newMessageQueue()

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Enqueue(queueMsg("late"))
	}()

	select {
	case <-q.Wait():
		m, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, "late", m.Project)
	case <-time.After(time.Second):
		t.Fatal("wait did not signal")
	}
}

func TestMessageQueue_Close_WakesWaiters(t *testing.T) {
	q := newMessageQueue()
	q.Close()

	select {
	case <-q.Wait():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("wait did not unblock after close")
	}
	assert.True(t, q.Closed())
	q.Close() // idempotent
}

func TestMessageQueue_Enqueue_AfterClose(t *testing.T) {
	q := newMessageQueue()
	q.Close()

	ok := q.Enqueue(queueMsg("after-close"))
	assert.False(t, ok, "enqueue after close should return false")
}

func TestMessageQueue_Len(t *testing.T) {
	q := newMessageQueue()

	assert.Equal(t, 0, q.Len())

	q.Enqueue(queueMsg("1"))
	assert.Equal(t, 1, q.Len())

	q.Enqueue(queueMsg("2"))
	assert.Equal(t, 2, q.Len())

	q.TryDequeue()
	assert.Equal(t, 1, q.Len())

	q.TryDequeue()
	assert.Equal(t, 0, q.Len())
}

func TestMessageQueue_ThreadSafe(t *testing.T) {
	q := newMessageQueue()

	const producers = 10
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(producerID int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(queueMsg(fmt.Sprintf("%d-%d", producerID, i)))
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for {
		m, ok := q.TryDequeue()
		if !ok {
			break
		}
		assert.False(t, seen[m.Project], "message %s dequeued twice", m.Project)
		seen[m.Project] = true
	}
	assert.Len(t, seen, producers*perProducer)
}
