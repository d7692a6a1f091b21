package queue

import (
	"slices"
	"testing"

	"github.com/nobletooth/chains/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertQueuePops pops one element per expected value and checks the order.
func assertQueuePops[T any](t *testing.T, q *Queue[T], expected ...T) {
	t.Helper()
	for _, want := range expected {
		got, ok := q.Pop()
		require.True(t, ok, "Expected %v but the queue was empty", want)
		assert.Equal(t, want, got)
	}
}

// assertQueueLinks checks that the cached tail observes the last node owned from the head.
func assertQueueLinks[T any](t *testing.T, q *Queue[T]) {
	t.Helper()
	if q.head.isNull() {
		assert.True(t, q.tail.isNull(), "Empty queue should have a null tail")
		return
	}
	last := q.head
	for h := q.head; !h.isNull(); h = q.nodes.get(h).next {
		last = h
	}
	assert.Equal(t, last, q.tail, "Tail should observe the last node")
	assert.Equal(t, q.Size(), q.nodes.liveNodes(), "Every live node should be owned from the head")
}

func TestQueue_EmptyOnCreation(t *testing.T) {
	q := NewQueue[int]()
	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Size())
	assertQueueLinks(t, q)
}

func TestQueue_Sizes(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)
	q.Push(4)
	assert.Equal(t, 4, q.Size())
	q.Pop()
	assert.Equal(t, 3, q.Size())
	q.Pop()
	q.Pop()
	q.Pop()
	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Size())
	assertQueueLinks(t, q)
}

func TestQueue_PopEmpty(t *testing.T) {
	q := NewQueue[int]()
	for range 3 {
		_, ok := q.Pop()
		assert.False(t, ok)
		assertQueueLinks(t, q)
	}
}

func TestQueue_PushPops(t *testing.T) {
	q := NewQueue[int]()
	q.Push(32)
	q.Push(40)
	assertQueuePops(t, q, 32)
	q.Push(20)
	assertQueueLinks(t, q)
	assertQueuePops(t, q, 40, 20)
	_, ok := q.Pop()
	assert.False(t, ok)
	assert.True(t, q.IsEmpty())
}

func TestQueue_PushAfterEmptied(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	assertQueuePops(t, q, 1)
	// The tail must have been reset, or this push would write through a stale observer.
	q.Push(2)
	q.Push(3)
	assertQueueLinks(t, q)
	assertQueuePops(t, q, 2, 3)
}

func TestQueue_Peek(t *testing.T) {
	q := NewQueue[string]()
	q.Push("1")
	q.Push("2")
	got, ok := q.Peek()
	assert.True(t, ok)
	assert.Equal(t, "1", got)
	q.Pop()
	got, _ = q.Peek()
	assert.Equal(t, "2", got)
	q.Pop()
	_, ok = q.Peek()
	assert.False(t, ok)
}

func TestQueue_PeekMut(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	q.Push(2)
	head, ok := q.PeekMut()
	require.True(t, ok)
	*head = 3
	assertQueuePops(t, q, 3, 2)
	_, ok = q.PeekMut()
	assert.False(t, ok)
}

func TestQueue_Iteration(t *testing.T) {
	t.Run("all", func(t *testing.T) {
		q := NewQueue[int]()
		q.Push(1)
		q.Push(2)
		q.Push(3)
		assert.Equal(t, []int{1, 2, 3}, slices.Collect(q.All()))
		assertQueuePops(t, q, 1)
		assert.Equal(t, []int{2, 3}, slices.Collect(q.All()))
	})
	t.Run("all_mut", func(t *testing.T) {
		q := NewQueue[int]()
		q.Push(3)
		q.Push(2)
		q.Push(1)
		for elem := range q.AllMut() {
			*elem *= 2
		}
		assertQueuePops(t, q, 6, 4, 2)
	})
	t.Run("drain", func(t *testing.T) {
		q := NewQueue[int]()
		q.Push(1)
		q.Push(2)
		q.Push(3)
		assert.Equal(t, []int{1, 2, 3}, slices.Collect(q.Drain()))
		assert.True(t, q.IsEmpty())
		assertQueueLinks(t, q)
	})
}

func TestQueue_Clear(t *testing.T) {
	tracker := new(utils.ReleaseTracker)
	q := NewQueue[*utils.TrackedItem]()
	for range 4 {
		q.Push(tracker.NewItem())
	}
	popped, _ := q.Pop()
	q.Clear()
	assert.False(t, popped.IsReleased())
	assert.Equal(t, 3, tracker.Released())
	assertQueueLinks(t, q)
	assert.Equal(t, 0, q.nodes.liveNodes())
}

func TestQueue_ClearLongChain(t *testing.T) {
	const length = 100_000
	allocatedBefore, freedBefore := utils.GetNodeCounts(queueContainerName)
	q := NewQueue[int]()
	for i := range length {
		q.Push(i)
	}
	assert.Equal(t, length, q.Size())
	q.Clear()
	assert.True(t, q.IsEmpty())
	allocated, freed := utils.GetNodeCounts(queueContainerName)
	assert.Equal(t, length, allocated-allocatedBefore)
	assert.Equal(t, length, freed-freedBefore)
}

func TestQueue_StaleTailFaults(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	staleTail := q.tail
	q.Pop()
	// Simulate a pop that forgot to reset the tail.
	q.tail = staleTail
	assert.PanicsWithError(t, "queue fault: stale_handle", func() { q.Push(2) })
}
