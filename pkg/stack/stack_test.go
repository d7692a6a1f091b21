package stack

import (
	"slices"
	"testing"

	"github.com/nobletooth/chains/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pushAll pushes the given elements in order and returns the stack.
func pushAll[T any](elems ...T) *Stack[T] {
	s := New[T]()
	for _, elem := range elems {
		s.Push(elem)
	}
	return s
}

// assertPops pops one element per expected value and checks the order.
func assertPops[T any](t *testing.T, s *Stack[T], expected ...T) {
	t.Helper()
	for _, want := range expected {
		got, ok := s.Pop()
		require.True(t, ok, "Expected %v but the stack was empty", want)
		assert.Equal(t, want, got)
	}
}

func TestStack_EmptyOnCreation(t *testing.T) {
	s := New[int]()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Size())

	var zero Stack[int]
	assert.True(t, zero.IsEmpty())
}

func TestStack_Sizes(t *testing.T) {
	s := pushAll(1, 2, 3, 4)
	assert.Equal(t, 4, s.Size())
	s.Pop()
	assert.Equal(t, 3, s.Size())
	s.Pop()
	s.Pop()
	s.Pop()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Size())
}

func TestStack_PopEmpty(t *testing.T) {
	s := New[int]()
	for range 3 { // Repeated pops are idempotent.
		got, ok := s.Pop()
		assert.False(t, ok)
		assert.Zero(t, got)
		assert.True(t, s.IsEmpty())
	}
}

func TestStack_PushPops(t *testing.T) {
	s := pushAll(32, 40)
	assertPops(t, s, 40)
	s.Push(20)
	assertPops(t, s, 20, 32)
	_, ok := s.Pop()
	assert.False(t, ok)
	assert.True(t, s.IsEmpty())
}

func TestStack_Peek(t *testing.T) {
	s := pushAll("1", "2")
	got, ok := s.Peek()
	assert.True(t, ok)
	assert.Equal(t, "2", got)
	s.Pop()
	got, _ = s.Peek()
	assert.Equal(t, "1", got)
	s.Pop()
	_, ok = s.Peek()
	assert.False(t, ok)
}

func TestStack_PeekMut(t *testing.T) {
	s := pushAll(1, 2)
	top, ok := s.PeekMut()
	require.True(t, ok)
	*top = 3
	assertPops(t, s, 3, 1)
	_, ok = s.PeekMut()
	assert.False(t, ok)
}

func TestStack_Iteration(t *testing.T) {
	t.Run("all", func(t *testing.T) {
		s := pushAll(3, 2, 1)
		assert.Equal(t, []int{1, 2, 3}, slices.Collect(s.All()))
		// Iteration doesn't consume, so it can be restarted.
		assert.Equal(t, []int{1, 2, 3}, slices.Collect(s.All()))
		assertPops(t, s, 1)
		assert.Equal(t, []int{2, 3}, slices.Collect(s.All()))
	})
	t.Run("all_mut", func(t *testing.T) {
		s := pushAll(1, 2, 3)
		for elem := range s.AllMut() {
			*elem *= 2
		}
		assertPops(t, s, 6, 4, 2)
	})
	t.Run("drain", func(t *testing.T) {
		s := pushAll(3, 2, 1)
		assert.Equal(t, []int{1, 2, 3}, slices.Collect(s.Drain()))
		assert.True(t, s.IsEmpty())
	})
	t.Run("drain_partially", func(t *testing.T) {
		s := pushAll(3, 2, 1)
		for elem := range s.Drain() {
			if elem == 2 {
				break
			}
		}
		assert.Equal(t, []int{3}, slices.Collect(s.All()))
	})
}

func TestStack_Clear(t *testing.T) {
	tracker := new(utils.ReleaseTracker)
	s := New[*utils.TrackedItem]()
	for range 5 {
		s.Push(tracker.NewItem())
	}
	popped, _ := s.Pop()
	s.Clear()
	assert.True(t, s.IsEmpty())
	// The popped item belongs to the caller now.
	assert.False(t, popped.IsReleased())
	assert.Equal(t, 4, tracker.Released())
}

func TestStack_ClearLongChain(t *testing.T) {
	const length = 200_000
	allocatedBefore, freedBefore := utils.GetNodeCounts(containerName)
	s := New[int]()
	for i := range length {
		s.Push(i)
	}
	s.Clear()
	assert.True(t, s.IsEmpty())
	allocated, freed := utils.GetNodeCounts(containerName)
	assert.Equal(t, length, allocated-allocatedBefore)
	assert.Equal(t, length, freed-freedBefore)
}
