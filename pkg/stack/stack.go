// Package stack implements a singly linked LIFO stack whose nodes each have exactly one owner: the stack handle owns
// the head, and every node owns its successor. There is no sharing, so popping hands the element straight back to the
// caller and tearing down the stack is a plain walk from the head.
package stack

import (
	"iter"

	"github.com/nobletooth/chains/pkg/utils"
)

const containerName = "stack"

// stackNode holds one element and the owning link to the rest of the chain.
type stackNode[T any] struct {
	elem T
	next *stackNode[T]
}

// Stack is a last-in-first-out stack. The zero value is an empty stack ready to use. It isn't safe for concurrent use.
type Stack[T any] struct {
	head *stackNode[T]
}

// New returns an empty stack.
func New[T any]() *Stack[T] {
	return new(Stack[T])
}

// Push puts `elem` on top of the stack. The new head takes ownership of the previous head.
func (s *Stack[T]) Push(elem T) {
	s.head = &stackNode[T]{elem: elem, next: s.head}
	utils.NodeAllocated(containerName)
}

// Pop removes the top element and returns it, or false if the stack is empty.
func (s *Stack[T]) Pop() (T, bool) {
	node := s.head
	if node == nil {
		return *new(T), false
	}
	s.head, node.next = node.next, nil
	utils.NodeFreed(containerName)
	return node.elem, true
}

// Peek returns the top element without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	if s.head == nil {
		return *new(T), false
	}
	return s.head.elem, true
}

// PeekMut returns a pointer to the top element. The pointer is only valid until the element is popped.
func (s *Stack[T]) PeekMut() (*T, bool) {
	if s.head == nil {
		return nil, false
	}
	return &s.head.elem, true
}

// IsEmpty reports whether the stack has no elements.
func (s *Stack[T]) IsEmpty() bool {
	return s.head == nil
}

// Size counts the elements by walking the chain; no count is cached.
func (s *Stack[T]) Size() int {
	size := 0
	for node := s.head; node != nil; node = node.next {
		size++
	}
	return size
}

// All yields the elements from top to bottom without removing them.
func (s *Stack[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for node := s.head; node != nil; node = node.next {
			if !yield(node.elem) {
				return
			}
		}
	}
}

// AllMut yields pointers to the elements from top to bottom, allowing them to be modified in place.
func (s *Stack[T]) AllMut() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for node := s.head; node != nil; node = node.next {
			if !yield(&node.elem) {
				return
			}
		}
	}
}

// Drain pops and yields elements until the stack is empty or the consumer stops.
func (s *Stack[T]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			elem, ok := s.Pop()
			if !ok || !yield(elem) {
				return
			}
		}
	}
}

// Clear frees every node, releasing the elements they still hold. Nodes are detached one at a time from the head so
// the teardown never recurses, whatever the length of the chain.
func (s *Stack[T]) Clear() {
	node := s.head
	s.head = nil
	for node != nil {
		next := node.next
		node.next = nil
		utils.ReleaseValue(node.elem)
		utils.NodeFreed(containerName)
		node = next
	}
}
