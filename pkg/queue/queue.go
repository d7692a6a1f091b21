// Package queue implements a FIFO queue and a deque over singly owned chains with cached observer references.
//
// The chain is owned from the head: the container owns the head node and every node owns its successor through
// `next`. The tail, and in the deque every node's `prev`, are observers: they locate a node in O(1) but never keep it
// alive. Nodes live in a generation-checked arena, so an observer left pointing at a freed node is caught as a fault
// when dereferenced instead of silently reading reused memory. Every push and pop updates the owning links and the
// observers together, within the same method.
package queue

import (
	"iter"

	"github.com/nobletooth/chains/pkg/utils"
)

const queueContainerName = "queue"

// Queue is a first-in-first-out queue. The zero value is an empty queue ready to use.
// It isn't safe for concurrent use.
type Queue[T any] struct {
	nodes arena[T]
	head  handle // Owning.
	tail  handle // Observer; null exactly when head is null.
}

// NewQueue returns an empty queue.
func NewQueue[T any]() *Queue[T] {
	return new(Queue[T])
}

func (q *Queue[T]) arena() *arena[T] {
	if q.nodes.name == "" {
		q.nodes.name = queueContainerName
	}
	return &q.nodes
}

// Push appends `elem` at the tail without walking the chain.
func (q *Queue[T]) Push(elem T) {
	nodes := q.arena()
	newTail := nodes.alloc(elem)
	if q.tail.isNull() {
		q.head = newTail
	} else {
		nodes.get(q.tail).next = newTail
	}
	q.tail = newTail
}

// Pop removes the head and returns its element, or false if the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	if q.head.isNull() {
		return *new(T), false
	}
	nodes := q.arena()
	oldHead := q.head
	q.head = nodes.get(oldHead).next
	if q.head.isNull() { // The tail observed the popped node.
		q.tail = nullHandle
	}
	return nodes.release(oldHead), true
}

// Peek returns the head element.
func (q *Queue[T]) Peek() (T, bool) {
	if q.head.isNull() {
		return *new(T), false
	}
	return q.arena().get(q.head).elem, true
}

// PeekMut returns a pointer to the head element, valid until the element is popped.
func (q *Queue[T]) PeekMut() (*T, bool) {
	if q.head.isNull() {
		return nil, false
	}
	return &q.arena().get(q.head).elem, true
}

// IsEmpty reports whether the queue has no elements.
func (q *Queue[T]) IsEmpty() bool {
	return q.head.isNull()
}

// Size counts the elements by walking the chain.
func (q *Queue[T]) Size() int {
	return chainLength(q.arena(), q.head)
}

// All yields the elements from head to tail.
func (q *Queue[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for node := range chain(q.arena(), q.head, nextOf[T]) {
			if !yield(node.elem) {
				return
			}
		}
	}
}

// AllMut yields pointers to the elements from head to tail.
func (q *Queue[T]) AllMut() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for node := range chain(q.arena(), q.head, nextOf[T]) {
			if !yield(&node.elem) {
				return
			}
		}
	}
}

// Drain pops and yields elements until the queue is empty or the consumer stops.
func (q *Queue[T]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			elem, ok := q.Pop()
			if !ok || !yield(elem) {
				return
			}
		}
	}
}

// Clear frees every node from the head on, releasing the elements.
func (q *Queue[T]) Clear() {
	for {
		elem, ok := q.Pop()
		if !ok {
			return
		}
		utils.ReleaseValue(elem)
	}
}

func nextOf[T any](node *arenaNode[T]) handle { return node.next }
func prevOf[T any](node *arenaNode[T]) handle { return node.prev }

// chain yields the nodes reached from `start` by following `step` until a null handle.
// The step is read before yielding so that the consumer may modify the element.
func chain[T any](nodes *arena[T], start handle, step func(*arenaNode[T]) handle) iter.Seq[*arenaNode[T]] {
	return func(yield func(*arenaNode[T]) bool) {
		for h := start; !h.isNull(); {
			node := nodes.get(h)
			h = step(node)
			if !yield(node) {
				return
			}
		}
	}
}

// chainLength counts the nodes owned from `head`.
func chainLength[T any](nodes *arena[T], head handle) int {
	length := 0
	for range chain(nodes, head, nextOf[T]) {
		length++
	}
	return length
}
