package queue

import (
	"iter"

	"github.com/nobletooth/chains/pkg/utils"
)

const dequeContainerName = "queue_deque"

// Deque is a double-ended queue over a chain owned from the head. Each node additionally observes its predecessor
// through `prev`, which makes popping the tail O(1). The zero value is an empty deque ready to use.
// It isn't safe for concurrent use.
//
// Links kept consistent by every operation:
//   - head.prev and tail.next are null;
//   - for every node n with a successor, get(n.next).prev == n;
//   - tail is the last node reachable from head through next, and null exactly when head is null.
type Deque[T any] struct {
	nodes arena[T]
	head  handle // Owning.
	tail  handle // Observer.
}

// NewDeque returns an empty deque.
func NewDeque[T any]() *Deque[T] {
	return new(Deque[T])
}

func (d *Deque[T]) arena() *arena[T] {
	if d.nodes.name == "" {
		d.nodes.name = dequeContainerName
	}
	return &d.nodes
}

// PushBack appends `elem` after the tail.
func (d *Deque[T]) PushBack(elem T) {
	nodes := d.arena()
	newTail := nodes.alloc(elem)
	nodes.get(newTail).prev = d.tail
	if d.tail.isNull() {
		d.head = newTail
	} else {
		nodes.get(d.tail).next = newTail
	}
	d.tail = newTail
}

// PushFront inserts `elem` before the head.
func (d *Deque[T]) PushFront(elem T) {
	nodes := d.arena()
	newHead := nodes.alloc(elem)
	if d.head.isNull() {
		d.tail = newHead
	} else {
		nodes.get(d.head).prev = newHead
		nodes.get(newHead).next = d.head // Takes over ownership of the old head.
	}
	d.head = newHead
}

// PopFront removes the head and returns its element, or false if the deque is empty.
func (d *Deque[T]) PopFront() (T, bool) {
	if d.head.isNull() {
		return *new(T), false
	}
	nodes := d.arena()
	oldHead := d.head
	d.head = nodes.get(oldHead).next
	if d.head.isNull() {
		d.tail = nullHandle
	} else {
		nodes.get(d.head).prev = nullHandle // It observed the popped node.
	}
	return nodes.release(oldHead), true
}

// PopBack removes the tail and returns its element, or false if the deque is empty.
// The predecessor is located through the tail's observer, then its owning link to the tail is cut.
func (d *Deque[T]) PopBack() (T, bool) {
	if d.tail.isNull() {
		return *new(T), false
	}
	nodes := d.arena()
	oldTail := d.tail
	prev := nodes.get(oldTail).prev
	if prev.isNull() {
		d.head = nullHandle
	} else {
		nodes.get(prev).next = nullHandle
	}
	d.tail = prev
	return nodes.release(oldTail), true
}

// PeekFront returns the head element.
func (d *Deque[T]) PeekFront() (T, bool) {
	return d.peek(d.head)
}

// PeekBack returns the tail element.
func (d *Deque[T]) PeekBack() (T, bool) {
	return d.peek(d.tail)
}

// PeekFrontMut returns a pointer to the head element, valid until the element is popped.
func (d *Deque[T]) PeekFrontMut() (*T, bool) {
	return d.peekMut(d.head)
}

// PeekBackMut returns a pointer to the tail element, valid until the element is popped.
func (d *Deque[T]) PeekBackMut() (*T, bool) {
	return d.peekMut(d.tail)
}

func (d *Deque[T]) peek(h handle) (T, bool) {
	if h.isNull() {
		return *new(T), false
	}
	return d.arena().get(h).elem, true
}

func (d *Deque[T]) peekMut(h handle) (*T, bool) {
	if h.isNull() {
		return nil, false
	}
	return &d.arena().get(h).elem, true
}

// IsEmpty reports whether the deque has no elements.
func (d *Deque[T]) IsEmpty() bool {
	return d.head.isNull()
}

// Size counts the elements by walking from the head.
func (d *Deque[T]) Size() int {
	return chainLength(d.arena(), d.head)
}

// All yields the elements from head to tail.
func (d *Deque[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for node := range chain(d.arena(), d.head, nextOf[T]) {
			if !yield(node.elem) {
				return
			}
		}
	}
}

// Backward yields the elements from tail to head by following the prev observers.
func (d *Deque[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for node := range chain(d.arena(), d.tail, prevOf[T]) {
			if !yield(node.elem) {
				return
			}
		}
	}
}

// AllMut yields pointers to the elements from head to tail.
func (d *Deque[T]) AllMut() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for node := range chain(d.arena(), d.head, nextOf[T]) {
			if !yield(&node.elem) {
				return
			}
		}
	}
}

// Drain pops and yields elements from the front until the deque is empty or the consumer stops.
func (d *Deque[T]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			elem, ok := d.PopFront()
			if !ok || !yield(elem) {
				return
			}
		}
	}
}

// Clear frees every node from the head on, releasing the elements.
func (d *Deque[T]) Clear() {
	for {
		elem, ok := d.PopFront()
		if !ok {
			return
		}
		utils.ReleaseValue(elem)
	}
}
