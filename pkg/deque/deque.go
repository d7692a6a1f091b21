// Package deque implements a doubly linked deque whose nodes are jointly owned by their neighbors. Each node sits in
// a reference-counted cell, and both the `next` and the `prev` links are strong references, so neighboring nodes
// form reference cycles. A popped node must have its neighbor's back-link severed before its last reference goes
// away; the cell refuses to give up the element otherwise.
//
// Nodes can be read or modified from both ends. Access goes through runtime borrow checks: any number of shared
// views of a node may coexist, but a mutable view excludes every other view. Breaking that rule is a fault, which
// panics with *utils.FaultError instead of silently aliasing.
package deque

import (
	"iter"

	"github.com/nobletooth/chains/pkg/utils"
)

const containerName = "deque"

// Deque is a double-ended queue. The zero value is an empty deque ready to use. It isn't safe for concurrent use.
type Deque[T any] struct {
	head, tail *cell[T]
}

// New returns an empty deque.
func New[T any]() *Deque[T] {
	return new(Deque[T])
}

// PushFront inserts `elem` before the current head. The node is only allocated once the head could be borrowed, so a
// faulted push leaves nothing behind.
func (d *Deque[T]) PushFront(elem T) {
	oldHead := d.head
	if oldHead == nil {
		newHead := newCell(elem)
		d.tail = newHead.clone()
		d.head = newHead
		return
	}
	oldHead.withMut(func(oldNode *node[T]) {
		newHead := newCell(elem)
		newHead.withMut(func(newNode *node[T]) { newNode.next = oldHead }) // Takes over the deque's head reference.
		oldNode.prev = newHead.clone()
		d.head = newHead
	})
}

// PushBack inserts `elem` after the current tail.
func (d *Deque[T]) PushBack(elem T) {
	oldTail := d.tail
	if oldTail == nil {
		newTail := newCell(elem)
		d.head = newTail.clone()
		d.tail = newTail
		return
	}
	oldTail.withMut(func(oldNode *node[T]) {
		newTail := newCell(elem)
		newTail.withMut(func(newNode *node[T]) { newNode.prev = oldTail }) // Takes over the deque's tail reference.
		oldNode.next = newTail.clone()
		d.tail = newTail
	})
}

// PopFront removes the head and returns its element, or false if the deque is empty.
func (d *Deque[T]) PopFront() (T, bool) {
	oldHead := d.head
	if oldHead == nil {
		return *new(T), false
	}
	oldHead.withMut(func(oldNode *node[T]) {
		next := oldNode.next
		if next == nil { // Last node; the tail is the only other reference.
			d.tail.drop()
			d.head, d.tail = nil, nil
			return
		}
		next.withMut(func(nextNode *node[T]) {
			nextNode.prev.drop() // Sever the back-link, or the cycle keeps the popped node referenced.
			nextNode.prev = nil
		})
		oldNode.next = nil
		d.head = next // Takes over the popped node's reference to its successor.
	})
	return oldHead.unwrap(), true
}

// PopBack removes the tail and returns its element, or false if the deque is empty.
func (d *Deque[T]) PopBack() (T, bool) {
	oldTail := d.tail
	if oldTail == nil {
		return *new(T), false
	}
	oldTail.withMut(func(oldNode *node[T]) {
		prev := oldNode.prev
		if prev == nil { // Last node; the head is the only other reference.
			d.head.drop()
			d.head, d.tail = nil, nil
			return
		}
		prev.withMut(func(prevNode *node[T]) {
			prevNode.next.drop()
			prevNode.next = nil
		})
		oldNode.prev = nil
		d.tail = prev
	})
	return oldTail.unwrap(), true
}

// IsEmpty reports whether the deque has no elements.
func (d *Deque[T]) IsEmpty() bool {
	return d.head == nil
}

// Size counts the elements by walking from the head.
func (d *Deque[T]) Size() int {
	size := 0
	for range d.All() {
		size++
	}
	return size
}

// walk visits cells from `start` following `step`, keeping each visited node borrowed while `visit` runs.
// It stops when `visit` returns false.
func walk[T any](start *cell[T], mutable bool, step func(n *node[T]) *cell[T], visit func(n *node[T]) bool) {
	for c := start; c != nil; {
		next, cont := visitCell(c, mutable, step, visit)
		if !cont {
			return
		}
		c = next
	}
}

func visitCell[T any](c *cell[T], mutable bool, step func(n *node[T]) *cell[T],
	visit func(n *node[T]) bool) (*cell[T], bool) {
	var n *node[T]
	if mutable {
		n = c.borrowMut()
		defer c.unborrowMut()
	} else {
		n = c.borrow()
		defer c.unborrow()
	}
	return step(n), visit(n)
}

func forward[T any](n *node[T]) *cell[T]  { return n.next }
func backward[T any](n *node[T]) *cell[T] { return n.prev }

// All yields the elements from front to back. Each node stays borrowed while the consumer handles its element, so
// popping that node from within the loop faults.
func (d *Deque[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		walk(d.head, false, forward[T], func(n *node[T]) bool { return yield(n.elem) })
	}
}

// Backward yields the elements from back to front.
func (d *Deque[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		walk(d.tail, false, backward[T], func(n *node[T]) bool { return yield(n.elem) })
	}
}

// AllMut yields pointers to the elements from front to back. Each node is mutably borrowed while the consumer holds
// its pointer; the pointer must not be kept after the loop iteration.
func (d *Deque[T]) AllMut() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		walk(d.head, true, forward[T], func(n *node[T]) bool { return yield(&n.elem) })
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

// Clear pops every node from the front, releasing the elements. Each pop severs the links of exactly one node, so
// teardown is a loop and never recursion.
func (d *Deque[T]) Clear() {
	for {
		elem, ok := d.PopFront()
		if !ok {
			return
		}
		utils.ReleaseValue(elem)
	}
}
