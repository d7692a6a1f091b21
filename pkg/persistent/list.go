// Package persistent implements an immutable singly linked list with structural sharing. Appending to a list or
// taking its tail never copies nodes: the new list points at the same suffix as the old one, so any number of lists
// may share an arbitrary suffix of nodes.
//
// Shared nodes are reference counted. Every List handle holds one reference to its head node and every node holds one
// reference to its successor. Releasing a handle frees nodes from the head toward the end and stops at the first node
// still referenced by someone else, since nothing beyond it can be freed by this owner.
package persistent

import (
	"iter"

	"github.com/nobletooth/chains/pkg/utils"
)

const containerName = "persistent"

// listNode is immutable once built, except for its reference count.
type listNode[T any] struct {
	elem T
	next *listNode[T]
	size int // Number of nodes from this one to the end; fixed at creation.
	refs int // Number of handles and nodes pointing at this node.
}

// retain takes one more reference to `n` and returns it. Nil is passed through.
func (n *listNode[T]) retain() *listNode[T] {
	if n != nil {
		n.refs++
	}
	return n
}

// List is a handle on a persistent list. The zero value is an empty list.
// A handle must be released exactly once when it's no longer needed; copying the struct doesn't take a reference,
// use Clone for that.
type List[T any] struct {
	head *listNode[T]
}

// New returns an empty list.
func New[T any]() *List[T] {
	return new(List[T])
}

// Of returns a list holding `elems` in order, the first one at the head. Unlike chained Append calls it leaves no
// intermediate handles to release.
func Of[T any](elems ...T) *List[T] {
	var head *listNode[T]
	for i := len(elems) - 1; i >= 0; i-- {
		utils.NodeAllocated(containerName)
		size := 1
		if head != nil {
			size += head.size
		}
		head = &listNode[T]{elem: elems[i], next: head, size: size, refs: 1}
	}
	return &List[T]{head: head}
}

// Append returns a new list with `elem` in front of the receiver's elements. The receiver isn't modified and keeps its
// own reference to the shared nodes: both handles must be released. `New().Append(a).Append(b)` leaks the middle
// handle and with it every shared node; use Of to build a list in one step.
func (l *List[T]) Append(elem T) *List[T] {
	utils.NodeAllocated(containerName)
	return &List[T]{head: &listNode[T]{elem: elem, next: l.head.retain(), size: l.Size() + 1, refs: 1}}
}

// Tail returns the list of all elements after the head. The tail of an empty list is empty.
func (l *List[T]) Tail() *List[T] {
	if l.head == nil {
		return New[T]()
	}
	return &List[T]{head: l.head.next.retain()}
}

// Clone returns another handle on the same nodes.
func (l *List[T]) Clone() *List[T] {
	return &List[T]{head: l.head.retain()}
}

// Head returns the first element.
func (l *List[T]) Head() (T, bool) {
	if l.head == nil {
		return *new(T), false
	}
	return l.head.elem, true
}

// IsEmpty reports whether the list has no elements.
func (l *List[T]) IsEmpty() bool {
	return l.head == nil
}

// Size returns the number of elements in O(1).
func (l *List[T]) Size() int {
	if l.head == nil {
		return 0
	}
	return l.head.size
}

// All yields the elements from head to end.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for node := l.head; node != nil; node = node.next {
			if !yield(node.elem) {
				return
			}
		}
	}
}

// Release gives up this handle's reference. Nodes whose last reference is dropped are freed and their elements
// released, walking toward the end of the list until a node still referenced elsewhere is reached.
// The handle is empty afterward, so releasing it again does nothing.
func (l *List[T]) Release() {
	node := l.head
	l.head = nil
	for node != nil {
		node.refs--
		if node.refs > 0 { // Shared with another list; everything from here on stays alive.
			return
		}
		if node.refs < 0 {
			utils.RaiseInvariant(containerName, "negative_refs", "A list node was released more often than retained.",
				"refs", node.refs, "size", node.size)
			return
		}
		next := node.next
		node.next = nil
		utils.ReleaseValue(node.elem)
		utils.NodeFreed(containerName)
		node = next
	}
}
