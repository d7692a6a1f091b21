package deque

import "github.com/nobletooth/chains/pkg/utils"

// Ref is a shared view of an element at one end of the deque. The node stays borrowed until Release is called, and
// any attempt to mutate or pop it in the meantime faults.
type Ref[T any] struct {
	c *cell[T]
	n *node[T]
}

// Value returns the viewed element.
func (r *Ref[T]) Value() T {
	if r.c == nil {
		utils.Fault(containerName, "use_after_release", "A released view was read.")
	}
	return r.n.elem
}

// Release ends the view. Releasing twice does nothing.
func (r *Ref[T]) Release() {
	if r.c == nil {
		return
	}
	r.c.unborrow()
	r.c, r.n = nil, nil
}

// RefMut is the exclusive view of an element at one end of the deque. While it's live, no other view of the same
// node may be taken and the node can't be popped.
type RefMut[T any] struct {
	c *cell[T]
	n *node[T]
}

// Value returns a pointer to the viewed element, valid until Release.
func (r *RefMut[T]) Value() *T {
	if r.c == nil {
		utils.Fault(containerName, "use_after_release", "A released mutable view was read.")
	}
	return &r.n.elem
}

// Release ends the view. Releasing twice does nothing.
func (r *RefMut[T]) Release() {
	if r.c == nil {
		return
	}
	r.c.unborrowMut()
	r.c, r.n = nil, nil
}

func newRef[T any](c *cell[T]) (*Ref[T], bool) {
	if c == nil {
		return nil, false
	}
	return &Ref[T]{c: c, n: c.borrow()}, true
}

func newRefMut[T any](c *cell[T]) (*RefMut[T], bool) {
	if c == nil {
		return nil, false
	}
	return &RefMut[T]{c: c, n: c.borrowMut()}, true
}

// PeekFront returns a shared view of the head element, or false if the deque is empty.
func (d *Deque[T]) PeekFront() (*Ref[T], bool) {
	return newRef(d.head)
}

// PeekBack returns a shared view of the tail element, or false if the deque is empty.
func (d *Deque[T]) PeekBack() (*Ref[T], bool) {
	return newRef(d.tail)
}

// PeekFrontMut returns the exclusive view of the head element, or false if the deque is empty.
func (d *Deque[T]) PeekFrontMut() (*RefMut[T], bool) {
	return newRefMut(d.head)
}

// PeekBackMut returns the exclusive view of the tail element, or false if the deque is empty.
func (d *Deque[T]) PeekBackMut() (*RefMut[T], bool) {
	return newRefMut(d.tail)
}
