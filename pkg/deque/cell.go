package deque

import "github.com/nobletooth/chains/pkg/utils"

// Borrow states of a cell.
const (
	unborrowed      = 0
	mutablyBorrowed = -1 // Positive values count shared borrows.
)

// node is the content of a cell: one element plus strong links to both neighbors.
type node[T any] struct {
	elem       T
	next, prev *cell[T]
}

// cell is a reference-counted, borrow-checked box around a node. Every pointer to a cell stored in the deque (the
// head, the tail and the neighbors' links) counts as one strong reference. A cell is accessed only through
// borrow / borrowMut so that two mutable views of the same node can never coexist.
type cell[T any] struct {
	strong int
	state  int // Borrow state; see the constants above.
	node   node[T]
}

// newCell returns a cell holding `elem` with a single strong reference.
func newCell[T any](elem T) *cell[T] {
	utils.NodeAllocated(containerName)
	return &cell[T]{strong: 1, node: node[T]{elem: elem}}
}

// clone takes another strong reference to the cell.
func (c *cell[T]) clone() *cell[T] {
	c.strong++
	return c
}

// drop gives up one strong reference. The last reference can only be given up through unwrap, which hands the
// node's content back, so reaching zero here means the node would be lost with its links still set.
func (c *cell[T]) drop() {
	c.strong--
	if c.strong <= 0 {
		utils.Fault(containerName, "dropped_last_reference",
			"The last reference to a node was dropped without unwrapping it.", "strong", c.strong)
	}
}

// borrow starts a shared view of the node. It faults if the node is mutably borrowed.
func (c *cell[T]) borrow() *node[T] {
	if c.state == mutablyBorrowed {
		utils.Fault(containerName, "already_mutably_borrowed", "A node was borrowed while mutably borrowed.")
	}
	c.state++
	return &c.node
}

// unborrow ends a shared view started by borrow.
func (c *cell[T]) unborrow() {
	if c.state <= 0 {
		utils.RaiseInvariant(containerName, "unbalanced_unborrow", "A shared borrow ended more often than started.",
			"state", c.state)
		return
	}
	c.state--
}

// borrowMut starts the exclusive view of the node. It faults if any other view is live.
func (c *cell[T]) borrowMut() *node[T] {
	switch {
	case c.state == mutablyBorrowed:
		utils.Fault(containerName, "already_mutably_borrowed", "A node was mutably borrowed twice.")
	case c.state > 0:
		utils.Fault(containerName, "already_borrowed", "A node was mutably borrowed while borrowed.",
			"borrows", c.state)
	}
	c.state = mutablyBorrowed
	return &c.node
}

// unborrowMut ends the exclusive view started by borrowMut.
func (c *cell[T]) unborrowMut() {
	if c.state != mutablyBorrowed {
		utils.RaiseInvariant(containerName, "unbalanced_unborrow_mut", "A mutable borrow ended without starting.",
			"state", c.state)
		return
	}
	c.state = unborrowed
}

// withMut runs `fn` on the exclusive view of the node.
func (c *cell[T]) withMut(fn func(n *node[T])) {
	n := c.borrowMut()
	defer c.unborrowMut()
	fn(n)
}

// unwrap consumes the caller's reference, which must be the last one, and returns the element. The node's links must
// already be severed. Any other live reference or view means the node is still reachable, which is a fault.
func (c *cell[T]) unwrap() T {
	if c.strong != 1 {
		utils.Fault(containerName, "reference_still_held", "A node was unwrapped while still referenced.",
			"strong", c.strong)
	}
	if c.state != unborrowed {
		utils.Fault(containerName, "already_borrowed", "A node was unwrapped while borrowed.", "state", c.state)
	}
	if c.node.next != nil || c.node.prev != nil {
		utils.Fault(containerName, "links_not_severed", "A node was unwrapped with its links still set.")
	}
	c.strong = 0
	elem := c.node.elem
	c.node.elem = *new(T)
	utils.NodeFreed(containerName)
	return elem
}
