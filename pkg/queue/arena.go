package queue

import "github.com/nobletooth/chains/pkg/utils"

// handle addresses a node in an arena. Slot 0 is never used, so the zero handle is the null handle.
// A handle whose generation doesn't match its slot's points at a freed node.
type handle struct {
	slot int
	gen  uint32
}

var nullHandle = handle{}

// isNull reports whether h points at nothing.
func (h handle) isNull() bool {
	return h.slot == 0
}

// arenaNode is one slot of the arena. `next` is an owning handle; `prev` is a non-owning observer.
type arenaNode[T any] struct {
	elem T
	next handle
	prev handle
	gen  uint32
	live bool
}

// arena stores nodes in stable slots so that observers can address them without owning them. Slots are allocated
// individually so pointers into a node survive the slot table growing.
type arena[T any] struct {
	name  string // Container name used for faults and metrics.
	slots []*arenaNode[T]
	free  []int // Indexes of dead slots available for reuse.
}

// alloc stores `elem` in a fresh or recycled slot and returns its handle.
func (a *arena[T]) alloc(elem T) handle {
	utils.NodeAllocated(a.name)
	if len(a.slots) == 0 {
		a.slots = append(a.slots, nil) // Reserve slot 0 for the null handle.
	}
	if n := len(a.free); n > 0 {
		slot := a.free[n-1]
		a.free = a.free[:n-1]
		node := a.slots[slot]
		node.elem, node.live = elem, true
		return handle{slot: slot, gen: node.gen}
	}
	a.slots = append(a.slots, &arenaNode[T]{elem: elem, live: true})
	return handle{slot: len(a.slots) - 1}
}

// get dereferences `h`. Null, out of range and stale handles are faults: following them would read a node that
// isn't part of the chain anymore.
func (a *arena[T]) get(h handle) *arenaNode[T] {
	if h.isNull() {
		utils.Fault(a.name, "null_handle", "A null handle was dereferenced.")
	}
	if h.slot < 0 || h.slot >= len(a.slots) {
		utils.Fault(a.name, "invalid_handle", "A handle outside the arena was dereferenced.",
			"slot", h.slot, "slots", len(a.slots))
	}
	node := a.slots[h.slot]
	if !node.live || node.gen != h.gen {
		utils.Fault(a.name, "stale_handle", "A handle to a freed node was dereferenced.",
			"slot", h.slot, "handleGen", h.gen, "slotGen", node.gen)
	}
	return node
}

// release frees the node behind `h` and returns its element. Bumping the generation turns every remaining handle to
// this node into a stale one.
func (a *arena[T]) release(h handle) T {
	node := a.get(h)
	elem := node.elem
	*node = arenaNode[T]{gen: node.gen + 1}
	a.free = append(a.free, h.slot)
	utils.NodeFreed(a.name)
	return elem
}

// liveNodes returns the number of allocated nodes.
func (a *arena[T]) liveNodes() int {
	if len(a.slots) == 0 {
		return 0
	}
	return len(a.slots) - 1 - len(a.free)
}
