package utils

// Releaser is implemented by elements that want to know when a container frees the node holding them.
// Elements returned to the caller (e.g. by Pop) are never released by the container; the caller owns them.
type Releaser interface {
	Release()
}

// ReleaseValue calls Release on `v` if it implements Releaser.
func ReleaseValue[T any](v T) {
	if releaser, ok := any(v).(Releaser); ok {
		releaser.Release()
	}
}

// ReleaseTracker hands out items that report back when they are released, to check that containers free each
// element exactly once.
type ReleaseTracker struct {
	tracked, released int
}

// TrackedItem is an element handed out by ReleaseTracker.
type TrackedItem struct {
	tracker  *ReleaseTracker
	id       int
	released bool
}

// NewItem returns a new tracked item with a unique id.
func (r *ReleaseTracker) NewItem() *TrackedItem {
	r.tracked++
	return &TrackedItem{tracker: r, id: r.tracked}
}

// Tracked returns the number of items created so far.
func (r *ReleaseTracker) Tracked() int { return r.tracked }

// Released returns the number of items released so far.
func (r *ReleaseTracker) Released() int { return r.released }

// ID returns the item id; ids start at 1 in creation order.
func (i *TrackedItem) ID() int { return i.id }

// IsReleased reports whether the item was released.
func (i *TrackedItem) IsReleased() bool { return i.released }

// Release marks the item as released. Releasing the same item twice is a fault.
func (i *TrackedItem) Release() {
	if i.released {
		Fault("release_tracker", "double_release", "An item was released twice.", "id", i.id)
	}
	i.released = true
	i.tracker.released++
}
