// The list store keeps its keys in independent shards. Listing keys in order needs a way to iterate over the sorted
// keys of every shard at once, without collecting and sorting them again; this module implements a heap-based
// multi-way merge that lazily pulls from the underlying sequences.
//
// Keys pulled from multiple sequences are ordered by key and then by sequence index; a key already yielded by one
// sequence is discarded when another sequence yields it again.

package scan

import (
	"container/heap"
	"errors"
	"iter"

	"github.com/nobletooth/chains/pkg/utils"
)

// heapElement is a key pulled from one of the merged sequences.
type heapElement[K any] struct {
	key    K
	seqIdx int // The sequence that produced this key.
}

// keyHeap holds the iteration state over multiple sequences.
type keyHeap[K any] struct { // Implements heap.Interface.
	compare  utils.CompareFn[K]
	elements []*heapElement[K] // At most one pending key per sequence.
}

var _ heap.Interface = (*keyHeap[int])(nil)

func (kh *keyHeap[K]) Len() int {
	return len(kh.elements)
}

// Less orders by key, then by sequence index.
func (kh *keyHeap[K]) Less(i, j int) bool {
	e1, e2 := kh.elements[i], kh.elements[j]
	if cmp := kh.compare(e1.key, e2.key); cmp != 0 {
		return cmp < 0
	}
	return e1.seqIdx < e2.seqIdx
}

func (kh *keyHeap[K]) Swap(i, j int) {
	kh.elements[i], kh.elements[j] = kh.elements[j], kh.elements[i]
}

func (kh *keyHeap[K]) Push(x any) {
	element, ok := x.(*heapElement[K])
	switch {
	case !ok:
		utils.RaiseInvariant("merge", "pushed_invalid_type", "An item with invalid type was pushed to heap.")
	case element == nil:
		utils.RaiseInvariant("merge", "pushed_nil_element", "A nil element was pushed to the merge heap.")
	case len(kh.elements) == cap(kh.elements):
		utils.RaiseInvariant("merge", "exceeded_capacity",
			"An element was pushed while the capacity was full.", "cap", cap(kh.elements))
	default:
		kh.elements = append(kh.elements, element)
	}
}

func (kh *keyHeap[K]) Pop() any {
	lastElement := kh.elements[len(kh.elements)-1]
	kh.elements = kh.elements[:len(kh.elements)-1]
	return lastElement
}

// Merge lazily merges increasing `sequences` into a single increasing sequence without duplicate keys.
func Merge[K any](compare utils.CompareFn[K], sequences []iter.Seq[K]) (iter.Seq[K], error) {
	if compare == nil {
		return nil, errors.New("expected a non-nil comparison function")
	}
	if len(sequences) == 0 {
		return nil, errors.New("expected a non-empty sequences")
	}

	return func(yield func(K) bool) {
		kh := &keyHeap[K]{compare: compare, elements: make([]*heapElement[K], 0, len(sequences))}
		pull := make([]func() (K, bool), len(sequences))
		for seqIdx, seq := range sequences {
			pullFn, stopFn := iter.Pull(seq)
			defer stopFn()
			pull[seqIdx] = pullFn
			if first, hasAny := pullFn(); hasAny {
				heap.Push(kh, &heapElement[K]{key: first, seqIdx: seqIdx})
			}
		}

		// next pops the smallest key and refills the heap from the sequence that produced it.
		next := func() K {
			top := heap.Pop(kh).(*heapElement[K])
			if key, hasNext := pull[top.seqIdx](); hasNext {
				heap.Push(kh, &heapElement[K]{key: key, seqIdx: top.seqIdx})
			}
			return top.key
		}

		if kh.Len() == 0 {
			return
		}
		last := next()
		if !yield(last) {
			return
		}
		for kh.Len() > 0 {
			key := next()
			if compare(key, last) == 0 { // Already yielded.
				continue
			}
			last = key
			if !yield(key) {
				return
			}
		}
	}, nil
}
