// This module keeps the named lists served by the Redis port. Containers aren't safe for concurrent use, so every list
// is guarded by the mutex of the shard its key hashes to. Sharding spreads the locks: clients working on different
// keys rarely wait on each other.

package port

import (
	"cmp"
	"errors"
	"flag"
	"fmt"
	"iter"
	"maps"
	"runtime"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/nobletooth/chains/pkg/queue"
	"github.com/nobletooth/chains/pkg/scan"
	"github.com/nobletooth/chains/pkg/utils"
)

var (
	shardCount = flag.Int("list_shard_count", runtime.NumCPU(),
		"The number of shards the named lists are distributed over; 0 or negative means a single shard.")
	maxListLength = flag.Int("max_list_length", 1_000_000,
		"The maximum number of elements a single list may hold; 0 or negative means unlimited.")
)

var ErrListTooLong = errors.New("list would exceed the maximum length")

// storedList is a list with its length, so pushes and length checks don't walk the chain.
type storedList struct {
	deque  *queue.Deque[string]
	length int
}

// listShard holds the lists whose keys hash to it.
type listShard struct {
	mux   sync.Mutex
	lists map[string]*storedList
}

// ListStore is the storage backend used by the Redis port: a set of named deques.
type ListStore struct {
	shards    []*listShard
	maxLength int
}

// NewListStore creates an empty store according to the configured flags.
func NewListStore() *ListStore {
	count := *shardCount
	if count <= 0 {
		count = 1
	}
	store := &ListStore{shards: make([]*listShard, count), maxLength: *maxListLength}
	for i := range count {
		store.shards[i] = &listShard{lists: make(map[string]*storedList)}
	}
	return store
}

// getShard picks the shard owning `key`.
func (s *ListStore) getShard(key string) *listShard {
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

// push adds `values` one by one at one end of the list, creating it if needed, and returns the new length.
// Either all values are pushed or none.
func (s *ListStore) push(key string, values []string, front bool) (int, error) {
	shard := s.getShard(key)
	shard.mux.Lock()
	defer shard.mux.Unlock()

	list, exists := shard.lists[key]
	length := 0
	if exists {
		length = list.length
	}
	if s.maxLength > 0 && length+len(values) > s.maxLength {
		return length, fmt.Errorf("%w: %d + %d > %d", ErrListTooLong, length, len(values), s.maxLength)
	}
	if !exists {
		list = &storedList{deque: queue.NewDeque[string]()}
		shard.lists[key] = list
	}
	for _, value := range values {
		if front {
			list.deque.PushFront(value)
		} else {
			list.deque.PushBack(value)
		}
	}
	list.length += len(values)
	return list.length, nil
}

// PushFront inserts `values` at the head of the list, in order, and returns the new length.
func (s *ListStore) PushFront(key string, values ...string) (int, error) {
	return s.push(key, values, true /*front*/)
}

// PushBack appends `values` at the tail of the list and returns the new length.
func (s *ListStore) PushBack(key string, values ...string) (int, error) {
	return s.push(key, values, false /*front*/)
}

// pop removes up to `count` elements from one end of the list and reports whether the list existed. Lists left empty
// are deleted.
func (s *ListStore) pop(key string, count int, front bool) ([]string, bool) {
	shard := s.getShard(key)
	shard.mux.Lock()
	defer shard.mux.Unlock()

	list, exists := shard.lists[key]
	if !exists {
		return nil, false
	}
	if count <= 0 {
		return nil, true
	}
	popped := make([]string, 0, min(count, 16))
	for len(popped) < count {
		var value string
		var ok bool
		if front {
			value, ok = list.deque.PopFront()
		} else {
			value, ok = list.deque.PopBack()
		}
		if !ok {
			break
		}
		popped = append(popped, value)
	}
	list.length -= len(popped)
	if list.deque.IsEmpty() {
		delete(shard.lists, key)
		if list.length != 0 {
			utils.RaiseInvariant("port", "length_mismatch", "A stored list length drifted from its deque.",
				"key", key, "length", list.length)
		}
	}
	if len(popped) == 0 {
		utils.RaiseInvariant("port", "empty_list_stored", "An empty list was kept in the store.", "key", key)
		return nil, true
	}
	return popped, true
}

// PopFront removes up to `count` elements from the head of the list. The flag is false if no list is stored under
// `key`.
func (s *ListStore) PopFront(key string, count int) ([]string, bool) {
	return s.pop(key, count, true /*front*/)
}

// PopBack removes up to `count` elements from the tail of the list.
func (s *ListStore) PopBack(key string, count int) ([]string, bool) {
	return s.pop(key, count, false /*front*/)
}

// Len returns the length of the list; missing lists are empty.
func (s *ListStore) Len(key string) int {
	shard := s.getShard(key)
	shard.mux.Lock()
	defer shard.mux.Unlock()

	if list, exists := shard.lists[key]; exists {
		return list.length
	}
	return 0
}

// Range returns the elements between `start` and `stop` inclusive. Negative indexes count from the tail, -1 being the
// last element; out of range indexes are clamped.
func (s *ListStore) Range(key string, start, stop int) []string {
	shard := s.getShard(key)
	shard.mux.Lock()
	defer shard.mux.Unlock()

	list, exists := shard.lists[key]
	if !exists {
		return nil
	}
	length := list.length
	if start < 0 {
		start = max(length+start, 0)
	}
	if stop < 0 {
		stop = length + stop
	}
	stop = min(stop, length-1)
	if start > stop {
		return nil
	}

	values := make([]string, 0, stop-start+1)
	index := 0
	for value := range list.deque.All() {
		if index > stop {
			break
		}
		if index >= start {
			values = append(values, value)
		}
		index++
	}
	return values
}

// Exists reports whether a list is stored under `key`.
func (s *ListStore) Exists(key string) bool {
	shard := s.getShard(key)
	shard.mux.Lock()
	defer shard.mux.Unlock()

	_, exists := shard.lists[key]
	return exists
}

// Delete removes the list stored under `key` and reports whether it existed.
func (s *ListStore) Delete(key string) bool {
	shard := s.getShard(key)
	shard.mux.Lock()
	defer shard.mux.Unlock()

	list, exists := shard.lists[key]
	if !exists {
		return false
	}
	delete(shard.lists, key)
	list.deque.Clear()
	return true
}

// Keys returns the sorted keys matching the glob `pattern`, matched against the whole key like Redis KEYS. Each shard
// is snapshotted under its own lock, so keys written concurrently may or may not be listed.
func (s *ListStore) Keys(pattern string) ([]string, error) {
	shardKeys := make([]iter.Seq[string], len(s.shards))
	for i, shard := range s.shards {
		shard.mux.Lock()
		shardKeys[i] = slices.Values(slices.Sorted(maps.Keys(shard.lists)))
		shard.mux.Unlock()
	}
	merged, err := scan.Merge(cmp.Compare[string], shardKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to merge shard keys: %w", err)
	}
	return slices.Collect(scan.MatchGlob(pattern, merged)), nil
}

// Close tears down every stored list.
func (s *ListStore) Close() error {
	for _, shard := range s.shards {
		shard.mux.Lock()
		for key, list := range shard.lists {
			list.deque.Clear()
			delete(shard.lists, key)
		}
		shard.mux.Unlock()
	}
	return nil
}
