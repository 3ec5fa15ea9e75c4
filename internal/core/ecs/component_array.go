package ecs

import (
	"sort"
	"sync"
	"sync/atomic"
)

const invalidIndex int32 = -1

// rwLocker is satisfied by *sync.RWMutex and by noLock for the
// single-threaded variant.
type rwLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type noLock struct{}

func (noLock) Lock()    {}
func (noLock) Unlock()  {}
func (noLock) RLock()   {}
func (noLock) RUnlock() {}

// Storage is the type-erased view of a ComponentArray used by the
// ComponentManager to fan out entity removal across every component type.
type Storage interface {
	Remove(id EntityID) bool
	Has(id EntityID) bool
	Size() int
}

// ComponentArray is a sparse set mapping entities to components of type T.
//
// Pointers returned by Add and Get stay valid only until the next structural
// mutation of the same array: an Add that appends, a Remove, or a sort.
// Callers must re-resolve with Get after any of those.
type ComponentArray[T any] struct {
	mu            rwLocker
	dense         []T
	denseToEntity []EntityID
	sparse        []int32
	needsSort     atomic.Bool
}

// NewComponentArray creates an empty array. When concurrent is true every
// operation is guarded by a reader/writer lock; otherwise callers serialize
// access themselves.
func NewComponentArray[T any](concurrent bool) *ComponentArray[T] {
	a := &ComponentArray[T]{
		dense:         make([]T, 0, 64),
		denseToEntity: make([]EntityID, 0, 64),
		sparse:        make([]int32, 0, 256),
	}
	if concurrent {
		a.mu = &sync.RWMutex{}
	} else {
		a.mu = noLock{}
	}
	return a
}

// Add stores v for id. An existing component is overwritten in place and its
// slot returned; otherwise v is appended and the array is marked for sorting.
func (a *ComponentArray[T]) Add(id EntityID, v T) *T {
	a.mu.Lock()
	defer a.mu.Unlock()

	if idx := a.indexOf(id); idx != invalidIndex {
		a.dense[idx] = v
		return &a.dense[idx]
	}

	for int(id) >= len(a.sparse) {
		a.sparse = append(a.sparse, invalidIndex)
	}
	a.sparse[id] = int32(len(a.dense))
	a.dense = append(a.dense, v)
	a.denseToEntity = append(a.denseToEntity, id)
	a.needsSort.Store(true)
	return &a.dense[len(a.dense)-1]
}

// Get returns the component for id, or nil when id has none.
func (a *ComponentArray[T]) Get(id EntityID) *T {
	a.mu.RLock()
	defer a.mu.RUnlock()

	idx := a.indexOf(id)
	if idx == invalidIndex {
		return nil
	}
	return &a.dense[idx]
}

func (a *ComponentArray[T]) Has(id EntityID) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.indexOf(id) != invalidIndex
}

// Remove deletes id's component by swapping the last dense slot into its
// place. Returns false (and does nothing) when id has no component.
func (a *ComponentArray[T]) Remove(id EntityID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := a.indexOf(id)
	if idx == invalidIndex {
		return false
	}
	last := int32(len(a.dense) - 1)
	if idx != last {
		moved := a.denseToEntity[last]
		a.dense[idx] = a.dense[last]
		a.denseToEntity[idx] = moved
		a.sparse[moved] = idx
		// The tail is no longer ordered relative to the moved slot.
		a.needsSort.Store(true)
	}
	var zero T
	a.dense[last] = zero
	a.dense = a.dense[:last]
	a.denseToEntity = a.denseToEntity[:last]
	a.sparse[id] = invalidIndex
	return true
}

func (a *ComponentArray[T]) Size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.dense)
}

// SortByEntityID orders the dense arrays by ascending entity ID. It only does
// work when an insertion or swap happened since the previous sort.
func (a *ComponentArray[T]) SortByEntityID() {
	if !a.needsSort.Load() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sortLocked()
}

func (a *ComponentArray[T]) sortLocked() {
	if !a.needsSort.Load() {
		return
	}
	sort.Sort(byEntity[T]{a})
	a.needsSort.Store(false)
}

// Each sorts the array if needed and calls fn for every component in entity
// order. The exclusive lock is held for the whole walk, so fn must not call
// back into this array.
func (a *ComponentArray[T]) Each(fn func(EntityID, *T)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sortLocked()
	for i := range a.dense {
		fn(a.denseToEntity[i], &a.dense[i])
	}
}

// Values returns the sorted dense slice itself. It aliases internal storage
// and is invalidated by the next structural mutation.
func (a *ComponentArray[T]) Values() []T {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sortLocked()
	return a.dense
}

// Entities returns the sorted dense entity slice, parallel to Values.
func (a *ComponentArray[T]) Entities() []EntityID {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sortLocked()
	return a.denseToEntity
}

// NeedsSort reports whether the dense order is stale.
func (a *ComponentArray[T]) NeedsSort() bool {
	return a.needsSort.Load()
}

func (a *ComponentArray[T]) indexOf(id EntityID) int32 {
	if id == NullEntity || int(id) >= len(a.sparse) {
		return invalidIndex
	}
	return a.sparse[id]
}

// byEntity sorts dense and denseToEntity in tandem and keeps sparse in step.
type byEntity[T any] struct {
	a *ComponentArray[T]
}

func (s byEntity[T]) Len() int { return len(s.a.dense) }

func (s byEntity[T]) Less(i, j int) bool {
	return s.a.denseToEntity[i] < s.a.denseToEntity[j]
}

func (s byEntity[T]) Swap(i, j int) {
	a := s.a
	a.dense[i], a.dense[j] = a.dense[j], a.dense[i]
	a.denseToEntity[i], a.denseToEntity[j] = a.denseToEntity[j], a.denseToEntity[i]
	a.sparse[a.denseToEntity[i]] = int32(i)
	a.sparse[a.denseToEntity[j]] = int32(j)
}
