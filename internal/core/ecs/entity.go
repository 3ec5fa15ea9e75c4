package ecs

import "sync/atomic"

// EntityID is an opaque handle. IDs are issued from a strictly increasing
// counter and are never reused; 0 is reserved as the null entity.
type EntityID uint32

// NullEntity is the unset/absent entity.
const NullEntity EntityID = 0

func (id EntityID) IsZero() bool { return id == NullEntity }

// EntityAllocator issues entity IDs. Safe for concurrent use.
type EntityAllocator struct {
	last atomic.Uint32
}

func NewEntityAllocator() *EntityAllocator {
	return &EntityAllocator{}
}

// Create returns a fresh, never-before-issued ID. The first ID is 1.
func (a *EntityAllocator) Create() EntityID {
	return EntityID(a.last.Add(1))
}

// Issued returns how many IDs have been handed out so far.
func (a *EntityAllocator) Issued() uint32 {
	return a.last.Load()
}
