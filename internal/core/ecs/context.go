package ecs

import (
	"reflect"
	"sync"
)

// ContextManager binds tag types (for example a MainCameraContext struct)
// to the one entity currently playing that role.
type ContextManager struct {
	mu       sync.RWMutex
	bindings map[reflect.Type]EntityID
}

func NewContextManager() *ContextManager {
	return &ContextManager{bindings: make(map[reflect.Type]EntityID, 8)}
}

func (c *ContextManager) set(tag reflect.Type, id EntityID) (prev EntityID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev = c.bindings[tag]
	c.bindings[tag] = id
	return prev
}

func (c *ContextManager) get(tag reflect.Type) EntityID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bindings[tag]
}

// Len returns the number of bound tags.
func (c *ContextManager) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bindings)
}
