package ecs

import (
	"reflect"
	"sync"

	"github.com/kelindar/bitmap"
)

type componentInfo struct {
	name  string
	store Storage
}

// ComponentManager owns one ComponentArray per registered component type and
// a signature bitmap per entity recording which types it currently holds.
type ComponentManager struct {
	mu         rwLocker
	concurrent bool
	strict     bool
	types      map[reflect.Type]ComponentType
	infos      []componentInfo
	signatures []bitmap.Bitmap
}

// NewComponentManager creates an empty manager. concurrent selects locked
// component arrays; strict refuses components whose type was never
// registered with RegisterComponentType.
func NewComponentManager(concurrent, strict bool) *ComponentManager {
	m := &ComponentManager{
		concurrent: concurrent,
		strict:     strict,
		types:      make(map[reflect.Type]ComponentType, 16),
		infos:      make([]componentInfo, 0, 16),
		signatures: make([]bitmap.Bitmap, 0, 256),
	}
	if concurrent {
		m.mu = &sync.RWMutex{}
	} else {
		m.mu = noLock{}
	}
	return m
}

func (m *ComponentManager) register(t reflect.Type, newStore func(concurrent bool) Storage) (ComponentType, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ct, ok := m.types[t]; ok {
		return ct, false
	}
	ct := ComponentType(len(m.infos))
	m.types[t] = ct
	m.infos = append(m.infos, componentInfo{name: t.String(), store: newStore(m.concurrent)})
	return ct, true
}

func (m *ComponentManager) lookup(t reflect.Type) (ComponentType, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ct, ok := m.types[t]
	return ct, ok
}

func (m *ComponentManager) storage(ct ComponentType) Storage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.infos[ct].store
}

// Register registers key's type (idempotent) and returns its tag.
func (m *ComponentManager) Register(key ComponentKey) ComponentType {
	ct, _ := m.register(key.t, key.newStore)
	return ct
}

// Registered reports whether key's type has been registered.
func (m *ComponentManager) Registered(key ComponentKey) bool {
	_, ok := m.lookup(key.t)
	return ok
}

// TypeName returns the Go type name registered under ct.
func (m *ComponentManager) TypeName(ct ComponentType) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(ct) >= len(m.infos) {
		return "<unknown>"
	}
	return m.infos[ct].name
}

// TypeCount returns the number of registered component types.
func (m *ComponentManager) TypeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.infos)
}

func (m *ComponentManager) attach(id EntityID, ct ComponentType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for int(id) >= len(m.signatures) {
		m.signatures = append(m.signatures, nil)
	}
	m.signatures[id].Set(uint32(ct))
}

func (m *ComponentManager) detach(id EntityID, ct ComponentType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(id) < len(m.signatures) {
		m.signatures[id].Remove(uint32(ct))
	}
}

// HasAll reports whether id currently holds every component type in want.
func (m *ComponentManager) HasAll(id EntityID, want bitmap.Bitmap) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	need := want.Count()
	if need == 0 {
		return true
	}
	if int(id) >= len(m.signatures) {
		return false
	}
	intersect := want.Clone(nil)
	intersect.And(m.signatures[id])
	return intersect.Count() == need
}

// Count returns how many component types id holds.
func (m *ComponentManager) Count(id EntityID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(id) >= len(m.signatures) {
		return 0
	}
	return m.signatures[id].Count()
}

// RemoveEntity removes id from every registered store and clears its
// signature. Returns the number of components removed.
func (m *ComponentManager) RemoveEntity(id EntityID) int {
	m.mu.RLock()
	stores := make([]Storage, len(m.infos))
	for i := range m.infos {
		stores[i] = m.infos[i].store
	}
	m.mu.RUnlock()

	removed := 0
	for _, s := range stores {
		if s.Remove(id) {
			removed++
		}
	}

	m.mu.Lock()
	if int(id) < len(m.signatures) {
		m.signatures[id] = nil
	}
	m.mu.Unlock()
	return removed
}
