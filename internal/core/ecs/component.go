package ecs

import "reflect"

// ComponentType is the per-world integer tag assigned to a component type
// when it is registered. Tags are dense, starting at 0.
type ComponentType uint32

// ComponentKey names a component type independently of any world. Systems
// use keys to declare their requirements; each world resolves them to its
// own ComponentType.
type ComponentKey struct {
	t        reflect.Type
	newStore func(concurrent bool) Storage
}

// ComponentOf returns the key for component type T.
func ComponentOf[T any]() ComponentKey {
	return ComponentKey{
		t: reflect.TypeFor[T](),
		newStore: func(concurrent bool) Storage {
			return NewComponentArray[T](concurrent)
		},
	}
}

func (k ComponentKey) String() string {
	if k.t == nil {
		return "<nil>"
	}
	return k.t.String()
}

// RegisterComponentType registers T with the manager (idempotent) and
// returns its tag. Registration is what lets RemoveEntity reach T's store.
func RegisterComponentType[T any](m *ComponentManager) ComponentType {
	return m.Register(ComponentOf[T]())
}

// arrayOf returns T's store. When create is set and the manager is not
// strict, an unregistered T is registered on the spot.
func arrayOf[T any](m *ComponentManager, create bool) (*ComponentArray[T], ComponentType, bool) {
	t := reflect.TypeFor[T]()
	ct, ok := m.lookup(t)
	if !ok {
		if !create || m.strict {
			return nil, 0, false
		}
		ct = RegisterComponentType[T](m)
	}
	return m.storage(ct).(*ComponentArray[T]), ct, true
}

// addComponent stores v for id and marks T in id's signature. Returns nil
// when T is unregistered and the manager is strict.
func addComponent[T any](m *ComponentManager, id EntityID, v T) *T {
	arr, ct, ok := arrayOf[T](m, true)
	if !ok {
		return nil
	}
	p := arr.Add(id, v)
	m.attach(id, ct)
	return p
}

func getComponent[T any](m *ComponentManager, id EntityID) *T {
	arr, _, ok := arrayOf[T](m, false)
	if !ok {
		return nil
	}
	return arr.Get(id)
}

func removeComponent[T any](m *ComponentManager, id EntityID) bool {
	arr, ct, ok := arrayOf[T](m, false)
	if !ok {
		return false
	}
	if !arr.Remove(id) {
		return false
	}
	m.detach(id, ct)
	return true
}
