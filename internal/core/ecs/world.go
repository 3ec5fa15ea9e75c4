package ecs

import (
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Options selects the access discipline of a World.
type Options struct {
	// Concurrent guards every component array with a reader/writer lock so
	// systems may read components from several goroutines. Only reads
	// (GetComponent, HasComponent, Each) and CreateEntity are safe in
	// parallel: AddComponent, RemoveComponent, subscription changes and
	// DestroyEntity update the unlocked SystemManager and must stay on one
	// goroutine.
	Concurrent bool
	// StrictComponentTypes refuses AddComponent for types that were never
	// registered, instead of registering them on first use.
	StrictComponentTypes bool
}

// World is the top-level ECS container and the only entry point engine code
// uses. It owns the entity allocator, the active set, the component, context
// and system managers, and a deferred destruction queue.
//
// Every operation taking a caller-supplied entity first checks that the
// entity is active; an inactive entity is logged and the call is a no-op.
type World struct {
	log        *zap.Logger
	allocator  *EntityAllocator
	activeMu   sync.RWMutex
	active     *ActiveSet
	components *ComponentManager
	contexts   *ContextManager
	systems    *SystemManager

	destroyMu    sync.Mutex
	destroyQueue []EntityID
}

func NewWorld(log *zap.Logger, opts Options) *World {
	if log == nil {
		log = zap.NewNop()
	}
	w := &World{
		log:          log,
		allocator:    NewEntityAllocator(),
		active:       NewActiveSet(),
		components:   NewComponentManager(opts.Concurrent, opts.StrictComponentTypes),
		contexts:     NewContextManager(),
		destroyQueue: make([]EntityID, 0, 64),
	}
	w.systems = newSystemManager(w, log)
	return w
}

func (w *World) Logger() *zap.Logger                 { return w.log }
func (w *World) ComponentManager() *ComponentManager { return w.components }
func (w *World) SystemManager() *SystemManager       { return w.systems }
func (w *World) ContextManager() *ContextManager     { return w.contexts }

// CreateEntity issues a new entity and marks it active. Safe to call from
// several goroutines.
func (w *World) CreateEntity() EntityID {
	id := w.allocator.Create()
	w.activeMu.Lock()
	w.active.Insert(id)
	w.activeMu.Unlock()
	return id
}

func (w *World) IsActive(id EntityID) bool {
	w.activeMu.RLock()
	defer w.activeMu.RUnlock()
	return w.active.Contains(id)
}

// EntityCount returns the number of active entities.
func (w *World) EntityCount() int {
	w.activeMu.RLock()
	defer w.activeMu.RUnlock()
	return w.active.Len()
}

// DestroyEntity removes id's components, unsubscribes it from every system,
// then deactivates it. Context bindings pointing at id are left in place.
func (w *World) DestroyEntity(id EntityID) bool {
	if !w.IsActive(id) {
		w.log.Warn("ENTITY::WARNING destroy of inactive entity", zap.Uint32("entity", uint32(id)))
		return false
	}
	w.components.RemoveEntity(id)
	w.systems.UnsubscribeFromAll(id)
	w.activeMu.Lock()
	w.active.Erase(id)
	w.activeMu.Unlock()
	return true
}

// MarkForDestruction queues an entity for FlushDestroyQueue.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyMu.Lock()
	w.destroyQueue = append(w.destroyQueue, id)
	w.destroyMu.Unlock()
}

// FlushDestroyQueue destroys every queued entity that is still active and
// returns the ones actually destroyed, in queue order.
func (w *World) FlushDestroyQueue() []EntityID {
	w.destroyMu.Lock()
	queue := w.destroyQueue
	w.destroyQueue = make([]EntityID, 0, cap(queue))
	w.destroyMu.Unlock()

	destroyed := make([]EntityID, 0, len(queue))
	for _, id := range queue {
		if !w.IsActive(id) {
			continue // queued twice, or destroyed directly
		}
		w.DestroyEntity(id)
		destroyed = append(destroyed, id)
	}
	return destroyed
}

func (w *World) checkActive(id EntityID, op string, what string) bool {
	if w.IsActive(id) {
		return true
	}
	w.log.Warn("ENTITY::WARNING "+op+" on inactive entity",
		zap.Uint32("entity", uint32(id)), zap.String("target", what))
	return false
}

// AddSystem registers s after all previously added systems.
func (w *World) AddSystem(s System) bool {
	return w.systems.Add(s)
}

// SubscribeKey subscribes id to the system registered under key.
func (w *World) SubscribeKey(id EntityID, key SystemKey) bool {
	if !w.checkActive(id, "subscribe", key.String()) {
		return false
	}
	return w.systems.Subscribe(id, key)
}

// SubscribeByName subscribes id to the system with the given name.
func (w *World) SubscribeByName(id EntityID, name string) bool {
	key, ok := w.systems.KeyByName(name)
	if !ok {
		w.log.Warn("SYSTEM::WARNING subscribe to unknown system name",
			zap.Uint32("entity", uint32(id)), zap.String("system", name))
		return false
	}
	return w.SubscribeKey(id, key)
}

// UnsubscribeKey removes id from the system registered under key.
func (w *World) UnsubscribeKey(id EntityID, key SystemKey) bool {
	if !w.checkActive(id, "unsubscribe", key.String()) {
		return false
	}
	return w.systems.Unsubscribe(id, key)
}

// SystemEntities returns key's subscribers in subscription order.
func (w *World) SystemEntities(key SystemKey) []EntityID {
	return w.systems.Entities(key)
}

// EntitySystems returns the systems id is subscribed to.
func (w *World) EntitySystems(id EntityID) []SystemKey {
	return w.systems.Systems(id)
}

// Update runs all systems once.
func (w *World) Update(dt time.Duration) {
	w.systems.Update(dt)
}

// Shutdown runs system shutdown hooks, last registered first.
func (w *World) Shutdown() {
	w.systems.Shutdown()
}

// SystemTimings reports how long each system took during the last Update.
func (w *World) SystemTimings(fn func(name string, took time.Duration)) {
	w.systems.Timings(fn)
}

// ---------------------------------------------------------------------------
// Typed operations
// ---------------------------------------------------------------------------

// AddComponent attaches v to id, overwriting an existing T, and subscribes id
// to any mandatory system it now qualifies for. The returned pointer follows
// the ComponentArray invalidation rules.
func AddComponent[T any](w *World, id EntityID, v T) *T {
	if !w.checkActive(id, "add component", typeName[T]()) {
		return nil
	}
	if addComponent(w.components, id, v) == nil {
		w.log.Warn("COMPONENT::WARNING add of unregistered component type",
			zap.Uint32("entity", uint32(id)), zap.String("component", typeName[T]()))
		return nil
	}
	w.systems.CheckForNewSubscriptions(id)
	// Subscription hooks may have grown this store.
	return getComponent[T](w.components, id)
}

// GetComponent returns id's T, or nil if id is inactive or has none.
func GetComponent[T any](w *World, id EntityID) *T {
	if !w.checkActive(id, "get component", typeName[T]()) {
		return nil
	}
	return getComponent[T](w.components, id)
}

func HasComponent[T any](w *World, id EntityID) bool {
	if !w.IsActive(id) {
		return false
	}
	return getComponent[T](w.components, id) != nil
}

// RemoveComponent detaches id's T and evicts id from systems that required
// it. No-op when id has no T.
func RemoveComponent[T any](w *World, id EntityID) {
	if !w.checkActive(id, "remove component", typeName[T]()) {
		return
	}
	if removeComponent[T](w.components, id) {
		w.systems.CheckEntitySubscriptions(id)
	}
}

// Components returns the store for T, registering T unless the world is
// strict. Returns nil for an unregistered T in strict mode.
func Components[T any](w *World) *ComponentArray[T] {
	arr, _, ok := arrayOf[T](w.components, true)
	if !ok {
		return nil
	}
	return arr
}

// Each walks every T in entity order.
func Each[T any](w *World, fn func(EntityID, *T)) {
	if arr := Components[T](w); arr != nil {
		arr.Each(fn)
	}
}

// RegisterComponent registers T with w.
func RegisterComponent[T any](w *World) ComponentType {
	return RegisterComponentType[T](w.components)
}

func Subscribe[S any](w *World, id EntityID) bool {
	return w.SubscribeKey(id, SystemOf[S]())
}

func Unsubscribe[S any](w *World, id EntityID) bool {
	return w.UnsubscribeKey(id, SystemOf[S]())
}

// GetSystem returns the registered instance of S.
func GetSystem[S any](w *World) (S, bool) {
	s, ok := w.systems.Get(SystemOf[S]())
	if !ok {
		var zero S
		return zero, false
	}
	typed, ok := s.(S)
	return typed, ok
}

// RegisterContext binds tag type Tag to id, replacing any previous binding.
func RegisterContext[Tag any](w *World, id EntityID) {
	tag := reflect.TypeFor[Tag]()
	if prev := w.contexts.set(tag, id); prev != NullEntity && prev != id {
		w.log.Debug("context rebound", zap.String("context", tag.String()),
			zap.Uint32("from", uint32(prev)), zap.Uint32("to", uint32(id)))
	}
}

// GetContext returns the entity bound to Tag, or NullEntity.
func GetContext[Tag any](w *World) EntityID {
	return w.contexts.get(reflect.TypeFor[Tag]())
}

// GetContextComponent resolves Tag's entity and returns its C. An unbound
// tag yields nil silently; a bound but destroyed entity is logged.
func GetContextComponent[Tag any, C any](w *World) *C {
	id := GetContext[Tag](w)
	if id == NullEntity {
		return nil
	}
	return GetComponent[C](w, id)
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
