package ecs

import (
	"slices"
	"time"

	"github.com/kelindar/bitmap"
	"go.uber.org/zap"
)

type systemRecord struct {
	key       SystemKey
	name      string
	sys       System
	signature bitmap.Bitmap
	mandatory bool
	entities  []EntityID // subscription order
	members   map[EntityID]struct{}
	pending   map[EntityID]struct{} // inside OnEntitySubscribed
	scratch   []EntityID
	took      time.Duration
}

// SystemManager owns the registered systems and the two subscription
// indices: system -> entities and entity -> systems. The indices are kept as
// exact inverses of each other. Not safe for concurrent use.
type SystemManager struct {
	world         *World
	log           *zap.Logger
	records       []*systemRecord
	byKey         map[SystemKey]int
	byName        map[string]int
	entitySystems map[EntityID][]int
}

func newSystemManager(w *World, log *zap.Logger) *SystemManager {
	return &SystemManager{
		world:         w,
		log:           log,
		records:       make([]*systemRecord, 0, 16),
		byKey:         make(map[SystemKey]int, 16),
		byName:        make(map[string]int, 16),
		entitySystems: make(map[EntityID][]int, 256),
	}
}

// Add registers s after every previously added system and runs its
// OnRegistered hook. One instance per concrete type.
func (m *SystemManager) Add(s System) bool {
	if s == nil {
		m.log.Warn("SYSTEM::WARNING refusing nil system")
		return false
	}
	name := systemName(s)
	_, isUpdater := s.(Updater)
	_, isProcessor := s.(EntityProcessor)
	if !isUpdater && !isProcessor {
		m.log.Warn("SYSTEM::WARNING system implements neither Update nor ProcessEntity", zap.String("system", name))
		return false
	}
	key := systemKeyOf(s)
	if _, dup := m.byKey[key]; dup {
		m.log.Warn("SYSTEM::WARNING system already registered", zap.String("system", name))
		return false
	}

	rec := &systemRecord{
		key:     key,
		name:    name,
		sys:     s,
		members: make(map[EntityID]struct{}, 64),
		pending: make(map[EntityID]struct{}),
	}
	if r, ok := s.(Requirer); ok {
		required := r.RequiredComponents()
		if m.world.components.strict {
			for _, ck := range required {
				if !m.world.components.Registered(ck) {
					m.log.Warn("SYSTEM::WARNING system requires unregistered component type",
						zap.String("system", name), zap.String("component", ck.String()))
					return false
				}
			}
		}
		for _, ck := range required {
			rec.signature.Set(uint32(m.world.components.Register(ck)))
		}
	}
	if md, ok := s.(Mandatory); ok {
		rec.mandatory = md.Mandatory()
	}

	m.byKey[key] = len(m.records)
	m.byName[name] = len(m.records)
	m.records = append(m.records, rec)

	if h, ok := s.(RegisteredHook); ok {
		h.OnRegistered(m.world)
	}
	return true
}

// Get returns the registered instance for key.
func (m *SystemManager) Get(key SystemKey) (System, bool) {
	idx, ok := m.byKey[key]
	if !ok {
		return nil, false
	}
	return m.records[idx].sys, true
}

// KeyByName resolves a system name (see Named) to its key.
func (m *SystemManager) KeyByName(name string) (SystemKey, bool) {
	idx, ok := m.byName[name]
	if !ok {
		return SystemKey{}, false
	}
	return m.records[idx].key, true
}

func (m *SystemManager) Len() int { return len(m.records) }

// Names returns system names in registration order.
func (m *SystemManager) Names() []string {
	names := make([]string, len(m.records))
	for i, rec := range m.records {
		names[i] = rec.name
	}
	return names
}

func (m *SystemManager) shouldProcess(rec *systemRecord, id EntityID) bool {
	if f, ok := rec.sys.(EntityFilter); ok {
		return f.ShouldProcessEntity(m.world, id)
	}
	return m.world.components.HasAll(id, rec.signature)
}

// Subscribe subscribes id to the system registered under key and then to
// every system it depends on.
func (m *SystemManager) Subscribe(id EntityID, key SystemKey) bool {
	return m.subscribe(id, key, false)
}

func (m *SystemManager) subscribe(id EntityID, key SystemKey, cascaded bool) bool {
	idx, ok := m.byKey[key]
	if !ok {
		m.log.Warn("SYSTEM::WARNING subscribe to unregistered system",
			zap.Uint32("entity", uint32(id)), zap.String("system", key.String()))
		return false
	}
	rec := m.records[idx]

	if !m.shouldProcess(rec, id) {
		m.log.Warn("SYSTEM::WARNING entity does not satisfy system requirements",
			zap.Uint32("entity", uint32(id)), zap.String("system", rec.name))
		return false
	}
	_, already := rec.members[id]
	if _, busy := rec.pending[id]; busy {
		already = true
	}
	if already {
		if cascaded {
			m.log.Debug("dependency already subscribed",
				zap.Uint32("entity", uint32(id)), zap.String("system", rec.name))
		} else {
			m.log.Warn("SYSTEM::WARNING entity already subscribed",
				zap.Uint32("entity", uint32(id)), zap.String("system", rec.name))
		}
		return false
	}

	if h, ok := rec.sys.(SubscribedHook); ok {
		rec.pending[id] = struct{}{}
		h.OnEntitySubscribed(m.world, id)
		delete(rec.pending, id)

		// The hook may have changed id's components or subscriptions.
		if _, member := rec.members[id]; member {
			return false
		}
		if !m.world.IsActive(id) || !m.shouldProcess(rec, id) {
			m.log.Warn("SYSTEM::WARNING entity changed during subscription, not subscribing",
				zap.Uint32("entity", uint32(id)), zap.String("system", rec.name))
			if u, ok := rec.sys.(UnsubscribedHook); ok {
				u.OnEntityUnsubscribed(m.world, id)
			}
			return false
		}
	}
	rec.members[id] = struct{}{}
	rec.entities = append(rec.entities, id)
	m.entitySystems[id] = append(m.entitySystems[id], idx)

	if d, ok := rec.sys.(Dependent); ok {
		for _, dep := range d.SystemDependencies() {
			m.subscribe(id, dep, true)
		}
	}
	return true
}

// Unsubscribe removes id from the system registered under key. No-op when
// id is not subscribed.
func (m *SystemManager) Unsubscribe(id EntityID, key SystemKey) bool {
	idx, ok := m.byKey[key]
	if !ok {
		return false
	}
	rec := m.records[idx]
	if _, member := rec.members[id]; !member {
		return false
	}

	if h, ok := rec.sys.(UnsubscribedHook); ok {
		h.OnEntityUnsubscribed(m.world, id)
	}
	delete(rec.members, id)
	if i := slices.Index(rec.entities, id); i >= 0 {
		rec.entities = slices.Delete(rec.entities, i, i+1)
	}
	systems := m.entitySystems[id]
	if i := slices.Index(systems, idx); i >= 0 {
		systems = slices.Delete(systems, i, i+1)
	}
	if len(systems) == 0 {
		delete(m.entitySystems, id)
	} else {
		m.entitySystems[id] = systems
	}
	return true
}

// UnsubscribeFromAll unsubscribes id from every system it belongs to.
func (m *SystemManager) UnsubscribeFromAll(id EntityID) {
	for _, idx := range slices.Clone(m.entitySystems[id]) {
		m.Unsubscribe(id, m.records[idx].key)
	}
}

// CheckEntitySubscriptions evicts id from every subscribed system whose
// requirements it no longer meets.
func (m *SystemManager) CheckEntitySubscriptions(id EntityID) {
	for _, idx := range slices.Clone(m.entitySystems[id]) {
		rec := m.records[idx]
		if m.shouldProcess(rec, id) {
			continue
		}
		m.log.Warn("SYSTEM::WARNING entity lost required components, unsubscribing",
			zap.Uint32("entity", uint32(id)), zap.String("system", rec.name))
		m.Unsubscribe(id, rec.key)
	}
}

// CheckForNewSubscriptions subscribes id to every mandatory system it now
// qualifies for.
func (m *SystemManager) CheckForNewSubscriptions(id EntityID) {
	for _, rec := range m.records {
		if !rec.mandatory {
			continue
		}
		if _, member := rec.members[id]; member {
			continue
		}
		if _, busy := rec.pending[id]; busy {
			continue
		}
		if m.shouldProcess(rec, id) {
			m.subscribe(id, rec.key, true)
		}
	}
}

// IsSubscribed reports whether id is subscribed to key.
func (m *SystemManager) IsSubscribed(id EntityID, key SystemKey) bool {
	idx, ok := m.byKey[key]
	if !ok {
		return false
	}
	_, member := m.records[idx].members[id]
	return member
}

// Entities returns a copy of key's subscriber list in subscription order.
func (m *SystemManager) Entities(key SystemKey) []EntityID {
	idx, ok := m.byKey[key]
	if !ok {
		return nil
	}
	return slices.Clone(m.records[idx].entities)
}

// SubscriberCount returns the number of entities subscribed to key.
func (m *SystemManager) SubscriberCount(key SystemKey) int {
	idx, ok := m.byKey[key]
	if !ok {
		return 0
	}
	return len(m.records[idx].entities)
}

// Systems returns the keys of the systems id is subscribed to.
func (m *SystemManager) Systems(id EntityID) []SystemKey {
	idxs := m.entitySystems[id]
	keys := make([]SystemKey, len(idxs))
	for i, idx := range idxs {
		keys[i] = m.records[idx].key
	}
	return keys
}

// Update runs every system once, in registration order.
func (m *SystemManager) Update(dt time.Duration) {
	for _, rec := range m.records {
		start := time.Now()
		rec.scratch = append(rec.scratch[:0], rec.entities...)
		switch s := rec.sys.(type) {
		case Updater:
			s.Update(m.world, dt, rec.scratch)
		case EntityProcessor:
			for _, id := range rec.scratch {
				// Earlier entities may have unsubscribed later ones.
				if _, member := rec.members[id]; member {
					s.ProcessEntity(m.world, dt, id)
				}
			}
		}
		rec.took = time.Since(start)
	}
}

// Shutdown runs OnShutdown hooks in reverse registration order.
func (m *SystemManager) Shutdown() {
	for i := len(m.records) - 1; i >= 0; i-- {
		if h, ok := m.records[i].sys.(ShutdownHook); ok {
			h.OnShutdown(m.world)
		}
	}
}

// Timings calls fn with each system's duration from the last Update.
func (m *SystemManager) Timings(fn func(name string, took time.Duration)) {
	for _, rec := range m.records {
		fn(rec.name, rec.took)
	}
}
