package system

import (
	"time"

	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/core/ecs"
	"github.com/prism3d/engine/internal/core/event"
	"github.com/prism3d/engine/internal/scripting"
	"go.uber.org/zap"
)

// ScriptSystem runs each subscriber's Lua behaviour once per frame and
// applies the returned position and rotation. A behaviour that fails is
// logged once and skipped until the entity re-subscribes.
type ScriptSystem struct {
	lua    *scripting.Engine
	bus    *event.Bus
	log    *zap.Logger
	failed map[ecs.EntityID]struct{}
}

func NewScriptSystem(lua *scripting.Engine, bus *event.Bus, log *zap.Logger) *ScriptSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScriptSystem{
		lua:    lua,
		bus:    bus,
		log:    log,
		failed: make(map[ecs.EntityID]struct{}),
	}
}

func (s *ScriptSystem) SystemName() string { return "script" }

func (s *ScriptSystem) RequiredComponents() []ecs.ComponentKey {
	return []ecs.ComponentKey{
		ecs.ComponentOf[component.Transform](),
		ecs.ComponentOf[component.Script](),
	}
}

func (s *ScriptSystem) OnRegistered(_ *ecs.World) {
	event.Subscribe(s.bus, func(ev event.EntityDestroyed) {
		s.lua.ReleaseEntity(ev.Entity)
	})
}

func (s *ScriptSystem) OnEntityUnsubscribed(_ *ecs.World, id ecs.EntityID) {
	delete(s.failed, id)
}

func (s *ScriptSystem) ProcessEntity(w *ecs.World, dt time.Duration, id ecs.EntityID) {
	if _, bad := s.failed[id]; bad {
		return
	}
	sc := ecs.GetComponent[component.Script](w, id)
	t := ecs.GetComponent[component.Transform](w, id)
	if sc == nil || t == nil {
		return
	}
	out, err := s.lua.Behaviour(sc.Behaviour, id, dt, scripting.BehaviourInput{
		Position: t.Position,
		Rotation: component.QuatToEulerDeg(t.Rotation),
	})
	if err != nil {
		s.failed[id] = struct{}{}
		s.log.Warn("SCRIPT::WARNING behaviour failed, disabling for entity",
			zap.Uint32("entity", uint32(id)), zap.String("behaviour", sc.Behaviour), zap.Error(err))
		return
	}
	if out.SetPosition {
		t.Position = out.Position
	}
	if out.SetRotation {
		t.Rotation = component.EulerDegToQuat(out.Rotation)
	}
}
