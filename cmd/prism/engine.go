package main

import (
	"context"
	"fmt"

	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/config"
	"github.com/prism3d/engine/internal/core/ecs"
	"github.com/prism3d/engine/internal/core/event"
	"github.com/prism3d/engine/internal/data"
	"github.com/prism3d/engine/internal/persist"
	"github.com/prism3d/engine/internal/render"
	"github.com/prism3d/engine/internal/scripting"
	"github.com/prism3d/engine/internal/system"
	"go.uber.org/zap"
)

// engine is a world with its systems registered and a scene spawned.
type engine struct {
	world    *ecs.World
	bus      *event.Bus
	lua      *scripting.Engine
	backend  *render.Headless
	input    *system.InputSystem
	render   *system.RenderSystem
	cleanup  *system.CleanupSystem
	profiler *system.ProfilerSystem
	entities map[string]ecs.EntityID
	db       *persist.DB
}

// buildEngine wires the world in frame order. sink may be nil, in which
// case no profiler is registered.
func buildEngine(cfg *config.Config, scene *data.Scene, sink system.ProfileSink, log *zap.Logger) (*engine, error) {
	lua, err := scripting.NewEngine(cfg.Scripts.Dir, log)
	if err != nil {
		return nil, fmt.Errorf("scripting: %w", err)
	}

	e := &engine{
		world: ecs.NewWorld(log, ecs.Options{
			Concurrent:           cfg.Engine.ConcurrentStores,
			StrictComponentTypes: cfg.Engine.StrictComponentTypes,
		}),
		bus:     event.NewBus(),
		lua:     lua,
		backend: render.NewHeadless(),
	}
	w := e.world

	if cfg.Engine.StrictComponentTypes {
		registerComponents(w)
	}

	buffers := system.NewBufferUpdateSystem(e.backend)
	e.input = system.NewInputSystem(system.NewScriptedInput(cfg.Window.Width, cfg.Window.Height), e.bus, cfg.Window, log)
	e.render = system.NewRenderSystem(e.backend, buffers, log)
	e.cleanup = system.NewCleanupSystem(e.bus)

	w.AddSystem(system.NewEventSystem(e.bus))
	w.AddSystem(e.input)
	w.AddSystem(system.NewScriptSystem(lua, e.bus, log))
	w.AddSystem(system.NewMovementSystem())
	w.AddSystem(system.NewTransformSystem(log))
	w.AddSystem(system.NewCameraSystem())
	w.AddSystem(buffers)
	w.AddSystem(e.render)
	if sink != nil {
		e.profiler = system.NewProfilerSystem(sink, cfg.Profiling.FlushEvery, log)
		w.AddSystem(e.profiler)
	}
	w.AddSystem(e.cleanup)

	ids, err := data.Spawn(w, scene)
	if err != nil {
		lua.Close()
		return nil, err
	}
	e.entities = ids
	return e, nil
}

func registerComponents(w *ecs.World) {
	ecs.RegisterComponent[component.Transform](w)
	ecs.RegisterComponent[component.Parent](w)
	ecs.RegisterComponent[component.Velocity](w)
	ecs.RegisterComponent[component.Camera](w)
	ecs.RegisterComponent[component.Renderable](w)
	ecs.RegisterComponent[component.Script](w)
	ecs.RegisterComponent[component.WindowState](w)
	ecs.RegisterComponent[component.InputState](w)
}

// openProfileSink connects to the profile database and starts a run.
func openProfileSink(ctx context.Context, cfg *config.Config, label string, log *zap.Logger) (*persist.DB, *persist.RunSink, error) {
	db, err := persist.NewDB(ctx, cfg.Profiling, log)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	repo := persist.NewProfileRepo(db)
	runID, err := repo.BeginRun(ctx, label, cfg.Engine.TickRate)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info("profile run started", zap.Int64("run", runID))
	return db, persist.NewRunSink(repo, runID), nil
}

func (e *engine) Close() {
	e.lua.Close()
	if e.db != nil {
		e.db.Close()
	}
}

func (e *engine) printStats() {
	w := e.world
	printStat("entities", w.EntityCount())
	printStat("component types", w.ComponentManager().TypeCount())
	printStat("systems", w.SystemManager().Len())
	sm := w.SystemManager()
	for _, name := range sm.Names() {
		key, _ := sm.KeyByName(name)
		printStat("  "+name, sm.SubscriberCount(key))
	}
	frame := e.render.LastFrame()
	printStat("draw calls", frame.DrawCalls())
	printStat("instances", frame.Instances())
}
