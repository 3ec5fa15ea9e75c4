package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prism3d/engine/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// APIVersion is exposed to scripts as the API_VERSION global.
const APIVersion = 1

// Engine wraps a single gopher-lua VM running entity behaviours.
// Single-goroutine access only (frame loop).
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	states map[ecs.EntityID]*lua.LTable
}

// NewEngine creates a Lua engine and loads every .lua file under
// scriptsDir, top level first, then subdirectories in name order. A missing
// directory yields an empty engine.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	e := &Engine{
		vm:     vm,
		log:    log,
		states: make(map[ecs.EntityID]*lua.LTable, 64),
	}
	e.registerAPI()

	if scriptsDir == "" {
		return e, nil
	}
	if err := e.loadTree(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// registerAPI exposes logging helpers to scripts.
func (e *Engine) registerAPI() {
	e.vm.SetGlobal("log_info", e.vm.NewFunction(func(L *lua.LState) int {
		e.log.Info("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	e.vm.SetGlobal("log_warn", e.vm.NewFunction(func(L *lua.LState) int {
		e.log.Warn("SCRIPT::WARNING " + L.CheckString(1))
		return 0
	}))
}

func (e *Engine) loadTree(root string) error {
	if err := e.loadDir(root); err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() {
			if err := e.loadTree(filepath.Join(root, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs an inline chunk. name is only used in errors.
func (e *Engine) LoadString(name, src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return nil
}

// HasBehaviour reports whether a global function called name exists.
func (e *Engine) HasBehaviour(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// BehaviourInput is the entity state handed to a behaviour.
type BehaviourInput struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3 // euler degrees
}

// BehaviourOutput holds what the behaviour chose to change.
type BehaviourOutput struct {
	Position    mgl32.Vec3
	Rotation    mgl32.Vec3
	SetPosition bool
	SetRotation bool
}

// Behaviour calls the global Lua function name(ctx) for entity. ctx carries
// dt (seconds), entity, position, rotation and a state table that persists
// for the entity until ReleaseEntity. The function may return a table with
// position and/or rotation; returning nothing changes nothing.
func (e *Engine) Behaviour(name string, entity ecs.EntityID, dt time.Duration, in BehaviourInput) (BehaviourOutput, error) {
	fn, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return BehaviourOutput{}, fmt.Errorf("lua behaviour %q not found", name)
	}

	ctx := e.vm.NewTable()
	ctx.RawSetString("dt", lua.LNumber(dt.Seconds()))
	ctx.RawSetString("entity", lua.LNumber(entity))
	ctx.RawSetString("position", e.vec3Table(in.Position))
	ctx.RawSetString("rotation", e.vec3Table(in.Rotation))
	ctx.RawSetString("state", e.stateFor(entity))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, ctx); err != nil {
		return BehaviourOutput{}, fmt.Errorf("lua behaviour %q: %w", name, err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	var out BehaviourOutput
	switch rt := result.(type) {
	case *lua.LTable:
		if p, ok := rt.RawGetString("position").(*lua.LTable); ok {
			out.Position = readVec3(p, in.Position)
			out.SetPosition = true
		}
		if r, ok := rt.RawGetString("rotation").(*lua.LTable); ok {
			out.Rotation = readVec3(r, in.Rotation)
			out.SetRotation = true
		}
	case *lua.LNilType:
	default:
		return BehaviourOutput{}, fmt.Errorf("lua behaviour %q returned %s, want table or nil", name, result.Type())
	}
	return out, nil
}

func (e *Engine) stateFor(entity ecs.EntityID) *lua.LTable {
	st, ok := e.states[entity]
	if !ok {
		st = e.vm.NewTable()
		e.states[entity] = st
	}
	return st
}

// ReleaseEntity drops the per-entity state table.
func (e *Engine) ReleaseEntity(entity ecs.EntityID) {
	delete(e.states, entity)
}

// StateCount returns the number of entities holding script state.
func (e *Engine) StateCount() int { return len(e.states) }

func (e *Engine) Close() {
	e.vm.Close()
}

func (e *Engine) vec3Table(v mgl32.Vec3) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("x", lua.LNumber(v.X()))
	t.RawSetString("y", lua.LNumber(v.Y()))
	t.RawSetString("z", lua.LNumber(v.Z()))
	return t
}

// readVec3 reads x, y, z from t; missing fields keep def's value.
func readVec3(t *lua.LTable, def mgl32.Vec3) mgl32.Vec3 {
	out := def
	for i, key := range [3]string{"x", "y", "z"} {
		if n, ok := t.RawGetString(key).(lua.LNumber); ok {
			out[i] = float32(n)
		}
	}
	return out
}
