package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/core/ecs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestWorld(t *testing.T) (*ecs.World, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return ecs.NewWorld(zap.New(core), ecs.Options{}), logs
}

func warnings(logs *observer.ObservedLogs, snippet string) int {
	return logs.FilterLevelExact(zapcore.WarnLevel).FilterMessageSnippet(snippet).Len()
}

func spawnAt(w *ecs.World, pos mgl32.Vec3) ecs.EntityID {
	id := w.CreateEntity()
	ecs.AddComponent(w, id, component.NewTransform(pos))
	return id
}

const eps = 1e-4
