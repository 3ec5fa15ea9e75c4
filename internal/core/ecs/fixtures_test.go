package ecs

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type velocity struct{ DX, DY float64 }
type health struct{ HP int }
type mainCamera struct{}
type mainWindow struct{}

func newObservedWorld(t *testing.T, opts Options) (*World, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewWorld(zap.New(core), opts), logs
}

func countWarn(logs *observer.ObservedLogs, snippet string) int {
	return logs.FilterLevelExact(zapcore.WarnLevel).FilterMessageSnippet(snippet).Len()
}

// journal records hook calls across systems.
type journal struct{ calls []string }

func (j *journal) add(s string) { j.calls = append(j.calls, s) }

// moveSystem needs position and velocity and processes one entity at a time.
type moveSystem struct {
	j         *journal
	processed []EntityID
}

func (s *moveSystem) RequiredComponents() []ComponentKey {
	return []ComponentKey{ComponentOf[position](), ComponentOf[velocity]()}
}

func (s *moveSystem) ProcessEntity(w *World, dt time.Duration, id EntityID) {
	s.processed = append(s.processed, id)
	p := GetComponent[position](w, id)
	v := GetComponent[velocity](w, id)
	p.X += v.DX * dt.Seconds()
	p.Y += v.DY * dt.Seconds()
}

func (s *moveSystem) OnShutdown(*World) {
	if s.j != nil {
		s.j.add("move")
	}
}

// bufferSystem is a dependency of drawSystem.
type bufferSystem struct {
	j *journal
}

func (s *bufferSystem) RequiredComponents() []ComponentKey {
	return []ComponentKey{ComponentOf[position]()}
}

func (s *bufferSystem) Update(*World, time.Duration, []EntityID) {}

func (s *bufferSystem) OnEntitySubscribed(_ *World, id EntityID) {
	if s.j != nil {
		s.j.add("buffer+")
	}
}

func (s *bufferSystem) OnEntityUnsubscribed(_ *World, id EntityID) {
	if s.j != nil {
		s.j.add("buffer-")
	}
}

func (s *bufferSystem) OnShutdown(*World) {
	if s.j != nil {
		s.j.add("buffer")
	}
}

type drawSystem struct {
	j    *journal
	last []EntityID
}

func (s *drawSystem) SystemName() string { return "draw" }

func (s *drawSystem) RequiredComponents() []ComponentKey {
	return []ComponentKey{ComponentOf[position]()}
}

func (s *drawSystem) SystemDependencies() []SystemKey {
	return []SystemKey{SystemOf[*bufferSystem]()}
}

func (s *drawSystem) Update(_ *World, _ time.Duration, entities []EntityID) {
	s.last = append(s.last[:0], entities...)
}

func (s *drawSystem) OnEntitySubscribed(*World, EntityID) {
	if s.j != nil {
		s.j.add("draw+")
	}
}

func (s *drawSystem) OnShutdown(*World) {
	if s.j != nil {
		s.j.add("draw")
	}
}

// autoSystem is mandatory for anything with health.
type autoSystem struct{}

func (s *autoSystem) Mandatory() bool { return true }
func (s *autoSystem) RequiredComponents() []ComponentKey {
	return []ComponentKey{ComponentOf[health]()}
}
func (s *autoSystem) Update(*World, time.Duration, []EntityID) {}

// evenSystem accepts only even entity ids, regardless of components.
type evenSystem struct{}

func (s *evenSystem) ShouldProcessEntity(_ *World, id EntityID) bool { return id%2 == 0 }
func (s *evenSystem) Update(*World, time.Duration, []EntityID)       {}

// reaper unsubscribes the entity after the one it is processing.
type reaper struct {
	processed []EntityID
}

func (s *reaper) ProcessEntity(w *World, _ time.Duration, id EntityID) {
	s.processed = append(s.processed, id)
	Unsubscribe[*reaper](w, id+1)
}

type idleSystem struct{}

type marker struct{}

// taggerSystem is mandatory for anything with a position and tags every
// entity it receives with a marker component.
type taggerSystem struct {
	subscribed, unsubscribed int
	last                     []EntityID
}

func (s *taggerSystem) Mandatory() bool { return true }
func (s *taggerSystem) RequiredComponents() []ComponentKey {
	return []ComponentKey{ComponentOf[position]()}
}
func (s *taggerSystem) OnEntitySubscribed(w *World, id EntityID) {
	s.subscribed++
	AddComponent(w, id, marker{})
}
func (s *taggerSystem) OnEntityUnsubscribed(*World, EntityID) { s.unsubscribed++ }
func (s *taggerSystem) Update(_ *World, _ time.Duration, ids []EntityID) {
	s.last = append(s.last[:0], ids...)
}

// stripper removes the component it requires while subscribing.
type stripper struct {
	unsubscribed int
}

func (s *stripper) RequiredComponents() []ComponentKey {
	return []ComponentKey{ComponentOf[position]()}
}
func (s *stripper) OnEntitySubscribed(w *World, id EntityID) { RemoveComponent[position](w, id) }
func (s *stripper) OnEntityUnsubscribed(*World, EntityID)    { s.unsubscribed++ }
func (s *stripper) Update(*World, time.Duration, []EntityID) {}
