package ecs

import (
	"reflect"
	"time"
)

// System is any value registered with World.AddSystem. It must implement
// Updater, EntityProcessor, or both; Updater wins when both are present.
// The optional interfaces below add requirements and lifecycle hooks.
type System any

// Updater is implemented by systems that work on their whole subscriber
// list at once, or on no entities at all.
type Updater interface {
	Update(w *World, dt time.Duration, entities []EntityID)
}

// EntityProcessor is implemented by per-entity systems. The manager calls
// ProcessEntity once per subscribed entity, in subscription order.
type EntityProcessor interface {
	ProcessEntity(w *World, dt time.Duration, id EntityID)
}

// Requirer declares the component types an entity needs before it may be
// subscribed.
type Requirer interface {
	RequiredComponents() []ComponentKey
}

// EntityFilter replaces the default required-components check.
type EntityFilter interface {
	ShouldProcessEntity(w *World, id EntityID) bool
}

// Dependent lists systems every subscriber must also be subscribed to.
type Dependent interface {
	SystemDependencies() []SystemKey
}

// Mandatory systems are subscribed automatically whenever an added
// component makes an entity satisfy their requirements.
type Mandatory interface {
	Mandatory() bool
}

// Named overrides the name used in logs, timings and scene files.
type Named interface {
	SystemName() string
}

type RegisteredHook interface {
	OnRegistered(w *World)
}

type SubscribedHook interface {
	OnEntitySubscribed(w *World, id EntityID)
}

type UnsubscribedHook interface {
	OnEntityUnsubscribed(w *World, id EntityID)
}

type ShutdownHook interface {
	OnShutdown(w *World)
}

// SystemKey identifies a system by its concrete Go type.
type SystemKey struct {
	t reflect.Type
}

// SystemOf returns the key for system type S, usually a pointer type such
// as *MovementSystem.
func SystemOf[S any]() SystemKey {
	return SystemKey{t: reflect.TypeFor[S]()}
}

func systemKeyOf(s System) SystemKey {
	return SystemKey{t: reflect.TypeOf(s)}
}

func (k SystemKey) String() string {
	if k.t == nil {
		return "<nil>"
	}
	return k.t.String()
}

func systemName(s System) string {
	if n, ok := s.(Named); ok {
		return n.SystemName()
	}
	return reflect.TypeOf(s).String()
}
