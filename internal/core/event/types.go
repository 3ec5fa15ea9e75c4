package event

import "github.com/prism3d/engine/internal/core/ecs"

// EntityDestroyed is emitted by CleanupSystem for every entity it destroys.
type EntityDestroyed struct {
	Entity ecs.EntityID
}

// WindowResized is emitted by InputSystem when the framebuffer size changes.
type WindowResized struct {
	Width  int
	Height int
}
