package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prism3d/engine/internal/component"
)

// Backend is the renderer collaborator. Device setup, pipelines and command
// recording live behind it; the ECS only manages instance slots and hands
// over sorted batches once per frame.
type Backend interface {
	// AllocInstance reserves a slot in the instance buffer.
	AllocInstance() int32
	// FreeInstance returns a slot to the backend.
	FreeInstance(slot int32)
	// WriteInstance stages the model matrix for slot.
	WriteInstance(slot int32, model mgl32.Mat4)
	// Submit hands over one frame's draw batches.
	Submit(frame Frame)
}

// Batch draws one mesh with one material for every slot listed.
type Batch struct {
	Mesh     component.MeshID
	Material component.MaterialID
	Slots    []int32
}

// Frame is everything the backend needs to draw a frame.
type Frame struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Batches    []Batch
}

// DrawCalls returns the number of batches in f.
func (f Frame) DrawCalls() int { return len(f.Batches) }

// Instances returns the total instance count across batches.
func (f Frame) Instances() int {
	n := 0
	for _, b := range f.Batches {
		n += len(b.Slots)
	}
	return n
}
