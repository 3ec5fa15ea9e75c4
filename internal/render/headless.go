package render

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Headless is an in-memory Backend. It keeps the instance buffer on the CPU
// and remembers the last submitted frame; used by the check command and
// tests.
type Headless struct {
	mu        sync.Mutex
	instances []mgl32.Mat4
	live      []bool
	free      []int32
	last      Frame
	submitted int
}

func NewHeadless() *Headless {
	return &Headless{
		instances: make([]mgl32.Mat4, 0, 256),
		live:      make([]bool, 0, 256),
	}
}

func (h *Headless) AllocInstance() int32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.free); n > 0 {
		slot := h.free[n-1]
		h.free = h.free[:n-1]
		h.live[slot] = true
		h.instances[slot] = mgl32.Ident4()
		return slot
	}
	h.instances = append(h.instances, mgl32.Ident4())
	h.live = append(h.live, true)
	return int32(len(h.instances) - 1)
}

func (h *Headless) FreeInstance(slot int32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if slot < 0 || int(slot) >= len(h.live) || !h.live[slot] {
		return
	}
	h.live[slot] = false
	h.free = append(h.free, slot)
}

func (h *Headless) WriteInstance(slot int32, model mgl32.Mat4) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if slot < 0 || int(slot) >= len(h.live) || !h.live[slot] {
		return
	}
	h.instances[slot] = model
}

func (h *Headless) Submit(frame Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = frame
	h.submitted++
}

// Instance returns the staged matrix for slot.
func (h *Headless) Instance(slot int32) (mgl32.Mat4, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if slot < 0 || int(slot) >= len(h.live) || !h.live[slot] {
		return mgl32.Mat4{}, false
	}
	return h.instances[slot], true
}

// LiveInstances returns the number of allocated slots.
func (h *Headless) LiveInstances() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live) - len(h.free)
}

// LastFrame returns the most recent frame and how many frames were submitted.
func (h *Headless) LastFrame() (Frame, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last, h.submitted
}
