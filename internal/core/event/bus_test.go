package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"
)

func TestBus_DeliversNextFrame(t *testing.T) {
	b := NewBus()
	var resized []WindowResized
	Subscribe(b, func(ev WindowResized) { resized = append(resized, ev) })

	Emit(b, WindowResized{Width: 1, Height: 2})
	assert.Equal(t, 1, b.Pending())
	assert.Zero(t, b.DispatchAll(), "nothing in front yet")

	b.SwapBuffers()
	assert.Zero(t, b.Pending())
	assert.Equal(t, 1, b.DispatchAll())
	assert.Equal(t, []WindowResized{{Width: 1, Height: 2}}, resized)

	b.SwapBuffers()
	assert.Zero(t, b.DispatchAll(), "front cleared by the next swap")
}

func TestBus_TypedHandlers(t *testing.T) {
	b := NewBus()
	var destroyed, resized int
	Subscribe(b, func(EntityDestroyed) { destroyed++ })
	Subscribe(b, func(EntityDestroyed) { destroyed++ })
	Subscribe(b, func(WindowResized) { resized++ })

	Emit(b, EntityDestroyed{Entity: 3})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 2, destroyed)
	assert.Zero(t, resized)
}

func TestBus_ConcurrentEmit(t *testing.T) {
	b := NewBus()
	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			for range 100 {
				Emit(b, EntityDestroyed{})
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())
	assert.Equal(t, 800, b.Pending())
}
