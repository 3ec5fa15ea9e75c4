package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadless_SlotReuse(t *testing.T) {
	h := NewHeadless()
	a, b := h.AllocInstance(), h.AllocInstance()
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, h.LiveInstances())

	h.FreeInstance(a)
	h.FreeInstance(a)
	assert.Equal(t, 1, h.LiveInstances())
	_, ok := h.Instance(a)
	assert.False(t, ok)

	c := h.AllocInstance()
	assert.Equal(t, a, c, "freed slot is reused")
	m, ok := h.Instance(c)
	require.True(t, ok)
	assert.Equal(t, mgl32.Ident4(), m, "reused slot starts clean")
}

func TestHeadless_WriteAndSubmit(t *testing.T) {
	h := NewHeadless()
	s := h.AllocInstance()
	model := mgl32.Translate3D(1, 2, 3)
	h.WriteInstance(s, model)
	h.WriteInstance(99, model)

	got, ok := h.Instance(s)
	require.True(t, ok)
	assert.Equal(t, model, got)

	h.Submit(Frame{Batches: []Batch{{Mesh: 1, Slots: []int32{s}}, {Mesh: 2, Slots: []int32{4, 5}}}})
	f, n := h.LastFrame()
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, f.DrawCalls())
	assert.Equal(t, 3, f.Instances())
}
