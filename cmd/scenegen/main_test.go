package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	opts := options{count: 100, meshes: 2, materials: 2, hubEvery: 10, scripted: 0.5, seed: 7}
	s, err := generate(opts)
	require.NoError(t, err)
	require.Len(t, s.Entities, 101)
	assert.Equal(t, []string{"main_camera"}, s.Entities[0].Contexts)

	hubs, children := 0, 0
	for _, e := range s.Entities[1:] {
		assert.Contains(t, e.Systems, "render")
		assert.LessOrEqual(t, e.Renderable.Mesh, uint32(2))
		if e.Parent != "" {
			children++
			assert.Nil(t, e.Velocity)
		} else if e.Velocity != nil && e.Velocity.AngularDeg != nil {
			hubs++
		}
	}
	assert.Equal(t, 10, hubs)
	assert.Equal(t, 90, children)

	again, err := generate(opts)
	require.NoError(t, err)
	assert.Equal(t, s, again, "same seed, same scene")
}

func TestGenerateRejectsBadOptions(t *testing.T) {
	_, err := generate(options{count: 10, meshes: 0, materials: 1})
	assert.Error(t, err)
}
