package data

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/core/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoScene = `
name: demo
entities:
  - name: camera
    contexts: [main_camera]
    transform:
      position: [0, 2, 10]
    camera: { fov_deg: 70, near: 0.1, far: 500 }
  - name: moon
    parent: planet
    transform:
      position: [3, 0, 0]
      scale: [0.5, 0.5, 0.5]
    renderable: { mesh: 1, material: 2 }
  - name: planet
    transform:
      position: [0, 0, 0]
      rotation_deg: [0, 0, 45]
    velocity:
      angular_deg: [0, 0, 90]
    renderable: { mesh: 1, material: 1, hidden: true }
    script: spin
    systems: [tag]
`

type tagSystem struct{}

func (tagSystem) SystemName() string { return "tag" }
func (s *tagSystem) RequiredComponents() []ecs.ComponentKey {
	return []ecs.ComponentKey{ecs.ComponentOf[component.Renderable]()}
}
func (s *tagSystem) Update(*ecs.World, time.Duration, []ecs.EntityID) {}

func TestParseAndSpawn(t *testing.T) {
	s, err := ParseScene([]byte(demoScene))
	require.NoError(t, err)
	require.Len(t, s.Entities, 3)

	w := ecs.NewWorld(nil, ecs.Options{})
	w.AddSystem(&tagSystem{})
	ids, err := Spawn(w, s)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	assert.Equal(t, ids["camera"], ecs.GetContext[component.MainCameraContext](w))
	cam := ecs.GetComponent[component.Camera](w, ids["camera"])
	require.NotNil(t, cam)
	assert.InDelta(t, mgl32.DegToRad(70), cam.FovY, 1e-6)

	assert.Equal(t, ids["planet"], ecs.GetComponent[component.Parent](w, ids["moon"]).Entity,
		"parent declared after child")
	moon := ecs.GetComponent[component.Transform](w, ids["moon"])
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, moon.Scale)

	planet := ecs.GetComponent[component.Transform](w, ids["planet"])
	assert.True(t, component.QuatToEulerDeg(planet.Rotation).ApproxEqualThreshold(mgl32.Vec3{0, 0, 45}, 1e-3))
	vel := ecs.GetComponent[component.Velocity](w, ids["planet"])
	assert.InDelta(t, mgl32.DegToRad(90), vel.Angular.Z(), 1e-6)
	assert.True(t, ecs.GetComponent[component.Renderable](w, ids["planet"]).Hidden)
	assert.Equal(t, "spin", ecs.GetComponent[component.Script](w, ids["planet"]).Behaviour)

	assert.Equal(t, []ecs.EntityID{ids["planet"]}, w.SystemEntities(ecs.SystemOf[*tagSystem]()))
}

func TestValidateRejects(t *testing.T) {
	for name, src := range map[string]string{
		"no name":        "entities: [{transform: {}}]",
		"duplicate":      "entities: [{name: a}, {name: a}]",
		"unknown parent": "entities: [{name: a, parent: b, transform: {}}]",
		"parent no tf":   "entities: [{name: a}, {name: b, parent: a}]",
		"cycle":          "entities: [{name: a, parent: b, transform: {}}, {name: b, parent: a, transform: {}}]",
		"self parent":    "entities: [{name: a, parent: a, transform: {}}]",
		"bad vector":     "entities: [{name: a, transform: {position: [1, 2]}}]",
		"bad context":    "entities: [{name: a, contexts: [sky]}]",
		"bad camera":     "entities: [{name: a, camera: {near: 1, far: 1}}]",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScene([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestSaveLoadScene(t *testing.T) {
	s := &Scene{Name: "saved", Entities: []EntityEntry{{
		Name:      "box",
		Transform: &TransformEntry{Position: []float32{1, 2, 3}},
		Systems:   []string{"render"},
	}}}
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, s.Save(path))

	got, err := LoadScene(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestShippedDemoScene(t *testing.T) {
	s, err := LoadScene(filepath.Join("..", "..", "scenes", "demo.yaml"))
	require.NoError(t, err)

	w := ecs.NewWorld(nil, ecs.Options{})
	ids, err := Spawn(w, s)
	require.NoError(t, err)
	assert.Len(t, ids, len(s.Entities))
	assert.Equal(t, ids["camera"], ecs.GetContext[component.MainCameraContext](w))
	assert.Equal(t, ids["hub"], ecs.GetComponent[component.Parent](w, ids["moon"]).Entity)
}
