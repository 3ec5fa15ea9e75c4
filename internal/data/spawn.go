package data

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/core/ecs"
)

const defaultFovDeg = 60

// Spawn creates the scene's entities in w in file order and returns them by
// name. Every entity is created before any component is added so parents may
// appear after their children. Systems listed per entity are subscribed
// after all components are attached; a failed subscription is logged by the
// world and does not abort the spawn.
func Spawn(w *ecs.World, s *Scene) (map[string]ecs.EntityID, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("spawn scene %q: %w", s.Name, err)
	}

	ids := make(map[string]ecs.EntityID, len(s.Entities))
	for i := range s.Entities {
		ids[s.Entities[i].Name] = w.CreateEntity()
	}

	for i := range s.Entities {
		e := &s.Entities[i]
		id := ids[e.Name]

		if t := e.Transform; t != nil {
			tr := component.NewTransform(vec3(t.Position, mgl32.Vec3{}))
			tr.Rotation = component.EulerDegToQuat(vec3(t.RotationDeg, mgl32.Vec3{}))
			tr.Scale = vec3(t.Scale, mgl32.Vec3{1, 1, 1})
			tr.World = tr.LocalMatrix()
			ecs.AddComponent(w, id, tr)
		}
		if e.Parent != "" {
			ecs.AddComponent(w, id, component.Parent{Entity: ids[e.Parent]})
		}
		if v := e.Velocity; v != nil {
			ang := vec3(v.AngularDeg, mgl32.Vec3{})
			ecs.AddComponent(w, id, component.Velocity{
				Linear:  vec3(v.Linear, mgl32.Vec3{}),
				Angular: mgl32.Vec3{mgl32.DegToRad(ang.X()), mgl32.DegToRad(ang.Y()), mgl32.DegToRad(ang.Z())},
			})
		}
		if c := e.Camera; c != nil {
			fov := c.FovDeg
			if fov <= 0 {
				fov = defaultFovDeg
			}
			ecs.AddComponent(w, id, component.Camera{
				FovY: mgl32.DegToRad(fov),
				Near: c.Near,
				Far:  c.Far,
			})
		}
		if r := e.Renderable; r != nil {
			ecs.AddComponent(w, id, component.Renderable{
				Mesh:     component.MeshID(r.Mesh),
				Material: component.MaterialID(r.Material),
				Hidden:   r.Hidden,
			})
		}
		if e.Script != "" {
			ecs.AddComponent(w, id, component.Script{Behaviour: e.Script})
		}
		for _, c := range e.Contexts {
			switch c {
			case ContextMainCamera:
				ecs.RegisterContext[component.MainCameraContext](w, id)
			}
		}
	}

	for i := range s.Entities {
		e := &s.Entities[i]
		for _, name := range e.Systems {
			w.SubscribeByName(ids[e.Name], name)
		}
	}
	return ids, nil
}
