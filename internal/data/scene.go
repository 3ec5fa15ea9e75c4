package data

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Scene is a YAML scene description: a flat list of named entities whose
// parents are referenced by name.
type Scene struct {
	Name     string        `yaml:"name"`
	Entities []EntityEntry `yaml:"entities"`
}

// EntityEntry describes one entity. Absent sections add no component.
type EntityEntry struct {
	Name       string           `yaml:"name"`
	Contexts   []string         `yaml:"contexts,omitempty"`
	Parent     string           `yaml:"parent,omitempty"`
	Transform  *TransformEntry  `yaml:"transform,omitempty"`
	Velocity   *VelocityEntry   `yaml:"velocity,omitempty"`
	Camera     *CameraEntry     `yaml:"camera,omitempty"`
	Renderable *RenderableEntry `yaml:"renderable,omitempty"`
	Script     string           `yaml:"script,omitempty"`
	Systems    []string         `yaml:"systems,omitempty"`
}

type TransformEntry struct {
	Position    []float32 `yaml:"position,omitempty"`
	RotationDeg []float32 `yaml:"rotation_deg,omitempty"`
	Scale       []float32 `yaml:"scale,omitempty"`
}

type VelocityEntry struct {
	Linear     []float32 `yaml:"linear,omitempty"`
	AngularDeg []float32 `yaml:"angular_deg,omitempty"`
}

type CameraEntry struct {
	FovDeg float32 `yaml:"fov_deg"`
	Near   float32 `yaml:"near"`
	Far    float32 `yaml:"far"`
}

type RenderableEntry struct {
	Mesh     uint32 `yaml:"mesh"`
	Material uint32 `yaml:"material"`
	Hidden   bool   `yaml:"hidden,omitempty"`
}

// Context names accepted in an entity's contexts list.
const (
	ContextMainCamera = "main_camera"
)

// LoadScene reads and validates a scene file.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseScene(raw)
}

// ParseScene decodes and validates YAML scene data.
func ParseScene(raw []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene %q: %w", s.Name, err)
	}
	return &s, nil
}

// Validate checks names, parent links, context names and vector sizes.
func (s *Scene) Validate() error {
	index := make(map[string]int, len(s.Entities))
	for i := range s.Entities {
		e := &s.Entities[i]
		if e.Name == "" {
			return fmt.Errorf("entity #%d has no name", i)
		}
		if _, dup := index[e.Name]; dup {
			return fmt.Errorf("duplicate entity name %q", e.Name)
		}
		index[e.Name] = i
	}

	for i := range s.Entities {
		e := &s.Entities[i]
		if e.Parent != "" {
			if _, ok := index[e.Parent]; !ok {
				return fmt.Errorf("entity %q: unknown parent %q", e.Name, e.Parent)
			}
			if e.Transform == nil {
				return fmt.Errorf("entity %q: parent set without transform", e.Name)
			}
		}
		for _, c := range e.Contexts {
			if c != ContextMainCamera {
				return fmt.Errorf("entity %q: unknown context %q", e.Name, c)
			}
		}
		if t := e.Transform; t != nil {
			if err := checkVec(e.Name, "transform.position", t.Position); err != nil {
				return err
			}
			if err := checkVec(e.Name, "transform.rotation_deg", t.RotationDeg); err != nil {
				return err
			}
			if err := checkVec(e.Name, "transform.scale", t.Scale); err != nil {
				return err
			}
		}
		if v := e.Velocity; v != nil {
			if err := checkVec(e.Name, "velocity.linear", v.Linear); err != nil {
				return err
			}
			if err := checkVec(e.Name, "velocity.angular_deg", v.AngularDeg); err != nil {
				return err
			}
		}
		if c := e.Camera; c != nil && (c.Near <= 0 || c.Far <= c.Near) {
			return fmt.Errorf("entity %q: camera needs 0 < near < far", e.Name)
		}
	}

	// Parent chains must terminate.
	for i := range s.Entities {
		seen := map[string]bool{}
		for cur := s.Entities[i].Name; cur != ""; cur = s.Entities[index[cur]].Parent {
			if seen[cur] {
				return fmt.Errorf("entity %q: parent cycle", s.Entities[i].Name)
			}
			seen[cur] = true
		}
	}
	return nil
}

func checkVec(entity, field string, v []float32) error {
	if v != nil && len(v) != 3 {
		return fmt.Errorf("entity %q: %s needs 3 values, got %d", entity, field, len(v))
	}
	return nil
}

func vec3(v []float32, def mgl32.Vec3) mgl32.Vec3 {
	if len(v) != 3 {
		return def
	}
	return mgl32.Vec3{v[0], v[1], v[2]}
}

// Save writes s as YAML.
func (s *Scene) Save(path string) error {
	raw, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}
