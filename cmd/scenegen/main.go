// scenegen writes a synthetic stress scene for the prism runner: a camera,
// a grid of moving cubes, and a spinning hub every few cubes with orbiting
// children.
//
// Usage:
//
//	go run ./cmd/scenegen --count 5000 --out scenes/stress.yaml
package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/prism3d/engine/internal/data"
	"github.com/spf13/cobra"
)

type options struct {
	count     int
	meshes    int
	materials int
	hubEvery  int
	scripted  float64
	seed      uint64
	out       string
}

func main() {
	opts := options{}
	cmd := &cobra.Command{
		Use:          "scenegen",
		Short:        "Generate a stress scene YAML",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := generate(opts)
			if err != nil {
				return err
			}
			if err := s.Save(opts.out); err != nil {
				return err
			}
			fmt.Printf("Wrote %s: %d entities\n", opts.out, len(s.Entities))
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.count, "count", 1000, "number of cubes")
	cmd.Flags().IntVar(&opts.meshes, "meshes", 4, "distinct mesh ids")
	cmd.Flags().IntVar(&opts.materials, "materials", 3, "distinct material ids")
	cmd.Flags().IntVar(&opts.hubEvery, "hub-every", 50, "make every Nth cube a spinning hub for the following ones (0 = none)")
	cmd.Flags().Float64Var(&opts.scripted, "scripted", 0.05, "fraction of cubes driven by the bob behaviour")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&opts.out, "out", "scenes/stress.yaml", "output file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func generate(opts options) (*data.Scene, error) {
	if opts.count < 0 || opts.meshes <= 0 || opts.materials <= 0 {
		return nil, fmt.Errorf("count must be >= 0 and meshes, materials > 0")
	}
	prng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	side := int(math.Ceil(math.Sqrt(float64(opts.count))))
	spacing := float32(3)

	s := &data.Scene{
		Name:     fmt.Sprintf("stress-%d", opts.count),
		Entities: make([]data.EntityEntry, 0, opts.count+1),
	}
	s.Entities = append(s.Entities, data.EntityEntry{
		Name:     "camera",
		Contexts: []string{data.ContextMainCamera},
		Transform: &data.TransformEntry{
			Position:    []float32{0, float32(side) * spacing, float32(side) * spacing * 1.5},
			RotationDeg: []float32{-35, 0, 0},
		},
		Camera:  &data.CameraEntry{FovDeg: 60, Near: 0.1, Far: float32(side) * spacing * 10},
		Systems: []string{"camera"},
	})

	hub := ""
	for i := 0; i < opts.count; i++ {
		x := float32(i%side)*spacing - float32(side)*spacing/2
		z := float32(i/side)*spacing - float32(side)*spacing/2
		e := data.EntityEntry{
			Name: fmt.Sprintf("cube-%d", i),
			Transform: &data.TransformEntry{
				Position: []float32{x, 0, z},
			},
			Renderable: &data.RenderableEntry{
				Mesh:     uint32(prng.IntN(opts.meshes) + 1),
				Material: uint32(prng.IntN(opts.materials) + 1),
			},
			Systems: []string{"render"},
		}

		switch {
		case opts.hubEvery > 0 && i%opts.hubEvery == 0:
			hub = e.Name
			e.Velocity = &data.VelocityEntry{AngularDeg: []float32{0, 45, 0}}
			e.Systems = append(e.Systems, "movement")
		case hub != "":
			e.Parent = hub
			e.Transform.Position = []float32{prng.Float32()*4 - 2, prng.Float32() * 2, prng.Float32()*4 - 2}
		default:
			e.Velocity = &data.VelocityEntry{
				Linear: []float32{prng.Float32() - 0.5, 0, prng.Float32() - 0.5},
			}
			e.Systems = append(e.Systems, "movement")
		}
		if prng.Float64() < opts.scripted {
			e.Script = "bob"
			e.Systems = append(e.Systems, "script")
		}
		s.Entities = append(s.Entities, e)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("generated scene is invalid: %w", err)
	}
	return s, nil
}
