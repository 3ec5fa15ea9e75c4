package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/config"
	"github.com/prism3d/engine/internal/core/ecs"
	"github.com/prism3d/engine/internal/core/loop"
	"github.com/prism3d/engine/internal/data"
	"github.com/prism3d/engine/internal/persist"
	"github.com/prism3d/engine/internal/system"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	var frames int
	var scenePath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load the scene and run the frame loop until the frame limit or a signal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(flags)
			if err != nil {
				return err
			}
			defer log.Sync()
			if cmd.Flags().Changed("frames") {
				cfg.Engine.MaxFrames = frames
			}
			if scenePath != "" {
				cfg.Scene.Path = scenePath
			}
			return run(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 0, "stop after this many frames (overrides engine.max_frames)")
	cmd.Flags().StringVar(&scenePath, "scene", "", "scene file (overrides scene.path)")
	return cmd
}

func run(parent context.Context, cfg *config.Config, log *zap.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	printBanner(cfg.Window.Title)

	printSection("scene")
	scene, err := data.LoadScene(cfg.Scene.Path)
	if err != nil {
		return err
	}
	printOK(fmt.Sprintf("loaded %s (%d entities)", cfg.Scene.Path, len(scene.Entities)))

	var sink system.ProfileSink
	var db *persist.DB
	if cfg.Profiling.Enabled {
		printSection("profiling")
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		var runSink *persist.RunSink
		db, runSink, err = openProfileSink(ctx, cfg, scene.Name, log)
		cancel()
		if err != nil {
			return err
		}
		sink = runSink
		printOK("profile database ready")
	}

	eng, err := buildEngine(cfg, scene, sink, log)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return err
	}
	eng.db = db
	defer eng.Close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := loop.NewRunner(eng.world, cfg.Engine.TickRate, cfg.Engine.MaxFrames, log)
	runner.StopWhen(func() bool {
		win := ecs.GetContextComponent[component.MainWindowContext, component.WindowState](eng.world)
		return win != nil && win.ShouldClose
	})

	printSection("engine")
	printReady(fmt.Sprintf("frame loop started (tick: %s)", cfg.Engine.TickRate))
	fmt.Println()

	err = runner.Run(ctx)
	if ctx.Err() != nil && parent.Err() == nil {
		err = nil // stopped by signal
	}

	fmt.Println()
	printSection("summary")
	printStat("frames", runner.Frames())
	printStat("destroyed entities", eng.cleanup.Destroyed())
	if eng.profiler != nil {
		printStat("profile samples", eng.profiler.Written())
	}
	eng.printStats()
	log.Info("engine stopped")
	return err
}
