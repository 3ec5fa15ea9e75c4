package main

import (
	"fmt"

	"github.com/prism3d/engine/internal/config"
	"github.com/prism3d/engine/internal/data"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCheckCmd(flags *rootFlags) *cobra.Command {
	var scenePath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load config and scene, spawn into a world, run one frame and print stats",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(flags)
			if err != nil {
				return err
			}
			defer log.Sync()
			if scenePath != "" {
				cfg.Scene.Path = scenePath
			}
			return check(cfg, log)
		},
	}
	cmd.Flags().StringVar(&scenePath, "scene", "", "scene file (overrides scene.path)")
	return cmd
}

func check(cfg *config.Config, log *zap.Logger) error {
	scene, err := data.LoadScene(cfg.Scene.Path)
	if err != nil {
		return err
	}
	eng, err := buildEngine(cfg, scene, nil, log)
	if err != nil {
		return err
	}
	defer eng.Close()

	eng.world.Update(cfg.Engine.TickRate)
	eng.world.Shutdown()

	printSection(fmt.Sprintf("scene %q", scene.Name))
	eng.printStats()
	printOK("scene ok")
	return nil
}
