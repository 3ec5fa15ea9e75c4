package main

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pkg/profile"
	"github.com/prism3d/engine/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const version = "0.1.0"

func main() {
	prof := &profiler{}
	err := newRootCmd(prof).Execute()
	// cobra skips post-run hooks on error, so the profile is flushed here.
	prof.Stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	profile    string
	profileDir string
}

// profiler holds the running pkg/profile session, if any.
type profiler struct {
	running interface{ Stop() }
}

func (p *profiler) start(mode, dir string) error {
	switch mode {
	case "":
	case "cpu":
		p.running = profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet)
	case "mem":
		p.running = profile.Start(profile.MemProfileAllocs, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet)
	default:
		return fmt.Errorf("unknown --profile %q (want cpu or mem)", mode)
	}
	return nil
}

// Stop writes and closes the profile. Safe to call more than once.
func (p *profiler) Stop() {
	if p.running != nil {
		p.running.Stop()
		p.running = nil
	}
}

func newRootCmd(prof *profiler) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "prism",
		Short:         "Prism ECS engine runner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return prof.start(flags.profile, flags.profileDir)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "",
		"config file (default $"+config.EnvPath+" or "+config.DefaultPath+")")
	root.PersistentFlags().StringVar(&flags.profile, "profile", "", "write a pprof profile: cpu or mem")
	root.PersistentFlags().StringVar(&flags.profileDir, "profile-dir", ".", "directory for --profile output")

	root.AddCommand(newRunCmd(flags), newCheckCmd(flags))
	return root
}

// loadConfig resolves and loads the config and builds the logger for it.
func loadConfig(flags *rootFlags) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(config.ResolvePath(flags.configPath))
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// ── Console display helpers ────────────────────────────────────────

var stats = message.NewPrinter(language.English)

func printBanner(title string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Printf("\033[36;1m  │\033[0m %-41s \033[36;1m│\033[0m\n", "Prism engine  v"+version)
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mwindow:\033[0m %s\n\n", title)
}

func printSection(title string) {
	lineLen := 46 - utf8.RuneCountInString(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := stats.Sprintf("%d", count)
	dotsLen := 42 - utf8.RuneCountInString(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
