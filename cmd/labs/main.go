package main

import (
	"fmt"
	"os"
	"runtime"

	"Winter3D/internal/config"
	"Winter3D/internal/engine"
	"Winter3D/internal/labs"
	"Winter3D/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "labs",
	Short: "Winter3D rendering labs",
	Long: `Opens one of the rendering labs in an OpenGL 4.1 window.

Configuration:
  1. --config flag (explicit path)
  2. ./winter3d.yaml (current directory)
  WINTER3D_<SECTION>_<KEY> variables override both, e.g. WINTER3D_SHADOW_RESOLUTION=2048.

Controls:
  mouse look, W/S/A/D move, Space/Ctrl up and down, Up/Down zoom, Q/E tilt (camera lab)
  1/2 select a light, I/K J/L U/O move it (winter lab)
  F1/F2/F3 Phong, Gouraud, flat (shading lab)
  T wireframe, Esc quit`,
	SilenceUsage: true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or write the configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "winter3d.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.Save(config.DefaultConfig(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func init() {
	// GLFW and OpenGL calls must stay on the main thread.
	runtime.LockOSThread()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./winter3d.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	for _, name := range labs.Names() {
		rootCmd.AddCommand(labCommand(name))
	}
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func labCommand(name string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: labs.Describe(name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLab(name)
		},
	}
}

func runLab(name string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	if err := logger.InitWithConfig(level, cfg.Log.Development); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	defer logger.Sync()

	opts, err := engine.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	scene, err := labs.Create(name, cfg)
	if err != nil {
		return err
	}

	logger.Log.Info("Starting lab", zap.String("lab", name), zap.String("config", cfgFile))
	if err := engine.New(opts).Run(scene); err != nil {
		logger.Log.Error("Lab failed", zap.String("lab", name), zap.Error(err))
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
