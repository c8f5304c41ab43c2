package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/cellgrid/internal/backend/term"
	"github.com/san-kum/cellgrid/internal/backend/window"
	"github.com/san-kum/cellgrid/internal/config"
	"github.com/san-kum/cellgrid/internal/demo"
	"github.com/san-kum/cellgrid/internal/grid"
)

var (
	dataDir    string
	configFile string
	preset     string
	themeName  string
	logLevel   string
	frameRate  int
	cellSize   int
	termScale  int
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "cellgrid",
		Short:        "infinite scrollable cell grid",
		SilenceUsage: true,
		RunE:         runWindow("paint"),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".cellgrid", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&themeName, "theme", "", "color theme")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	pf.IntVar(&cellSize, "cell-size", config.DefaultCellSize, "initial cell size in pixels")

	paintCmd := &cobra.Command{
		Use:   "paint",
		Short: "paint cells in a window",
		Args:  cobra.NoArgs,
		RunE:  runWindow("paint"),
	}

	lifeCmd := &cobra.Command{
		Use:   "life",
		Short: "game of life in a window",
		Args:  cobra.NoArgs,
		RunE:  runWindow("life"),
	}

	termCmd := &cobra.Command{
		Use:       "term [demo]",
		Short:     "run a demo in the terminal",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"paint", "life"},
		RunE:      runTerm,
	}
	termCmd.Flags().IntVar(&termScale, "scale", term.DefaultScale, "framebuffer pixels per terminal column")

	rootCmd.AddCommand(paintCmd, lifeCmd, termCmd, benchCommand(), runsCommand(), plotCommand(),
		exportCommand(), themesCommand(), presetsCommand())
	return rootCmd
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	grid.SetLogger(logger)
	return nil
}

// loadConfig resolves preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("theme") {
		cfg.Theme = themeName
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("cell-size") {
		cfg.CellSize = cellSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newHandler(name string, cfg *config.Config) (grid.Handler, error) {
	th, err := cfg.Palette()
	if err != nil {
		return nil, err
	}
	switch name {
	case "paint":
		return demo.NewPaint(th, cfg.AnimationSpec()), nil
	case "life":
		l := demo.NewLife(th.Cell, cfg.AnimationSpec())
		l.Threaded = cfg.Tick.Threaded
		l.Seed(rPentomino...)
		return l, nil
	}
	return nil, fmt.Errorf("unknown demo: %s", name)
}

var rPentomino = []image.Point{{1, 0}, {2, 0}, {0, 1}, {1, 1}, {1, 2}}

func runDemo(cmd *cobra.Command, name string, b grid.Backend) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	h, err := newHandler(name, cfg)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts.Title = "cellgrid: " + name

	e, err := grid.New(h, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := e.Run(ctx, b); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// defaultPreset applies p when neither a preset nor a config file was given.
func defaultPreset(cmd *cobra.Command, p string) {
	if !cmd.Flags().Changed("preset") && configFile == "" {
		preset = p
	}
}

func runWindow(name string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if name == "life" {
			defaultPreset(cmd, "life")
		}
		return runDemo(cmd, name, window.New())
	}
}

func runTerm(cmd *cobra.Command, args []string) error {
	name := "paint"
	if len(args) > 0 {
		name = args[0]
	}
	defaultPreset(cmd, "term")
	return runDemo(cmd, name, term.New(termScale))
}
