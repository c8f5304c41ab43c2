package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cellgrid/internal/anim"
	"github.com/san-kum/cellgrid/internal/grid"
	"github.com/san-kum/cellgrid/internal/input"
	"github.com/san-kum/cellgrid/internal/palette"
)

const (
	DefaultCellSize     = 40
	DefaultMinCellSize  = 4
	DefaultMaxCellSize  = 1000
	DefaultChunkSize    = 16
	DefaultFPS          = 60
	DefaultGridFraction = 0.1
	DefaultDrawBatch    = 100
	DefaultTick         = time.Second
	DefaultAnimation    = 100 * time.Millisecond
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Rows    int `yaml:"rows"`
	Columns int `yaml:"columns"`
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`

	CellSize    int `yaml:"cell_size"`
	MinCellSize int `yaml:"min_cell_size"`
	MaxCellSize int `yaml:"max_cell_size"`
	ChunkSize   int `yaml:"chunk_size"`

	Theme      string `yaml:"theme"`
	Background string `yaml:"background,omitempty"`
	GridColor  string `yaml:"grid_color,omitempty"`
	CellColor  string `yaml:"cell_color,omitempty"`

	GridFraction      float64 `yaml:"grid_fraction"`
	GridDisappearSize int     `yaml:"grid_disappear_size"`
	GridFadeSteps     int     `yaml:"grid_fade_steps"`

	Animation AnimationConfig `yaml:"animation"`

	PanButton   string  `yaml:"pan_button"`
	FPS         int     `yaml:"fps"`
	AllowZoom   bool    `yaml:"allow_zoom"`
	AllowPan    bool    `yaml:"allow_pan"`
	AllowResize bool    `yaml:"allow_resize"`
	Friction    float64 `yaml:"friction"`
	MinVelocity float64 `yaml:"min_velocity"`
	DrawBatch   int     `yaml:"draw_batch"`

	Tick TickConfig `yaml:"tick"`
}

type AnimationConfig struct {
	Kind     string        `yaml:"kind"`
	Duration time.Duration `yaml:"duration"`
}

type TickConfig struct {
	Duration      time.Duration `yaml:"duration"`
	Threaded      bool          `yaml:"threaded"`
	DiscardOnStop bool          `yaml:"discard_on_stop"`
}

func DefaultConfig() *Config {
	return &Config{
		Rows:              20,
		Columns:           20,
		CellSize:          DefaultCellSize,
		MinCellSize:       DefaultMinCellSize,
		MaxCellSize:       DefaultMaxCellSize,
		ChunkSize:         DefaultChunkSize,
		Theme:             palette.DefaultTheme.Name,
		GridFraction:      DefaultGridFraction,
		GridDisappearSize: 5,
		GridFadeSteps:     25,
		Animation: AnimationConfig{
			Kind:     anim.Fade.String(),
			Duration: DefaultAnimation,
		},
		PanButton:   input.ButtonMiddle.String(),
		FPS:         DefaultFPS,
		AllowZoom:   true,
		AllowPan:    true,
		AllowResize: true,
		Friction:    5,
		MinVelocity: 30,
		DrawBatch:   DefaultDrawBatch,
		Tick:        TickConfig{Duration: DefaultTick},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func (c *Config) Validate() error {
	switch {
	case c.Rows < 0 || c.Columns < 0:
		return invalid("rows and columns must not be negative, got %dx%d", c.Columns, c.Rows)
	case c.Width < 0 || c.Height < 0:
		return invalid("width and height must not be negative, got %dx%d", c.Width, c.Height)
	case c.CellSize <= 0 || c.MinCellSize <= 0 || c.MaxCellSize <= 0:
		return invalid("cell sizes must be positive")
	case c.MinCellSize > c.MaxCellSize:
		return invalid("min_cell_size %d exceeds max_cell_size %d", c.MinCellSize, c.MaxCellSize)
	case c.CellSize < c.MinCellSize || c.CellSize > c.MaxCellSize:
		return invalid("cell_size %d outside [%d, %d]", c.CellSize, c.MinCellSize, c.MaxCellSize)
	case c.ChunkSize <= 0:
		return invalid("chunk_size must be positive")
	case c.FPS <= 0:
		return invalid("fps must be positive, got %d", c.FPS)
	case c.DrawBatch <= 0:
		return invalid("draw_batch must be positive, got %d", c.DrawBatch)
	case c.Tick.Duration <= 0:
		return invalid("tick duration must be positive, got %v", c.Tick.Duration)
	case c.GridFraction < 0 || c.GridFraction >= 1:
		return invalid("grid_fraction must be in [0, 1), got %v", c.GridFraction)
	case c.Friction < 0 || c.MinVelocity < 0:
		return invalid("friction and min_velocity must not be negative")
	case c.Animation.Duration < 0:
		return invalid("animation duration must not be negative")
	}
	if _, ok := palette.GetTheme(c.Theme); !ok {
		return invalid("unknown theme %q", c.Theme)
	}
	if _, err := input.ParseButton(c.PanButton); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := anim.ParseKind(c.Animation.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.Palette(); err != nil {
		return err
	}
	return nil
}

// Palette returns the theme with any explicit color overrides applied.
func (c *Config) Palette() (palette.Theme, error) {
	th, ok := palette.GetTheme(c.Theme)
	if !ok {
		return palette.Theme{}, invalid("unknown theme %q", c.Theme)
	}
	for _, o := range []struct {
		name string
		hex  string
		dst  *palette.Color
	}{
		{"background", c.Background, &th.Background},
		{"grid_color", c.GridColor, &th.Grid},
		{"cell_color", c.CellColor, &th.Cell},
	} {
		if o.hex == "" {
			continue
		}
		col, err := palette.ParseHex(o.hex)
		if err != nil {
			return palette.Theme{}, fmt.Errorf("%w: %s: %w", ErrInvalid, o.name, err)
		}
		*o.dst = col
	}
	return th, nil
}

// AnimationSpec is the configured animation for collaborators that animate.
func (c *Config) AnimationSpec() anim.Spec {
	k, err := anim.ParseKind(c.Animation.Kind)
	if err != nil {
		return anim.Spec{}
	}
	return anim.Spec{Kind: k, Duration: c.Animation.Duration}
}

// Options validates the config and converts it into engine options.
func (c *Config) Options() (grid.Options, error) {
	if err := c.Validate(); err != nil {
		return grid.Options{}, err
	}
	th, _ := c.Palette()
	btn, _ := input.ParseButton(c.PanButton)

	o := grid.DefaultOptions()
	o.Rows, o.Columns = c.Rows, c.Columns
	o.Width, o.Height = c.Width, c.Height
	o.CellSize = c.CellSize
	o.MinCellSize, o.MaxCellSize = c.MinCellSize, c.MaxCellSize
	o.ChunkSize = c.ChunkSize
	o.Background, o.GridColor = th.Background, th.Grid
	o.GridFraction = c.GridFraction
	o.GridDisappearSize = c.GridDisappearSize
	o.GridFadeSteps = c.GridFadeSteps
	o.Animation = c.AnimationSpec()
	o.PanButton = btn
	o.FPS = c.FPS
	o.AllowZoom, o.AllowPan, o.AllowResize = c.AllowZoom, c.AllowPan, c.AllowResize
	o.Friction, o.MinVelocity = c.Friction, c.MinVelocity
	o.DrawBatch = c.DrawBatch
	o.TickDuration = c.Tick.Duration
	o.DiscardOnStop = c.Tick.DiscardOnStop
	return o, nil
}
