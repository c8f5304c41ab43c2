package config

import (
	"sort"
	"time"
)

type Preset struct {
	Description string
	apply       func(*Config)
}

var Presets = map[string]Preset{
	"paint": {
		Description: "free drawing, animated cells, middle button pans",
		apply: func(c *Config) {
			c.Animation = AnimationConfig{Kind: "grow_in", Duration: 150 * time.Millisecond}
		},
	},
	"life": {
		Description: "game of life on small cells with threaded ticks",
		apply: func(c *Config) {
			c.Rows, c.Columns = 60, 100
			c.CellSize = 12
			c.GridFraction = 0.08
			c.Animation.Kind = "none"
			c.Tick = TickConfig{Duration: 100 * time.Millisecond, Threaded: true}
		},
	},
	"term": {
		Description: "terminal friendly: no grid lines, no animation, 30 fps",
		apply: func(c *Config) {
			c.CellSize = 16
			c.GridFraction = 0
			c.Animation.Kind = "none"
			c.FPS = 30
			c.Tick = TickConfig{Duration: 150 * time.Millisecond, Threaded: true}
		},
	},
	"huge": {
		Description: "full HD window of tiny cells, large draw batches",
		apply: func(c *Config) {
			c.Rows, c.Columns = 0, 0
			c.Width, c.Height = 1920, 1080
			c.CellSize = 6
			c.DrawBatch = 500
			c.Animation.Kind = "none"
			c.Tick = TickConfig{Duration: 50 * time.Millisecond, Threaded: true, DiscardOnStop: true}
		},
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
