package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/cellgrid/internal/config"
	"github.com/san-kum/cellgrid/internal/palette"
)

var (
	nameStyle = lipgloss.NewStyle().Bold(true).Width(16)
	subtle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
)

func themesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "list color themes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range palette.ThemeNames() {
				th, _ := palette.GetTheme(name)
				fmt.Println(themeLine(th))
			}
		},
	}
}

func presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				th, err := cfg.Palette()
				if err != nil {
					return err
				}
				fmt.Printf("%s%s\n", nameStyle.Render(name), subtle.Render(config.Presets[name].Description))
				fmt.Printf("%s%s  cell %dpx, %d fps, tick %v, animation %s\n",
					nameStyle.Render(""), swatch(th.Background, th.Cell), cfg.CellSize, cfg.FPS,
					cfg.Tick.Duration, cfg.Animation.Kind)
			}
			return nil
		},
	}
}

// themeLine renders the theme name followed by a swatch of its colors.
func themeLine(th palette.Theme) string {
	var b strings.Builder
	b.WriteString(nameStyle.Render(th.Name))
	b.WriteString(swatch(th.Background, th.Cell, th.Grid))
	b.WriteString(" ")
	b.WriteString(swatch(th.Accents()...))
	return b.String()
}

func swatch(colors ...palette.Color) string {
	var b strings.Builder
	for _, c := range colors {
		b.WriteString(lipgloss.NewStyle().
			Background(lipgloss.Color(c.Hex())).
			Render("  "))
	}
	return b.String()
}
