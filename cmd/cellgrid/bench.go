package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/cellgrid/internal/backend/headless"
	"github.com/san-kum/cellgrid/internal/config"
	"github.com/san-kum/cellgrid/internal/demo"
	"github.com/san-kum/cellgrid/internal/grid"
	"github.com/san-kum/cellgrid/internal/input"
	"github.com/san-kum/cellgrid/internal/metrics"
	"github.com/san-kum/cellgrid/internal/palette"
	"github.com/san-kum/cellgrid/internal/storage"
)

const benchFPS = 240

const (
	tickRate   = "ticks_per_sec"
	queueDepth = "max_pending"
)

var (
	benchFrames int
	benchOnly   []string
	benchNoSave bool
	benchPlot   bool
)

type scenario struct {
	name     string
	threaded bool
	handler  func(cfg *config.Config) (grid.Handler, error)
	script   func(frames, w, h int) [][]input.Event
}

var scenarios = []scenario{
	{name: "pan", handler: newFiller, script: panScript},
	{name: "zoom", handler: newFiller, script: zoomScript},
	{name: "tick", threaded: true, handler: newBenchLife, script: tickScript},
}

func benchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "headless pan, zoom and tick benchmark",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	cmd.Flags().IntVar(&benchFrames, "frames", 400, "frames per scenario")
	cmd.Flags().StringSliceVar(&benchOnly, "scenario", nil, "scenarios to run (pan, zoom, tick)")
	cmd.Flags().BoolVar(&benchNoSave, "no-save", false, "do not record runs")
	cmd.Flags().BoolVar(&benchPlot, "plot", true, "plot frame times")
	return cmd
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("fps") {
		cfg.FPS = benchFPS
	}
	if benchFrames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", benchFrames)
	}

	selected, err := selectScenarios(benchOnly)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tFRAMES\tMEAN\tP95\tMAX\tTICKS/S\tMAX QUEUE\tRUN")

	var graphs []string
	for _, sc := range selected {
		res, err := benchScenario(cmd.Context(), sc, cfg)
		if err != nil {
			return fmt.Errorf("%s: %w", sc.name, err)
		}

		runID := "-"
		if !benchNoSave {
			runID, err = st.Save(res.meta, res.frames)
			if err != nil {
				return err
			}
		}
		m := res.meta.Metrics
		fmt.Fprintf(w, "%s\t%d\t%.3fms\t%.3fms\t%.3fms\t%.1f\t%.0f\t%s\n",
			sc.name, len(res.frames), m["step_ms"], m["step_ms_p95"], m["step_ms_max"],
			m[tickRate], m[queueDepth], runID)

		if benchPlot && len(res.frames) > 1 {
			graphs = append(graphs, plotFrames(res.frames, sc.name+" frame time (ms)"))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, g := range graphs {
		fmt.Println()
		fmt.Println(g)
	}
	return nil
}

func selectScenarios(names []string) ([]scenario, error) {
	if len(names) == 0 {
		return scenarios, nil
	}
	var out []scenario
	for _, name := range names {
		found := false
		for _, sc := range scenarios {
			if sc.name == name {
				out = append(out, sc)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown scenario: %s", name)
		}
	}
	return out, nil
}

type benchResult struct {
	meta   storage.RunMetadata
	frames []storage.FrameRecord
}

// timedBackend measures each frame from the end of Poll to Present, which
// covers event handling as well as Engine.Frame.
type timedBackend struct {
	grid.Backend
	polled time.Time
	steps  []time.Duration
}

func (t *timedBackend) Poll() ([]input.Event, error) {
	evs, err := t.Backend.Poll()
	t.polled = time.Now()
	return evs, err
}

func (t *timedBackend) Present(img *image.RGBA, changed bool) error {
	t.steps = append(t.steps, time.Since(t.polled))
	return t.Backend.Present(img, changed)
}

func benchScenario(ctx context.Context, sc scenario, cfg *config.Config) (*benchResult, error) {
	h, err := sc.handler(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	frameTimes, trace := metrics.NewFrameTimes(), metrics.NewTrace()
	set := metrics.Set{frameTimes, metrics.NewTickRate(), metrics.NewQueueDepth(), trace}
	opts.Observer = set

	e, err := grid.New(h, opts)
	if err != nil {
		return nil, err
	}
	width, height := opts.WindowSize()
	b := &timedBackend{Backend: headless.New(sc.script(benchFrames, width, height)...)}
	if err := e.Run(ctx, b); err != nil {
		return nil, err
	}

	stats := trace.Frames()
	frames := make([]storage.FrameRecord, 0, len(stats))
	steps := metrics.NewFrameTimes()
	for i, fs := range stats {
		if i >= len(b.steps) {
			break
		}
		frames = append(frames, storage.FrameRecord{
			Frame:   fs.Frame,
			FrameMS: float64(b.steps[i]) / float64(time.Millisecond),
			Drained: fs.Drained,
			Pending: fs.Pending,
			Ticks:   fs.Ticks,
		})
		steps.ObserveFrame(grid.FrameStats{Elapsed: b.steps[i]})
	}

	summary := set.Summary()
	summary["frame_ms_p95"] = frameTimes.P95()
	summary["step_ms"] = steps.Value()
	summary["step_ms_p95"] = steps.P95()
	summary["step_ms_max"] = steps.Max()

	return &benchResult{
		meta: storage.RunMetadata{
			Scenario:  sc.name,
			Timestamp: time.Now(),
			Config: storage.RunConfig{
				Width:     width,
				Height:    height,
				CellSize:  cfg.CellSize,
				FPS:       cfg.FPS,
				Theme:     cfg.Theme,
				Threaded:  sc.threaded,
				Tick:      cfg.Tick.Duration.String(),
				DrawBatch: cfg.DrawBatch,
			},
			Metrics: summary,
		},
		frames: frames,
	}, nil
}

// filler covers a square of cells around the origin at start.
type filler struct {
	grid.BaseHandler
	theme  palette.Theme
	radius int
}

func newFiller(cfg *config.Config) (grid.Handler, error) {
	th, err := cfg.Palette()
	if err != nil {
		return nil, err
	}
	return &filler{theme: th, radius: 150}, nil
}

func (f *filler) OnStart(c grid.Canvas) {
	accents := f.theme.Accents()
	for y := -f.radius; y <= f.radius; y++ {
		for x := -f.radius; x <= f.radius; x++ {
			if h := x*7 + y*13; h%3 == 0 {
				c.DrawCell(x, y, accents[(h/3%len(accents)+len(accents))%len(accents)])
			}
		}
	}
}

func newBenchLife(cfg *config.Config) (grid.Handler, error) {
	th, err := cfg.Palette()
	if err != nil {
		return nil, err
	}
	l := demo.NewLife(th.Cell, cfg.AnimationSpec())
	l.Threaded = true
	l.Seed(acorn...)
	return l, nil
}

var acorn = []image.Point{{1, 0}, {3, 1}, {0, 2}, {1, 2}, {4, 2}, {5, 2}, {6, 2}}

// panScript drags with the middle button in strokes of 30 frames, then lets
// the view coast for 20.
func panScript(frames, w, h int) [][]input.Event {
	script := make([][]input.Event, frames)
	x, y := w/2, h/2
	dir := 1
	for i := range script {
		switch phase := i % 50; {
		case phase == 0:
			script[i] = []input.Event{input.Down(x, y, input.ButtonMiddle)}
		case phase < 30:
			x += 9 * dir
			y += 5 * dir
			script[i] = []input.Event{input.Move(x, y)}
		case phase == 30:
			script[i] = []input.Event{input.Up(x, y, input.ButtonMiddle)}
			dir = -dir
		}
	}
	return script
}

// zoomScript wheels in for 12 frames and back out for 12 around a moving
// anchor.
func zoomScript(frames, w, h int) [][]input.Event {
	script := make([][]input.Event, frames)
	for i := range script {
		amount := 1.0
		if i/12%2 == 1 {
			amount = -1
		}
		x := w/4 + (i*17)%max(w/2, 1)
		y := h/4 + (i*11)%max(h/2, 1)
		script[i] = []input.Event{input.Wheel(x, y, amount)}
	}
	return script
}

// tickScript sets the fastest speed and starts the simulation.
func tickScript(frames, _, _ int) [][]input.Event {
	script := make([][]input.Event, frames)
	script[0] = []input.Event{input.Press("9"), input.Press("space")}
	return script
}

func plotFrames(frames []storage.FrameRecord, caption string) string {
	data := make([]float64, len(frames))
	for i, f := range frames {
		data[i] = f.FrameMS
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}
