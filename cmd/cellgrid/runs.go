package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/cellgrid/internal/storage"
)

var exportOut string

func runsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "list recorded bench runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func plotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded bench run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
}

func exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a bench run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	cmd.Flags().StringVarP(&exportOut, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tFRAMES\tSIZE\tCELL\tFPS\tSTEP MS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%dx%d\t%d\t%d\t%.3f\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Config.Width, run.Config.Height,
			run.Config.CellSize,
			run.Config.FPS,
			run.Metrics["step_ms"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("frames: %d\n\n", len(frames))

	fmt.Println(plotFrames(frames, "frame time (ms)"))
	fmt.Println()

	pending := make([]float64, len(frames))
	queued := false
	for i, f := range frames {
		pending[i] = float64(f.Pending)
		queued = queued || f.Pending > 0
	}
	if queued {
		fmt.Println(asciigraph.Plot(pending,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("queued draws"),
		))
		fmt.Println()
	}

	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("metrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.4f\n", name, meta.Metrics[name])
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if exportOut != "" {
		if err := storage.ExportJSON(exportOut, *meta, frames); err != nil {
			return err
		}
		fmt.Printf("exported %s to %s\n", runID, exportOut)
		return nil
	}
	return storage.WriteJSON(os.Stdout, *meta, frames)
}
