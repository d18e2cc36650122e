package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/mkraev/yarnsim/internal/config"
	"github.com/mkraev/yarnsim/internal/export"
	"github.com/mkraev/yarnsim/internal/metrics"
	"github.com/mkraev/yarnsim/internal/scene"
	"github.com/mkraev/yarnsim/internal/sim"
	"github.com/mkraev/yarnsim/internal/storage"
	"github.com/mkraev/yarnsim/internal/viz"
	"github.com/mkraev/yarnsim/internal/yarn"
)

var (
	dataDir    string
	configFile string
	preset     string

	dt       float64
	tEnd     float64
	segments int
	length   float64
	radius   float64
	density  float64

	anchorFirst bool
	fixed       bool
	collision   bool
	rsda        bool
	proxy       bool
	proxySpan   int

	precheckSeconds float64
	noSave          bool
	frameRate       int

	svgOut   string
	svgEvery int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "yarnsim",
		Short: "segmented yarn chain simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".yarnsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a falling-yarn simulation",
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().Float64Var(&precheckSeconds, "precheck", 0.0, "headless stability precheck seconds")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run")

	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "build a fixed-segment chain and print its placement",
		RunE:  runLayout,
	}
	addSceneFlags(layoutCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch a simulation in the terminal",
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frames per second")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot recorded run telemetry",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata or an SVG motion trail",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&svgOut, "svg", "", "write chain profile SVG to this path")
	exportCmd.Flags().IntVar(&svgEvery, "every", 5, "keep every Nth sample in the SVG")

	gapCmd := &cobra.Command{
		Use:   "gap [run_id]",
		Short: "summarize joint-gap drift of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  gapRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, layoutCmd, liveCmd, listCmd, plotCmd, exportCmd, gapCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "scenario preset name")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	cmd.Flags().Float64Var(&tEnd, "time", 0, "duration override")
	cmd.Flags().IntVar(&segments, "segments", 0, "segment count override")
	cmd.Flags().Float64Var(&length, "length", 0, "yarn length override")
	cmd.Flags().Float64Var(&radius, "radius", 0, "yarn radius override")
	cmd.Flags().Float64Var(&density, "density", 0, "yarn density override")
	cmd.Flags().BoolVar(&anchorFirst, "anchor", true, "anchor the first segment")
	cmd.Flags().BoolVar(&fixed, "fixed", false, "fix all segments (no joints)")
	cmd.Flags().BoolVar(&collision, "collision", true, "enable collision")
	cmd.Flags().BoolVar(&rsda, "rsda", false, "enable rotational bending dampers")
	cmd.Flags().BoolVar(&proxy, "proxy", false, "enable translational bending proxy")
	cmd.Flags().IntVar(&proxySpan, "span", config.DefaultProxySpan, "bending proxy span")
}

// loadConfig resolves the run configuration: preset or file as the base, then
// command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (see `yarnsim presets`)", preset)
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if dt > 0 {
		cfg.Sim.Dt = dt
	}
	if tEnd > 0 {
		cfg.Sim.TEnd = tEnd
	}
	if segments > 0 {
		cfg.Yarn.SegmentCount = segments
	}
	if length > 0 {
		cfg.Yarn.Length = length
	}
	if radius > 0 {
		cfg.Yarn.Radius = radius
	}
	if density > 0 {
		cfg.Yarn.Density = density
	}
	if cmd.Flags().Changed("anchor") {
		cfg.Scene.AnchorFirst = anchorFirst
	}
	if cmd.Flags().Changed("fixed") {
		cfg.Scene.FixedSegments = fixed
	}
	if cmd.Flags().Changed("collision") {
		cfg.Scene.Collision = collision
	}
	if cmd.Flags().Changed("rsda") {
		cfg.Bending.RSDA = rsda
	}
	if cmd.Flags().Changed("proxy") {
		cfg.Bending.Proxy = proxy
	}
	if cmd.Flags().Changed("span") {
		cfg.Bending.ProxySpan = proxySpan
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	handles, err := scene.Build(cfg)
	if err != nil {
		return err
	}

	printParameters(cfg, handles)

	runner := sim.New(handles)
	runner.AddMetric(metrics.NewJointGap())
	runner.AddMetric(metrics.NewMinHeight())

	if precheckSeconds > 0 {
		if err := runner.Precheck(precheckSeconds, cfg.Sim.Dt); err != nil {
			return fmt.Errorf("precheck failed: %w", err)
		}
		fmt.Printf("precheck ok: %.2fs stable\n", precheckSeconds)
	}

	result, err := runner.Run(context.Background(), cfg.Sim)
	if err != nil {
		return err
	}
	for _, stepErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", stepErr)
	}

	runID := "(not saved)"
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err = st.Save(storage.RunMetadata{
			ContactModel: cfg.Sim.ContactModel,
			Dt:           cfg.Sim.Dt,
			TEnd:         cfg.Sim.TEnd,
			Length:       cfg.Yarn.Length,
			SegmentCount: cfg.Yarn.SegmentCount,
			Radius:       cfg.Yarn.Radius,
			Density:      cfg.Yarn.Density,
			Anchored:     cfg.Scene.AnchorFirst,
			Fixed:        cfg.Scene.FixedSegments,
		}, result)
		if err != nil {
			return err
		}
	}

	fmt.Printf("\nrun %s: %d steps, %d samples\n", runID, result.StepsTaken, len(result.Samples))
	for name, value := range result.Metrics {
		fmt.Printf("  %s = %.6g\n", name, value)
	}
	return nil
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Scene.FixedSegments = true
	cfg.Scene.AnchorFirst = false

	handles, err := scene.Build(cfg)
	if err != nil {
		return err
	}
	chain := handles.Chain

	fmt.Printf("segments=%d seg_len=%.6f m joints=%d\n\n",
		len(chain.Segments), chain.SegmentLength, len(chain.Joints))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IDX\tX\tY\tZ")
	for i, p := range yarn.SegmentPositions(chain) {
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.6f\n", i, p[0], p[1], p[2])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nplacement gap: %.3g m\n", yarn.MaxNeighborJointGap(chain))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	handles, err := scene.Build(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(handles, cfg, frameRate))
	_, err = p.Run()
	return err
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
	fmt.Fprintln(w, "ID\tTIME\tSEGMENTS\tLENGTH\tDT\tDURATION\tANCHORED\tMAX GAP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2fm\t%.4gs\t%.2fs\t%v\t%.4g\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.SegmentCount,
			run.Length,
			run.Dt,
			run.TEnd,
			run.Anchored,
			run.Metrics["max_joint_gap"],
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
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("run %s has no samples to plot", runID)
	}

	fmt.Printf("run: %s\nsegments: %d  samples: %d\n\n", meta.ID, meta.SegmentCount, len(samples))

	gaps := make([]float64, len(samples))
	lows := make([]float64, len(samples))
	for i, sample := range samples {
		gaps[i] = sample.JointGap * 1000
		low := sample.Positions[0][1]
		for _, p := range sample.Positions {
			if p[1] < low {
				low = p[1]
			}
		}
		lows[i] = low
	}

	fmt.Println(asciigraph.Plot(gaps,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("max joint gap (mm)"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(lows,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("lowest segment height (m)"),
	))
	return nil
}

func gapRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("run %s has no samples", runID)
	}

	maxGap, sum := 0.0, 0.0
	maxAt := 0.0
	for _, sample := range samples {
		sum += sample.JointGap
		if sample.JointGap > maxGap {
			maxGap = sample.JointGap
			maxAt = sample.Time
		}
	}

	fmt.Printf("run %s: %d samples\n", runID, len(samples))
	fmt.Printf("max joint gap:   %.4g m (%.4g mm) at t=%.3fs\n", maxGap, maxGap*1000, maxAt)
	fmt.Printf("mean joint gap:  %.4g m\n", sum/float64(len(samples)))
	fmt.Printf("final joint gap: %.4g m\n", samples[len(samples)-1].JointGap)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	if svgOut != "" {
		samples, err := st.LoadSamples(runID)
		if err != nil {
			return err
		}
		svg := export.ChainProfileSVG(samples, 900, 500, svgEvery)
		if svg == "" {
			return fmt.Errorf("run %s has no samples to export", runID)
		}
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
		return nil
	}

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func printParameters(cfg *config.Config, handles *scene.Handles) {
	fmt.Printf("contact=%s dt=%g s t_end=%g s\n", cfg.Sim.ContactModel, cfg.Sim.Dt, cfg.Sim.TEnd)
	fmt.Printf("segments=%d length=%g m seg_len=%.6f m radius=%g m density=%g kg/m^3\n",
		cfg.Yarn.SegmentCount, cfg.Yarn.Length, cfg.Yarn.SegmentLength(),
		cfg.Yarn.Radius, cfg.Yarn.Density)
	fmt.Printf("anchored=%v fixed=%v collision=%v self_collision=%v\n",
		cfg.Scene.AnchorFirst, cfg.Scene.FixedSegments, cfg.Scene.Collision, cfg.Scene.SelfCollision)
	if cfg.Bending.RSDA {
		k, c := scene.EffectiveRSDAParams(cfg.Bending, cfg.Yarn.SegmentCount)
		fmt.Printf("rsda on (k=%g, c=%g, rest=%g, auto_scale=%v)\n",
			k, c, cfg.Bending.RSDARestAngle, cfg.Bending.AutoScale)
	}
	if cfg.Bending.Proxy {
		fmt.Printf("tsda proxy on (span=%d, k=%g, c=%g)\n",
			cfg.Bending.ProxySpan, cfg.Bending.ProxyK, cfg.Bending.ProxyC)
	}
	fmt.Printf("bodies=%d links=%d\n", handles.Sys.NumBodies(), handles.Sys.NumLinks())
}
