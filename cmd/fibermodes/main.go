package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/fibermodes/internal/analysis"
	"github.com/san-kum/fibermodes/internal/analytic"
	"github.com/san-kum/fibermodes/internal/automation"
	"github.com/san-kum/fibermodes/internal/config"
	"github.com/san-kum/fibermodes/internal/coupling"
	"github.com/san-kum/fibermodes/internal/logging"
	"github.com/san-kum/fibermodes/internal/modes"
	"github.com/san-kum/fibermodes/internal/report"
	"github.com/san-kum/fibermodes/internal/storage"
	"github.com/san-kum/fibermodes/internal/sweep"
	"github.com/san-kum/fibermodes/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	// Fiber
	profileKind string
	radius      float64
	na          float64
	n1          float64
	alpha       float64
	npoints     int
	area        float64
	// Solver
	wavelength float64
	nmodes     int
	boundary   string
	curvature  float64
	poisson    float64
	workers    int
	// Run inspection
	tol       float64
	sorted    bool
	asJSON    bool
	modeIndex int
	component string
	outPath   string
	showIndex bool
	farField  bool
	padding   int
	theme     string
	// Propagation
	length     float64
	npola      int
	couple     bool
	polAngle   float64
	seed       int64
	wlList     string
	saveRuns   bool
	configOut  string
	plotModes  int
	logger     *zap.Logger
)

const defaultTol = 1e-6

func main() {
	rootCmd := &cobra.Command{
		Use:          "fibermodes",
		Short:        "scalar mode solver for multimode optical fibers",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.New(verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "solve the guided modes of a fiber and store the run",
		Args:  cobra.NoArgs,
		RunE:  solveRun,
	}
	addFiberFlags(solveCmd)
	solveCmd.Flags().Float64Var(&wavelength, "wl", config.DefaultWavelength, "wavelength (µm)")

	estimateCmd := &cobra.Command{
		Use:   "estimate",
		Short: "estimate the number of guided modes",
		Args:  cobra.NoArgs,
		RunE:  estimateModes,
	}
	estimateCmd.Flags().Float64Var(&wavelength, "wl", config.DefaultWavelength, "wavelength (µm)")
	estimateCmd.Flags().Float64Var(&radius, "radius", config.DefaultRadius, "core radius (µm)")
	estimateCmd.Flags().Float64Var(&na, "na", config.DefaultNA, "numerical aperture")
	estimateCmd.Flags().Float64Var(&n1, "n1", config.DefaultN1, "core index")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show propagation constants of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON summary")
	showCmd.Flags().Float64Var(&tol, "tol", defaultTol, "degeneracy tolerance (rad/µm)")

	groupsCmd := &cobra.Command{
		Use:   "groups [run_id]",
		Short: "list near-degenerate mode groups",
		Args:  cobra.ExactArgs(1),
		RunE:  showGroups,
	}
	groupsCmd.Flags().Float64Var(&tol, "tol", defaultTol, "degeneracy tolerance (rad/µm)")
	groupsCmd.Flags().BoolVar(&sorted, "sorted", false, "order groups by decreasing beta")

	tmCmd := &cobra.Command{
		Use:   "tm [run_id]",
		Short: "summarize the propagation matrix of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  transmission,
	}
	tmCmd.Flags().Float64Var(&length, "length", 1e4, "fiber length (µm)")
	tmCmd.Flags().IntVar(&npola, "npola", 1, "number of polarizations (1 or 2)")
	tmCmd.Flags().Float64Var(&curvature, "curvature", 0, "bend radius (µm)")
	tmCmd.Flags().BoolVar(&couple, "couple", false, "apply random coupling within degenerate groups")
	tmCmd.Flags().Float64Var(&tol, "tol", defaultTol, "degeneracy tolerance for --couple")
	tmCmd.Flags().Int64Var(&seed, "seed", 1, "random seed for --couple")
	tmCmd.Flags().Float64Var(&polAngle, "rotate", 0, "polarization rotation (rad), npola 2 only")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "render a mode or the index profile as PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&modeIndex, "mode", 0, "mode index")
	plotCmd.Flags().StringVar(&component, "component", "intensity", "intensity, real or imag")
	plotCmd.Flags().StringVar(&outPath, "out", "", "output file (default <run>_mode<i>.png)")
	plotCmd.Flags().BoolVar(&showIndex, "index", false, "plot the index profile instead")
	plotCmd.Flags().BoolVar(&farField, "farfield", false, "plot the far-field intensity of the mode")
	plotCmd.Flags().IntVar(&padding, "pad", 2, "far-field zero padding factor")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "effective area, mode field diameter and divergence per mode",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&padding, "pad", 2, "far-field zero padding factor")

	browseCmd := &cobra.Command{
		Use:   "browse [run_id]",
		Short: "browse the modes of a run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  browseRun,
	}
	browseCmd.Flags().Float64Var(&tol, "tol", defaultTol, "degeneracy tolerance (rad/µm)")
	browseCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "solve at several wavelengths in parallel",
		Args:  cobra.NoArgs,
		RunE:  sweepRun,
	}
	addFiberFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&wlList, "wl", "1.3,1.45,1.55", "comma separated wavelengths (µm)")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel solves (default GOMAXPROCS)")
	sweepCmd.Flags().BoolVar(&saveRuns, "save", false, "store every solved wavelength")
	sweepCmd.Flags().StringVar(&outPath, "plot", "", "write a dispersion plot to this file")
	sweepCmd.Flags().IntVar(&plotModes, "plot-modes", 6, "modes drawn in the dispersion plot")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list fiber presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "write the effective configuration as yaml",
		Args:  cobra.NoArgs,
		RunE:  writeConfig,
	}
	addFiberFlags(configCmd)
	configCmd.Flags().Float64Var(&wavelength, "wl", config.DefaultWavelength, "wavelength (µm)")
	configCmd.Flags().StringVar(&configOut, "out", "fibermodes.yaml", "output file")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run the solves listed in a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  batchRun,
	}

	rootCmd.AddCommand(solveCmd, estimateCmd, listCmd, showCmd, groupsCmd, tmCmd, plotCmd, analyzeCmd, browseCmd, sweepCmd, batchCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addFiberFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&profileKind, "profile", "step", "index profile (step or grin)")
	f.Float64Var(&radius, "radius", config.DefaultRadius, "core radius (µm)")
	f.Float64Var(&na, "na", config.DefaultNA, "numerical aperture")
	f.Float64Var(&n1, "n1", config.DefaultN1, "index on axis")
	f.Float64Var(&alpha, "alpha", config.DefaultAlpha, "GRIN exponent")
	f.IntVar(&npoints, "npoints", config.DefaultNPoints, "grid points per side")
	f.Float64Var(&area, "area", config.DefaultAreaSize, "window side (µm)")
	f.IntVar(&nmodes, "nmodes", config.DefaultNModes, "maximum number of modes")
	f.StringVar(&boundary, "boundary", config.DefaultBoundary, "close or periodic")
	f.Float64Var(&curvature, "curvature", 0, "bend radius (µm)")
	f.Float64Var(&poisson, "poisson", config.DefaultPoisson, "Poisson ratio for bends")
}

// buildConfig resolves preset, config file and flags, in that order. Flags
// only override when given explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.FindPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, allPresets())
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
	changed := func(name string) bool { return flags.Lookup(name) != nil && flags.Changed(name) }
	if changed("profile") {
		cfg.Fiber.Profile = profileKind
	}
	if changed("radius") {
		cfg.Fiber.Radius = radius
	}
	if changed("na") {
		cfg.Fiber.NA = na
	}
	if changed("n1") {
		cfg.Fiber.N1 = n1
	}
	if changed("alpha") {
		cfg.Fiber.Alpha = alpha
	}
	if changed("npoints") {
		cfg.Fiber.NPoints = npoints
	}
	if changed("area") {
		cfg.Fiber.AreaSize = area
	}
	if changed("wl") && flags.Lookup("wl").Value.Type() == "float64" {
		cfg.Solver.Wavelength = wavelength
	}
	if changed("nmodes") {
		cfg.Solver.NModesMax = nmodes
	}
	if changed("boundary") {
		cfg.Solver.Boundary = boundary
	}
	if changed("curvature") {
		r := curvature
		cfg.Solver.Curvature = &r
	}
	if changed("poisson") {
		cfg.Solver.Poisson = poisson
	}
	if changed("workers") {
		cfg.Workers = workers
	}
	if changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func allPresets() []string {
	var names []string
	for kind := range config.Presets {
		names = append(names, config.ListPresets(kind)...)
	}
	sort.Strings(names)
	return names
}

func estimate(cfg *config.Config, wl float64) int {
	if cfg.Fiber.Profile == "grin" {
		return analytic.EstimateNumModesGRIN(wl, cfg.Fiber.Radius, cfg.Fiber.NA)
	}
	return analytic.EstimateNumModesSI(wl, cfg.Fiber.Radius, cfg.Fiber.NA)
}

func solveRun(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("solving %s fiber at %.4g µm (%dx%d grid)...\n", cfg.Fiber.Profile, cfg.Solver.Wavelength, cfg.Fiber.NPoints, cfg.Fiber.NPoints)
	set, elapsed, err := automation.Solve(ctx, cfg, logger)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(automation.Metadata(cfg, elapsed), set)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("modes: %d (estimate %d)\n", set.Number(), estimate(cfg, cfg.Solver.Wavelength))
	if set.Saturated() {
		fmt.Println("saturated: raise --nmodes to search for more modes")
	}
	return printModes(set, defaultTol)
}

func printModes(set *modes.ModeSet, tol float64) error {
	groupOf := make([]int, set.Number())
	for g, members := range set.NearDegenerate(tol, false) {
		for _, i := range members {
			groupOf[i] = g
		}
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tBETA (rad/µm)\tN_EFF\tGROUP")
	for i, b := range set.RealBetas() {
		fmt.Fprintf(w, "%d\t%.8f\t%.8f\t%d\n", i, b, set.EffectiveIndex(i), groupOf[i])
	}
	return w.Flush()
}

func estimateModes(cmd *cobra.Command, args []string) error {
	v := analytic.VNumber(wavelength, radius, na)
	fmt.Printf("V number: %.4f\n", v)
	fmt.Printf("step-index modes (per polarization): %d\n", analytic.EstimateNumModesSI(wavelength, radius, na))
	fmt.Printf("parabolic GRIN modes (per polarization): %d\n", analytic.EstimateNumModesGRIN(wavelength, radius, na))
	if v > 0 {
		beta := analytic.StepIndexBeta(wavelength, radius, n1, na)
		fmt.Printf("fundamental mode: U = %.4f, beta = %.6f rad/µm, n_eff = %.6f\n",
			analytic.FundamentalU(v), beta, beta*wavelength/(2*math.Pi))
	}
	return nil
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
	fmt.Fprintln(w, "ID\tPROFILE\tTIME\tWL\tMODES\tBOUNDARY\tBEND")

	for _, run := range runs {
		bend := "-"
		if run.Curvature != nil {
			bend = fmt.Sprintf("%.4g", *run.Curvature)
		}
		n := strconv.Itoa(run.NumModes)
		if run.Saturated {
			n += "+"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4g\t%s\t%s\t%s\n",
			run.ID,
			run.Fiber.Profile,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Wavelength,
			n,
			run.Boundary,
			bend,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*modes.ModeSet, *storage.RunMetadata, error) {
	set, meta, err := storage.New(dataDir).LoadModes(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return set, meta, nil
}

func showRun(cmd *cobra.Command, args []string) error {
	set, meta, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if asJSON {
		return storage.WriteJSON(os.Stdout, storage.Summarize(meta.ID, set, tol))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("fiber: %s, a = %.4g µm, NA = %.4g, n1 = %.6g\n", meta.Fiber.Profile, meta.Fiber.Radius, meta.Fiber.NA, meta.Fiber.N1)
	fmt.Printf("wavelength: %.4g µm\n", meta.Wavelength)
	if meta.Curvature != nil {
		fmt.Printf("bend radius: %.4g µm\n", *meta.Curvature)
	}
	fmt.Printf("modes: %d\n\n", set.Number())
	if err := printModes(set, tol); err != nil {
		return err
	}

	if set.Number() > 1 {
		neff := make([]float64, set.Number())
		for i := range neff {
			neff[i] = set.EffectiveIndex(i)
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(neff, asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("effective index by mode")))
	}
	return nil
}

func showGroups(cmd *cobra.Command, args []string) error {
	set, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	groups := set.NearDegenerate(tol, sorted)
	fmt.Printf("%d groups at tolerance %g rad/µm\n", len(groups), tol)
	for g, members := range groups {
		parts := make([]string, len(members))
		for k, i := range members {
			parts[k] = strconv.Itoa(i)
		}
		fmt.Printf("  %3d  n_eff %.8f  {%s}\n", g, set.EffectiveIndex(members[0]), strings.Join(parts, ", "))
	}
	return nil
}

func transmission(cmd *cobra.Command, args []string) error {
	set, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	var bend *float64
	if cmd.Flags().Changed("curvature") {
		bend = &curvature
	}
	tm, err := set.PropagationMatrix(length, npola, bend)
	if errors.Is(err, modes.ErrCurvatureReapplied) {
		return fmt.Errorf("%w: the run was solved with a bend, omit --curvature", err)
	}
	if err != nil {
		return err
	}
	if couple {
		u, err := coupling.RandomGroupCoupling(set.NearDegenerate(tol, false), rand.New(rand.NewSource(seed)))
		if err != nil {
			return err
		}
		if tm, err = tm.Couple(u); err != nil {
			return err
		}
	}
	if polAngle != 0 {
		tm = modes.PolarizationRotation(tm, polAngle)
	}

	n := tm.Size()
	lo, hi, sum := math.Inf(1), 0.0, 0.0
	for i := 0; i < n; i++ {
		d := cmplx.Abs(tm.Data.At(i, i))
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
		sum += d
	}
	fmt.Printf("size: %dx%d (npola %d)\n", n, n, tm.NPola)
	fmt.Printf("length: %.4g µm\n", length)
	fmt.Printf("unitarity error: %.3e\n", tm.UnitarityError())
	fmt.Printf("|T_ii|: min %.6f  mean %.6f  max %.6f\n", lo, sum/float64(n), hi)
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	set, _, err := loadRun(runID)
	if err != nil {
		return err
	}

	out := outPath
	if showIndex {
		if out == "" {
			out = runID + "_index.png"
		}
		if err := report.Save(report.IndexHeatMap(set.IndexProfile()), out); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	}

	if farField {
		if modeIndex < 0 || modeIndex >= set.Number() {
			return fmt.Errorf("%w: %d of %d", report.ErrModeIndex, modeIndex, set.Number())
		}
		g := set.IndexProfile()
		ff, err := analysis.NewFarField(set.Profile(modeIndex), g.NPoints(), g.Dh(), set.Wavelength(), padding)
		if err != nil {
			return err
		}
		if out == "" {
			out = fmt.Sprintf("%s_farfield%d.png", runID, modeIndex)
		}
		if err := report.Save(report.FarFieldHeatMap(ff, fmt.Sprintf("mode %d far field", modeIndex)), out); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	}

	c, err := report.ParseComponent(component)
	if err != nil {
		return err
	}
	p, err := report.ModeHeatMap(set, modeIndex, c)
	if err != nil {
		return err
	}
	if out == "" {
		out = fmt.Sprintf("%s_mode%d.png", runID, modeIndex)
	}
	if err := report.Save(p, out); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	set, meta, err := loadRun(args[0])
	if err != nil {
		return err
	}
	g := set.IndexProfile()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tN_EFF\tA_EFF (µm²)\tMFD (µm)\tSIN_RMS")
	for i := 0; i < set.Number(); i++ {
		p := set.Profile(i)
		aeff, err := analysis.EffectiveArea(p, g.Dh())
		if err != nil {
			return fmt.Errorf("mode %d: %w", i, err)
		}
		mfd, err := analysis.ModeFieldDiameter(p, g.X(), g.Y())
		if err != nil {
			return fmt.Errorf("mode %d: %w", i, err)
		}
		ff, err := analysis.NewFarField(p, g.NPoints(), g.Dh(), set.Wavelength(), padding)
		if err != nil {
			return fmt.Errorf("mode %d: %w", i, err)
		}
		fmt.Fprintf(w, "%d\t%.8f\t%.3f\t%.3f\t%.4f\n", i, set.EffectiveIndex(i), aeff, mfd, ff.RMSSine())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if meta.Fiber.Profile != "step" || set.Number() == 0 {
		return nil
	}
	v := analytic.VNumber(set.Wavelength(), meta.Fiber.Radius, meta.Fiber.NA)
	u := analytic.FundamentalU(v)
	lp, err := analytic.LPModeProfile(analytic.LPParams{
		U:        u,
		W:        math.Sqrt(v*v - u*u),
		Radius:   meta.Fiber.Radius,
		NPoints:  g.NPoints(),
		AreaSize: meta.Fiber.AreaSize,
	})
	if err != nil {
		return err
	}
	ref := make([]complex128, len(lp.Field))
	for i, f := range lp.Field {
		ref[i] = complex(f, 0)
	}
	ov, err := analysis.Overlap(ref, set.Profile(0))
	if err != nil {
		return err
	}
	fmt.Printf("overlap of mode 0 with the analytic LP01 profile: %.4f\n", ov)
	return nil
}

func browseRun(cmd *cobra.Command, args []string) error {
	set, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return viz.RunBrowser(set, tol, theme)
}

func parseWavelengths(s string) ([]float64, error) {
	var wls []float64
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		wl, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid wavelength %q: %w", f, err)
		}
		wls = append(wls, wl)
	}
	return wls, nil
}

func sweepRun(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	wls, err := parseWavelengths(wlList)
	if err != nil {
		return err
	}
	grid, err := cfg.BuildProfile()
	if err != nil {
		return err
	}
	opts, err := cfg.SolveOptions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sw := sweep.New(grid, opts, logger).WithWorkers(cfg.Workers).WithEigenOptions(cfg.EigenOptions())
	start := time.Now()
	points, err := sw.Run(ctx, wls)
	if err != nil {
		return err
	}
	fmt.Printf("%d wavelengths in %v\n", len(points), time.Since(start).Round(time.Millisecond))

	var st *storage.Store
	if saveRuns {
		st = storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WL\tMODES\tESTIMATE\tN_EFF(0)\tELAPSED\tRUN")
	for _, p := range points {
		runID := "-"
		if st != nil {
			if runID, err = st.Save(automation.Metadata(cfg, p.Elapsed), p.Modes); err != nil {
				return err
			}
		}
		neff := "-"
		if p.Modes.Number() > 0 {
			neff = fmt.Sprintf("%.8f", p.Modes.EffectiveIndex(0))
		}
		fmt.Fprintf(w, "%.4g\t%d\t%d\t%s\t%v\t%s\n", p.Wavelength, p.Modes.Number(), estimate(cfg, p.Wavelength), neff, p.Elapsed.Round(time.Millisecond), runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if outPath != "" {
		p, err := report.DispersionPlot(points, plotModes)
		if err != nil {
			return err
		}
		if err := report.Save(p, outPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	kinds := make([]string, 0, len(config.Presets))
	for kind := range config.Presets {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPROFILE\tRADIUS\tNA\tNPOINTS\tNMODES")
	for _, kind := range kinds {
		for _, name := range config.ListPresets(kind) {
			cfg := config.GetPreset(kind, name)
			fmt.Fprintf(w, "%s\t%s\t%.4g\t%.4g\t%d\t%d\n", name, kind, cfg.Fiber.Radius, cfg.Fiber.NA, cfg.Fiber.NPoints, cfg.Solver.NModesMax)
		}
	}
	return w.Flush()
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(configOut, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", configOut)
	return nil
}

func batchRun(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if sc.Name != "" {
		fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	}
	results, runErr := automation.RunScenario(ctx, sc, st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN\tMODES\tELAPSED")
	for _, r := range results {
		n := strconv.Itoa(r.NumModes)
		if r.Saturated {
			n += "+"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", r.Name, r.RunID, n, r.Elapsed.Round(time.Millisecond))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}
