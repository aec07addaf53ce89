package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/mcp"
	"github.com/san-kum/quadsim/internal/metrics"
	"github.com/san-kum/quadsim/internal/optim"
	"github.com/san-kum/quadsim/internal/report"
	"github.com/san-kum/quadsim/internal/sim"
	"github.com/san-kum/quadsim/internal/storage"
)

var (
	dataDir  string
	logLevel string
	jsonLogs bool

	configFile  string
	preset      string
	dt          float64
	duration    float64
	seed        int64
	roll        float64
	pitch       float64
	yaw         float64
	targetRoll  float64
	targetPitch float64
	targetYaw   float64
	kp          float64
	kd          float64
	sigma       float64
	disturbance float64
	recordEvery int
	noSave      bool

	numRuns    int
	outPath    string
	kpRange    []float64
	kdRange    []float64
	gridPoints int
	tuneMetric string
	topN       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "quadsim",
		Short:         "quadrotor flight dynamics and attitude control simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".quadsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "fly one simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addFlightFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "fly many seeded runs concurrently and summarize them",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addFlightFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 16, "number of runs")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve a live flight as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE:  serveMCP,
	}
	addFlightFlags(serveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a stored run's states as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search PD gains against a metric",
		Args:  cobra.NoArgs,
		RunE:  tuneGains,
	}
	addFlightFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&kpRange, "kp-range", []float64{0.5, 4}, "kp search range lo,hi")
	tuneCmd.Flags().Float64SliceVar(&kdRange, "kd-range", []float64{0.2, 2}, "kd search range lo,hi")
	tuneCmd.Flags().IntVar(&gridPoints, "points", 6, "grid points per gain")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", optim.DefaultTuneMetric, "metric to minimize")
	tuneCmd.Flags().IntVar(&topN, "top", 5, "number of trials to show")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(report.Presets(config.ListPresets(), config.DescribePreset))
		},
	}

	rootCmd.AddCommand(runCmd, ensembleCmd, tuneCmd, serveCmd, listCmd, exportCmd, exportCSVCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addFlightFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	f.Int64Var(&seed, "seed", 0, "random seed (default: time based)")
	f.Float64Var(&roll, "roll", 0, "launch roll (deg)")
	f.Float64Var(&pitch, "pitch", 0, "launch pitch (deg)")
	f.Float64Var(&yaw, "yaw", 0, "launch yaw (deg)")
	f.Float64Var(&targetRoll, "target-roll", 0, "target roll (deg)")
	f.Float64Var(&targetPitch, "target-pitch", 0, "target pitch (deg)")
	f.Float64Var(&targetYaw, "target-yaw", 0, "target yaw (deg)")
	f.Float64Var(&kp, "kp", 0, "proportional gain")
	f.Float64Var(&kd, "kd", 0, "derivative gain")
	f.Float64Var(&sigma, "sigma", 0, "gyro noise magnitude (rad/s)")
	f.Float64Var(&disturbance, "disturbance", 0, "launch angular velocity disturbance (rad/s)")
	f.IntVar(&recordEvery, "record-every", 1, "keep every Nth snapshot")
}

// loadConfig layers defaults, preset, config file, environment and finally
// explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		var err error
		cfg, err = config.LoadInto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("dt", func() { cfg.Dt = dt })
	set("time", func() { cfg.Duration = duration })
	set("seed", func() { cfg.Seed = seed })
	set("roll", func() { cfg.Launch.EulerDeg.X = roll })
	set("pitch", func() { cfg.Launch.EulerDeg.Y = pitch })
	set("yaw", func() { cfg.Launch.EulerDeg.Z = yaw })
	set("target-roll", func() { cfg.Controller.TargetDeg.X = targetRoll })
	set("target-pitch", func() { cfg.Controller.TargetDeg.Y = targetPitch })
	set("target-yaw", func() { cfg.Controller.TargetDeg.Z = targetYaw })
	set("kp", func() { cfg.Controller.Kp = kp })
	set("kd", func() { cfg.Controller.Kd = kd })
	set("sigma", func() { cfg.Sensor.GyroSigma = sigma })
	set("disturbance", func() { cfg.Launch.Disturbance = disturbance })
	set("record-every", func() { cfg.RecordEvery = recordEvery })

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewDevelopmentConfig()
	if jsonLogs {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func runName() string {
	if preset != "" {
		return preset
	}
	return "custom"
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	sc := cfg.SimConfig()
	s := sim.New(logger)
	for _, m := range metrics.Standard(sc.Flight.Target, cfg.Vehicle.Mass, cfg.Vehicle.Gravity) {
		s.AddMetric(m)
	}

	logger.Info("running simulation",
		zap.String("name", runName()),
		zap.Int64("seed", cfg.Seed),
		zap.Float64("dt", cfg.Dt),
		zap.Float64("duration", cfg.Duration),
	)
	start := time.Now()
	result, err := s.Run(ctx, sc)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID := "-"
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err = st.Save(storage.RunInfo{
			Name:     runName(),
			Seed:     cfg.Seed,
			Dt:       cfg.Dt,
			Duration: cfg.Duration,
			Vehicle:  cfg.Vehicle,
		}, result)
		if err != nil {
			return err
		}
	}

	fmt.Println(report.Run(runID, result, elapsed))
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	if numRuns < 1 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	sc := cfg.SimConfig()
	newMetrics := func() []dynamo.Metric {
		return metrics.Standard(sc.Flight.Target, cfg.Vehicle.Mass, cfg.Vehicle.Gravity)
	}

	logger.Info("running ensemble", zap.Int("runs", numRuns), zap.Int64("seed", cfg.Seed))
	start := time.Now()
	results, err := sim.NewEnsemble(logger, numRuns, cfg.Seed, newMetrics).Run(ctx, sc)
	if err != nil {
		return err
	}

	fmt.Println(report.Ensemble(sim.Summarize(results), time.Since(start)))
	return nil
}

func tuneGains(cmd *cobra.Command, args []string) error {
	if len(kpRange) != 2 || len(kdRange) != 2 {
		return fmt.Errorf("ranges take exactly two values: lo,hi")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	kps := optim.Linspace(kpRange[0], kpRange[1], gridPoints)
	kds := optim.Linspace(kdRange[0], kdRange[1], gridPoints)
	logger.Info("tuning gains", zap.Int("trials", len(kps)*len(kds)), zap.String("metric", tuneMetric))

	start := time.Now()
	trials, err := optim.TuneGains(ctx, cfg.SimConfig(), kps, kds, tuneMetric, logger)
	if err != nil {
		return err
	}

	fmt.Println(report.Trials(trials, tuneMetric, topN, time.Since(start)))
	return nil
}

func serveMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	sc := cfg.SimConfig()
	flight, err := sim.NewFlight(sc.Flight)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("serving MCP over stdio", zap.Int64("seed", cfg.Seed), zap.Float64("dt", cfg.Dt))
	return mcp.NewServer(flight, cfg.Dt, logger).Run(ctx)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	fmt.Println(report.Runs(runs))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outPath != "" {
		return storage.ExportJSON(outPath, data)
	}
	return storage.WriteJSON(os.Stdout, data)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteCSV(os.Stdout, times, states)
}
