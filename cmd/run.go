package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/conveyorsim/analysis"
	"github.com/sarchlab/conveyorsim/config"
	"github.com/sarchlab/conveyorsim/conveyor"
	"github.com/sarchlab/conveyorsim/simulation"
	"github.com/sarchlab/conveyorsim/tracing"
)

var runFlags struct {
	configFile  string
	envFile     string
	lines       int
	segments    int
	end         uint64
	seed        int64
	delayChance float64
	parallel    bool
	record      string
	monitor     bool
	monitorPort int
	openBrowser bool
	analyze     bool
	period      uint64
	logLevel    string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the conveyor simulation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		return run(cfg, cmd.OutOrStdout())
	},
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&runFlags.configFile, "config", "", "YAML config file")
	f.StringVar(&runFlags.envFile, "env-file", ".env",
		"file with CONVEYORSIM_* variables, skipped if missing")
	f.IntVar(&runFlags.lines, "lines", 0, "number of lines")
	f.IntVar(&runFlags.segments, "segments", 0,
		"segments per line, the source included")
	f.Uint64Var(&runFlags.end, "end", 0, "end time in model time units")
	f.Int64Var(&runFlags.seed, "seed", 0, "master random seed")
	f.Float64Var(&runFlags.delayChance, "delay-chance", 0,
		"percent chance of an extra delay after each transit")
	f.BoolVar(&runFlags.parallel, "parallel", false,
		"run the simulators of a window concurrently")
	f.StringVar(&runFlags.record, "record", "",
		"record batches and line summaries into this SQLite file")
	f.BoolVar(&runFlags.monitor, "monitor", false, "start the web monitor")
	f.IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"port of the web monitor, random if unset")
	f.BoolVar(&runFlags.openBrowser, "open-browser", false,
		"open the web monitor in a browser")
	f.BoolVar(&runFlags.analyze, "analyze", false,
		"report the average level of every buffer")
	f.Uint64Var(&runFlags.period, "analysis-period", 0,
		"record buffer levels per period of this many time units")
	f.StringVar(&runFlags.logLevel, "log-level", "",
		"log level (panic, fatal, error, warn, info, debug, trace)")
}

// loadConfig layers the config file, the environment and the flags that were
// set explicitly, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadDotEnv(runFlags.envFile); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(runFlags.configFile)
	if err != nil {
		return cfg, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	applyFlags(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("lines") {
		cfg.Lines = runFlags.lines
	}

	if flags.Changed("segments") {
		cfg.Segments = runFlags.segments
	}

	if flags.Changed("end") {
		cfg.EndTime = runFlags.end
	}

	if flags.Changed("seed") {
		cfg.Seed = runFlags.seed
	}

	if flags.Changed("delay-chance") {
		cfg.Segment.ExtraDelayChance = runFlags.delayChance
	}

	if flags.Changed("parallel") {
		cfg.Parallel = runFlags.parallel
	}

	if flags.Changed("record") {
		cfg.Record = runFlags.record
	}

	if flags.Changed("monitor") {
		cfg.Monitor.Enabled = runFlags.monitor
	}

	if flags.Changed("monitor-port") {
		cfg.Monitor.Port = runFlags.monitorPort
	}

	if flags.Changed("open-browser") {
		cfg.Monitor.OpenBrowser = runFlags.openBrowser
	}

	if flags.Changed("analyze") {
		cfg.Analysis.Enabled = runFlags.analyze
	}

	if flags.Changed("analysis-period") {
		cfg.Analysis.Period = runFlags.period
	}

	if flags.Changed("log-level") {
		cfg.LogLevel = runFlags.logLevel
	}
}

func setUpLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return nil
}

func run(cfg config.Config, out io.Writer) error {
	if err := setUpLogging(cfg.LogLevel); err != nil {
		return err
	}

	s, err := buildSimulation(cfg)
	if err != nil {
		return err
	}
	defer s.Terminate()

	logrus.WithFields(logrus.Fields{
		"id":       s.ID(),
		"lines":    cfg.Lines,
		"segments": cfg.Segments,
		"end":      cfg.EndTime,
		"seed":     cfg.Seed,
		"parallel": cfg.Parallel,
	}).Info("Simulation started")

	start := time.Now()
	if err := s.Run(cfg.EndTimeTicks()); err != nil {
		return fmt.Errorf("running simulation: %w", err)
	}

	m := s.Model()
	r := m.Results()
	counter := s.GetDeliveryCounter()
	leadTimes := s.GetLeadTimeTracer()

	logrus.WithFields(logrus.Fields{
		"batches":   r.ReceivedBatches,
		"totes":     r.ReceivedTotes,
		"delivered": counter.TotalDeliveries(),
		"windows":   m.Container().NumWindows(),
		"wall_time": time.Since(start).String(),
	}).Info("Simulation finished")

	printResults(out, r, counter)
	fmt.Fprintf(out, "lead time: avg %.3f, min %.3f, max %.3f\n",
		leadTimes.AverageLeadTime(),
		leadTimes.MinLeadTime(),
		leadTimes.MaxLeadTime())

	if analyzer := s.GetAnalyzer(); analyzer != nil {
		printLevels(out, analyzer.Levels(), 5)
	}

	return s.Terminate()
}

func buildSimulation(cfg config.Config) (*simulation.Simulation, error) {
	mb := cfg.ModelBuilder()
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		mb = mb.WithEventLogger(logrus.StandardLogger())
	}

	b := simulation.MakeBuilder().WithModelBuilder(mb)

	if cfg.Record != "" {
		b = b.WithOutputFileName(cfg.Record)
	}

	if cfg.Monitor.Enabled {
		b = b.WithMonitor().WithMonitorPort(cfg.Monitor.Port)
		if cfg.Monitor.OpenBrowser {
			b = b.WithBrowser()
		}
	}

	if cfg.Analysis.Enabled {
		b = b.WithAnalysis(cfg.Analysis.Period)
	}

	return b.Build()
}

func printLevels(out io.Writer, levels []analysis.BufferLevel, top int) {
	if len(levels) > top {
		levels = levels[:top]
	}

	fmt.Fprintln(out, "fullest buffers:")

	for _, l := range levels {
		fmt.Fprintf(out, "  %-24s %8.3f\n", l.Buffer, l.Average)
	}
}

func printResults(
	out io.Writer,
	r conveyor.Results,
	counter *tracing.DeliveryCounter,
) {
	fmt.Fprintf(out, "%-10s %12s %12s %12s %8s\n",
		"line", "generated", "moved", "delivered", "backlog")

	for i, l := range r.Lines {
		logrus.WithFields(logrus.Fields{
			"line":      l.Name,
			"delivered": counter.Deliveries(l.Name),
		}).Debug("Line summary")

		fmt.Fprintf(out, "%-10s %12d %12d %12d %8d\n",
			l.Name, l.Generated, l.Moved, l.Delivered, r.Backlog[i])
	}

	fmt.Fprintf(out, "batches: %d, totes: %d\n",
		r.ReceivedBatches, r.ReceivedTotes)
}
