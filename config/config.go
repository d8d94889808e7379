// Package config loads the settings of a conveyor simulation from a YAML
// file, a .env file and CONVEYORSIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/conveyorsim/conveyor"
	"github.com/sarchlab/conveyorsim/sim"
)

// ErrInvalidConfig is returned when a setting is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// EnvPrefix is the prefix of the environment variables that override the
// config file.
const EnvPrefix = "CONVEYORSIM_"

// MonitorConfig holds the settings of the web monitor.
type MonitorConfig struct {
	Enabled     bool `yaml:"enabled"`
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open_browser"`
}

// AnalysisConfig holds the settings of the buffer level analysis.
type AnalysisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Period  uint64 `yaml:"period"`
}

// Config holds every setting of a run. Times are in model time units.
type Config struct {
	Lines                 int                            `yaml:"lines"`
	Segments              int                            `yaml:"segments"`
	EndTime               uint64                         `yaml:"end_time"`
	Seed                  int64                          `yaml:"seed"`
	Precision             uint64                         `yaml:"precision"`
	Parallel              bool                           `yaml:"parallel"`
	MaxGenerationInterval float64                        `yaml:"max_generation_interval"`
	SyncDelay             uint64                         `yaml:"sync_delay"`
	Segment               conveyor.SegmentConfig         `yaml:"segment"`
	LineSegments          map[int]conveyor.SegmentConfig `yaml:"line_segments"`
	Record                string                         `yaml:"record"`
	Monitor               MonitorConfig                  `yaml:"monitor"`
	Analysis              AnalysisConfig                 `yaml:"analysis"`
	LogLevel              string                         `yaml:"log_level"`
}

// Default returns the benchmark setup: fifty lines of ten conveyors behind
// a source, run for one simulated day.
func Default() Config {
	segment := conveyor.DefaultSegmentConfig()
	segment.ExtraDelayChance = 3

	return Config{
		Lines:                 50,
		Segments:              11,
		EndTime:               86400,
		Seed:                  1,
		Precision:             uint64(sim.DefaultPrecision),
		MaxGenerationInterval: 10,
		SyncDelay:             1,
		Segment:               segment,
		LogLevel:              "info",
	}
}

// Load reads a YAML config file on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads the given .env files into the environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}

	return nil
}

// ApplyEnv overrides the settings with CONVEYORSIM_* variables found by
// lookup, usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	setters := []struct {
		key string
		set func(string) error
	}{
		{"LINES", intSetter(&c.Lines)},
		{"SEGMENTS", intSetter(&c.Segments)},
		{"END_TIME", uintSetter(&c.EndTime)},
		{"SEED", func(v string) (err error) {
			c.Seed, err = strconv.ParseInt(v, 10, 64)
			return err
		}},
		{"PRECISION", uintSetter(&c.Precision)},
		{"PARALLEL", boolSetter(&c.Parallel)},
		{"MAX_GENERATION_INTERVAL", floatSetter(&c.MaxGenerationInterval)},
		{"SYNC_DELAY", uintSetter(&c.SyncDelay)},
		{"CAPACITY", intSetter(&c.Segment.Capacity)},
		{"MIN_TRANSIT_TIME", uintSetter(&c.Segment.MinTransitTime)},
		{"DELAY_CHANCE", floatSetter(&c.Segment.ExtraDelayChance)},
		{"DELAY_MIN", uintSetter(&c.Segment.ExtraDelayMin)},
		{"DELAY_MAX", uintSetter(&c.Segment.ExtraDelayMax)},
		{"RECORD", func(v string) error { c.Record = v; return nil }},
		{"MONITOR", boolSetter(&c.Monitor.Enabled)},
		{"MONITOR_PORT", intSetter(&c.Monitor.Port)},
		{"OPEN_BROWSER", boolSetter(&c.Monitor.OpenBrowser)},
		{"ANALYZE", boolSetter(&c.Analysis.Enabled)},
		{"ANALYSIS_PERIOD", uintSetter(&c.Analysis.Period)},
		{"LOG_LEVEL", func(v string) error { c.LogLevel = v; return nil }},
	}

	for _, s := range setters {
		v, ok := lookup(EnvPrefix + s.key)
		if !ok {
			continue
		}

		if err := s.set(strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v",
				ErrInvalidConfig, EnvPrefix, s.key, v, err)
		}
	}

	return nil
}

func intSetter(dst *int) func(string) error {
	return func(v string) (err error) {
		*dst, err = strconv.Atoi(v)
		return err
	}
}

func uintSetter(dst *uint64) func(string) error {
	return func(v string) (err error) {
		*dst, err = strconv.ParseUint(v, 10, 64)
		return err
	}
}

func floatSetter(dst *float64) func(string) error {
	return func(v string) (err error) {
		*dst, err = strconv.ParseFloat(v, 64)
		return err
	}
}

func boolSetter(dst *bool) func(string) error {
	return func(v string) (err error) {
		*dst, err = strconv.ParseBool(v)
		return err
	}
}

// Validate checks that every setting is in range.
func (c *Config) Validate() error {
	if c.Lines < 1 {
		return fmt.Errorf("%w: lines must be at least 1, got %d",
			ErrInvalidConfig, c.Lines)
	}

	if c.Segments < 2 {
		return fmt.Errorf("%w: segments must be at least 2, got %d",
			ErrInvalidConfig, c.Segments)
	}

	if c.Precision == 0 {
		return fmt.Errorf("%w: precision must be positive", ErrInvalidConfig)
	}

	if c.SyncDelay == 0 {
		return fmt.Errorf("%w: sync_delay must be at least 1", ErrInvalidConfig)
	}

	if c.MaxGenerationInterval < 0 {
		return fmt.Errorf("%w: max_generation_interval must not be negative",
			ErrInvalidConfig)
	}

	if err := validateSegment("segment", c.Segment); err != nil {
		return err
	}

	for line, seg := range c.LineSegments {
		if line < 0 || line >= c.Lines {
			return fmt.Errorf("%w: line_segments names line %d of %d",
				ErrInvalidConfig, line, c.Lines)
		}

		if err := validateSegment(fmt.Sprintf("line_segments[%d]", line), seg); err != nil {
			return err
		}
	}

	if c.Monitor.Port < 0 || c.Monitor.Port > 65535 {
		return fmt.Errorf("%w: monitor port %d out of range",
			ErrInvalidConfig, c.Monitor.Port)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

func validateSegment(field string, s conveyor.SegmentConfig) error {
	if s.Capacity < 1 {
		return fmt.Errorf("%w: %s.capacity must be at least 1, got %d",
			ErrInvalidConfig, field, s.Capacity)
	}

	if s.ExtraDelayChance < 0 || s.ExtraDelayChance > 100 {
		return fmt.Errorf("%w: %s.extra_delay_chance must be within [0, 100], got %g",
			ErrInvalidConfig, field, s.ExtraDelayChance)
	}

	if s.ExtraDelayMin > s.ExtraDelayMax {
		return fmt.Errorf("%w: %s.extra_delay_min %d exceeds extra_delay_max %d",
			ErrInvalidConfig, field, s.ExtraDelayMin, s.ExtraDelayMax)
	}

	return nil
}

// ModelBuilder turns the config into a model builder. The config must be
// valid.
func (c *Config) ModelBuilder() conveyor.ModelBuilder {
	b := conveyor.MakeModelBuilder().
		WithLines(c.Lines).
		WithSegments(c.Segments).
		WithSegmentConfig(c.Segment).
		WithMaxGenerationInterval(c.MaxGenerationInterval).
		WithSyncDelay(c.SyncDelay).
		WithPrecision(sim.Precision(c.Precision)).
		WithSeed(c.Seed)

	for line, seg := range c.LineSegments {
		b = b.WithLineSegmentConfig(line, seg)
	}

	if c.Parallel {
		b = b.WithParallel()
	}

	return b
}

// EndTimeTicks returns the end of the run in ticks.
func (c *Config) EndTimeTicks() sim.SimTime {
	return sim.Units(c.EndTime, sim.Precision(c.Precision))
}
