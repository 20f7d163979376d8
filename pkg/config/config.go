// Package config manages pipeline configuration using Viper. Values come,
// in increasing priority, from defaults, an optional config file,
// NHC_-prefixed environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config wraps a Viper instance with typed getters
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Algorithm parameters
	v.SetDefault("algorithm.edge_weight_cutoff", 0.99)
	v.SetDefault("algorithm.hub_cutoff", 50)
	v.SetDefault("algorithm.merge_cutoff", 0.5)

	v.SetDefault("enrichment.pvalue_cutoff", 1e-5)
	v.SetDefault("enrichment.pvalue_digits", 3)

	// Inputs
	v.SetDefault("input.patient", "")
	v.SetDefault("input.network", "NHC_data_network.txt")
	v.SetDefault("input.connectivity", "NHC_data_connectivity.txt")
	v.SetDefault("input.pathway", "NHC_data_pathway.txt")

	v.SetDefault("output.dir", "")
	v.SetDefault("output.keep_temp", false)

	// Performance parameters
	v.SetDefault("performance.num_workers", runtime.NumCPU())

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.enable_progress", true)

	v.SetDefault("analysis.track_merges", false)
	v.SetDefault("analysis.output_file", "merges.jsonl")

	v.SetEnvPrefix("NHC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// BindFlag makes a command line flag override the given key
func (c *Config) BindFlag(key string, flag *pflag.Flag) error {
	return c.v.BindPFlag(key, flag)
}

// Getters for algorithm parameters
func (c *Config) EdgeWeightCutoff() float64 { return c.v.GetFloat64("algorithm.edge_weight_cutoff") }
func (c *Config) HubCutoff() int            { return c.v.GetInt("algorithm.hub_cutoff") }
func (c *Config) MergeCutoff() float64      { return c.v.GetFloat64("algorithm.merge_cutoff") }

func (c *Config) PValueCutoff() float64 { return c.v.GetFloat64("enrichment.pvalue_cutoff") }
func (c *Config) PValueDigits() int     { return c.v.GetInt("enrichment.pvalue_digits") }

func (c *Config) PatientFile() string      { return c.v.GetString("input.patient") }
func (c *Config) NetworkFile() string      { return c.v.GetString("input.network") }
func (c *Config) ConnectivityFile() string { return c.v.GetString("input.connectivity") }
func (c *Config) PathwayFile() string      { return c.v.GetString("input.pathway") }

func (c *Config) OutputDir() string { return c.v.GetString("output.dir") }
func (c *Config) KeepTemp() bool    { return c.v.GetBool("output.keep_temp") }

func (c *Config) NumWorkers() int { return c.v.GetInt("performance.num_workers") }

func (c *Config) LogLevel() string     { return c.v.GetString("logging.level") }
func (c *Config) EnableProgress() bool { return c.v.GetBool("logging.enable_progress") }

func (c *Config) TrackMerges() bool          { return c.v.GetBool("analysis.track_merges") }
func (c *Config) TrackingOutputFile() string { return c.v.GetString("analysis.output_file") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var problems []string

	if w := c.EdgeWeightCutoff(); w < 0 || w > 1 {
		problems = append(problems, fmt.Sprintf("edge weight cutoff %v outside [0,1]", w))
	}
	if h := c.HubCutoff(); h < 0 {
		problems = append(problems, fmt.Sprintf("hub cutoff %d is negative", h))
	}
	if m := c.MergeCutoff(); m < 0 || m > 1 {
		problems = append(problems, fmt.Sprintf("merge cutoff %v outside [0,1]", m))
	}
	if p := c.PValueCutoff(); p <= 0 {
		problems = append(problems, fmt.Sprintf("p-value cutoff %v must be positive", p))
	}
	if d := c.PValueDigits(); d < 0 {
		problems = append(problems, fmt.Sprintf("p-value digits %d is negative", d))
	}
	if n := c.NumWorkers(); n < 1 {
		problems = append(problems, fmt.Sprintf("worker count %d must be at least 1", n))
	}
	if c.PatientFile() == "" {
		problems = append(problems, "patient gene list is required")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel()); err != nil {
		problems = append(problems, fmt.Sprintf("unknown log level %q", c.LogLevel()))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(level).With().
		Timestamp().
		Str("service", "nhc").
		Str("run_id", uuid.NewString()).
		Logger()
}
