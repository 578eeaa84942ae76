// Package config provides unified configuration loading for foldgen.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wojtekmal/foldgen/internal/constants"
)

// Config contains all foldgen configuration settings.
type Config struct {
	// Logging contains settings for operational and rejection logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Output contains settings for where generated files land.
	Output OutputConfig `json:"output" yaml:"output"`

	// Limits contains retry budgets.
	Limits LimitsConfig `json:"limits" yaml:"limits"`

	// Ranges contains the coordinate and size sampling ranges.
	Ranges RangeConfig `json:"ranges" yaml:"ranges"`

	// Seed fixes the pseudorandom source. Zero means derive a seed from
	// the current time, giving a fresh corpus per run.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Groups are the difficulty groups to generate.
	Groups []GroupConfig `json:"groups" yaml:"groups"`
}

// LoggingConfig configures foldgen's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables rejection logging to <output.dir>/rejections.jsonl.
	Level string `json:"level" yaml:"level"`
}

// OutputConfig configures generated-file placement.
type OutputConfig struct {
	// Dir is the directory that receives one subdirectory per group.
	Dir string `json:"dir" yaml:"dir"`

	// Manifest enables recording every generated case in a SQLite
	// manifest under Dir, which lets interrupted runs resume.
	Manifest bool `json:"manifest" yaml:"manifest"`
}

// LimitsConfig bounds the retry loops.
type LimitsConfig struct {
	// MaxTries is the retry budget per sheet and per query within one
	// test case.
	MaxTries int `json:"max_tries" yaml:"max_tries"`

	// MaxFileRetries is how many times a failed test case is re-rolled
	// for the same output slot before the run aborts.
	MaxFileRetries int `json:"max_file_retries" yaml:"max_file_retries"`
}

// RangeConfig bounds the sampled coordinates and shape sizes.
type RangeConfig struct {
	CoordMin float64 `json:"coord_min" yaml:"coord_min"`
	CoordMax float64 `json:"coord_max" yaml:"coord_max"`
	SizeMin  float64 `json:"size_min" yaml:"size_min"`
	SizeMax  float64 `json:"size_max" yaml:"size_max"`
}

// GroupConfig describes one difficulty group.
type GroupConfig struct {
	// Name is the group's directory name under the output dir.
	Name string `json:"name" yaml:"name"`

	// Count is how many test files the group needs.
	Count int `json:"count" yaml:"count"`

	// Sheets is N, the number of sheet operations per file.
	Sheets int `json:"sheets" yaml:"sheets"`

	// Queries is Q, the number of query lines per file.
	Queries int `json:"queries" yaml:"queries"`
}

// Default returns a Config with sensible defaults: the two standard
// difficulty groups at their reference sizes.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Output:  OutputConfig{Dir: "testdata", Manifest: true},
		Limits: LimitsConfig{
			MaxTries:       constants.DefaultMaxTries,
			MaxFileRetries: constants.DefaultMaxFileRetries,
		},
		Ranges: RangeConfig{
			CoordMin: constants.DefaultCoordMin,
			CoordMax: constants.DefaultCoordMax,
			SizeMin:  constants.DefaultSizeMin,
			SizeMax:  constants.DefaultSizeMax,
		},
		Groups: []GroupConfig{
			{Name: "tiny", Count: 10000, Sheets: 3, Queries: 3},
			{Name: "small", Count: 10000, Sheets: 10, Queries: 100},
		},
	}
}

// Load loads configuration from a YAML file layered over Default, then
// applies environment variable overrides. An empty path returns the
// defaults (plus env overrides).
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output dir must not be empty")
	}
	if c.Limits.MaxTries < 1 {
		return fmt.Errorf("max_tries must be >= 1, got %d", c.Limits.MaxTries)
	}
	if c.Limits.MaxFileRetries < 1 {
		return fmt.Errorf("max_file_retries must be >= 1, got %d", c.Limits.MaxFileRetries)
	}
	if c.Ranges.CoordMax <= c.Ranges.CoordMin {
		return fmt.Errorf("coordinate range [%v, %v] is empty", c.Ranges.CoordMin, c.Ranges.CoordMax)
	}
	if c.Ranges.SizeMin <= 0 {
		return fmt.Errorf("size_min must be positive, got %v", c.Ranges.SizeMin)
	}
	if c.Ranges.SizeMax < c.Ranges.SizeMin {
		return fmt.Errorf("size range [%v, %v] is empty", c.Ranges.SizeMin, c.Ranges.SizeMax)
	}

	if len(c.Groups) == 0 {
		return fmt.Errorf("at least one group is required")
	}
	seen := make(map[string]bool, len(c.Groups))
	for _, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("group name must not be empty")
		}
		if seen[g.Name] {
			return fmt.Errorf("duplicate group name %q", g.Name)
		}
		seen[g.Name] = true
		if g.Count < 1 {
			return fmt.Errorf("group %s: count must be >= 1, got %d", g.Name, g.Count)
		}
		if g.Sheets < 1 {
			return fmt.Errorf("group %s: sheets must be >= 1, got %d", g.Name, g.Sheets)
		}
		if g.Queries < 0 {
			return fmt.Errorf("group %s: queries must be >= 0, got %d", g.Name, g.Queries)
		}
	}

	return nil
}

// Group returns the group named name, if configured.
func (c *Config) Group(name string) (GroupConfig, bool) {
	for _, g := range c.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return GroupConfig{}, false
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("FOLDGEN_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("FOLDGEN_OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}

	if v := os.Getenv("FOLDGEN_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Seed = n
		}
	}
}
