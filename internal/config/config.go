package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"statkit/internal/analysis"
	"statkit/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	LogLevel string         `mapstructure:"log_level" yaml:"log_level"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	GoalSeek GoalSeekConfig `mapstructure:"goal_seek" yaml:"goal_seek"`
	Sampling SamplingConfig `mapstructure:"sampling" yaml:"sampling"`
	Batch    BatchConfig    `mapstructure:"batch" yaml:"batch"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
}

// AnalysisConfig holds defaults shared by every analysis tool
type AnalysisConfig struct {
	Alpha       float64 `mapstructure:"alpha" yaml:"alpha"`
	Confidence  float64 `mapstructure:"confidence" yaml:"confidence"`
	Formulas    bool    `mapstructure:"formulas" yaml:"formulas"`
	OutputSheet string  `mapstructure:"output_sheet" yaml:"output_sheet"`
}

// GoalSeekConfig holds root-finding defaults
type GoalSeekConfig struct {
	Precision float64 `mapstructure:"precision" yaml:"precision"`
	XMin      float64 `mapstructure:"x_min" yaml:"x_min"`
	XMax      float64 `mapstructure:"x_max" yaml:"x_max"`
	Seed      uint64  `mapstructure:"seed" yaml:"seed"`
}

// SamplingConfig seeds random sampling so runs are reproducible
type SamplingConfig struct {
	Seed uint64 `mapstructure:"seed" yaml:"seed"`
}

// BatchConfig bounds concurrent tool jobs
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Analysis: AnalysisConfig{
			Alpha:       0.05,
			Confidence:  0.95,
			OutputSheet: "Analysis",
		},
		GoalSeek: GoalSeekConfig{
			Precision: 1e-10,
			XMin:      -1e10,
			XMax:      1e10,
			Seed:      1,
		},
		Sampling: SamplingConfig{Seed: 1},
		Batch:    BatchConfig{Concurrency: 4},
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// Load reads configuration from defaults, an optional YAML file and STATKIT_*
// environment variables, in increasing order of precedence.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STATKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("analysis.alpha", d.Analysis.Alpha)
	v.SetDefault("analysis.confidence", d.Analysis.Confidence)
	v.SetDefault("analysis.formulas", d.Analysis.Formulas)
	v.SetDefault("analysis.output_sheet", d.Analysis.OutputSheet)
	v.SetDefault("goal_seek.precision", d.GoalSeek.Precision)
	v.SetDefault("goal_seek.x_min", d.GoalSeek.XMin)
	v.SetDefault("goal_seek.x_max", d.GoalSeek.XMax)
	v.SetDefault("goal_seek.seed", d.GoalSeek.Seed)
	v.SetDefault("sampling.seed", d.Sampling.Seed)
	v.SetDefault("batch.concurrency", d.Batch.Concurrency)
	v.SetDefault("server.addr", d.Server.Addr)

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return nil, errors.Wrapf(err, "config file %s", cfgFile)
		}
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	if err := Validate(&c); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &c, nil
}

// Validate checks value ranges that would make the tools misbehave
func Validate(c *Config) error {
	if c.Analysis.Alpha <= 0 || c.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid("analysis.alpha must be in (0,1)")
	}
	if c.Analysis.Confidence <= 0 || c.Analysis.Confidence >= 1 {
		return errors.ConfigInvalid("analysis.confidence must be in (0,1)")
	}
	if c.GoalSeek.Precision <= 0 {
		return errors.ConfigInvalid("goal_seek.precision must be positive")
	}
	if c.GoalSeek.XMin >= c.GoalSeek.XMax {
		return errors.ConfigInvalid("goal_seek.x_min must be below goal_seek.x_max")
	}
	if c.Batch.Concurrency < 1 {
		return errors.ConfigInvalid("batch.concurrency must be at least 1")
	}
	if c.Analysis.OutputSheet == "" {
		return errors.ConfigInvalid("analysis.output_sheet is required")
	}
	return nil
}

// Defaults projects the configuration onto request defaults
func (c *Config) Defaults() analysis.Defaults {
	return analysis.Defaults{
		Alpha:      c.Analysis.Alpha,
		Confidence: c.Analysis.Confidence,
		Formulas:   c.Analysis.Formulas,
		Seed:       c.Sampling.Seed,
	}
}
