// Package config provides the engine configuration for tabula.
//
// The configuration is organized into logical sections:
//   - Logging: level, encoding and development mode of the global logger
//   - Metrics: Prometheus recording switch
//   - Tracing: OpenTelemetry spans around operations
//   - Alignment: default fill policy for reindexing
//   - Display: text rendering limits
//
// Example usage:
//
//	cfg := config.NewEngineConfig("tabula")
//	cfg.Alignment.FillMethod = "pad"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"github.com/ajitpratap0/tabula/pkg/align"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/logger"
)

// EngineConfig is the single configuration structure for the engine and CLI
type EngineConfig struct {
	// Name identifies the engine instance in logs
	Name string `yaml:"name" json:"name" mapstructure:"name"`

	// Logging configures the global zap logger
	Logging LoggingConfig `yaml:"logging" json:"logging" mapstructure:"logging"`

	// Metrics configures Prometheus recording
	Metrics MetricsConfig `yaml:"metrics" json:"metrics" mapstructure:"metrics"`

	// Tracing configures OpenTelemetry spans
	Tracing TracingConfig `yaml:"tracing" json:"tracing" mapstructure:"tracing"`

	// Alignment holds reindexing defaults
	Alignment AlignmentConfig `yaml:"alignment" json:"alignment" mapstructure:"alignment"`

	// Display controls text rendering of tables
	Display DisplayConfig `yaml:"display" json:"display" mapstructure:"display"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	// Level sets logging verbosity (debug, info, warn, error)
	Level string `yaml:"level" json:"level" mapstructure:"level"`
	// Encoding selects json or console output
	Encoding string `yaml:"encoding" json:"encoding" mapstructure:"encoding"`
	// Development enables stack traces on warnings and a console-friendly setup
	Development bool `yaml:"development" json:"development" mapstructure:"development"`
}

// MetricsConfig contains metrics settings
type MetricsConfig struct {
	// Enabled turns Prometheus recording on
	Enabled bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	// Namespace is reported alongside metrics in logs
	Namespace string `yaml:"namespace" json:"namespace" mapstructure:"namespace"`
}

// TracingConfig contains tracing settings
type TracingConfig struct {
	// Enabled exports one span per operation
	Enabled bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	// SamplingRate is the fraction of traces kept, between 0 and 1
	SamplingRate float64 `yaml:"sampling_rate" json:"sampling_rate" mapstructure:"sampling_rate"`
}

// AlignmentConfig contains reindexing defaults
type AlignmentConfig struct {
	// FillMethod is none, pad or backfill
	FillMethod string `yaml:"fill_method" json:"fill_method" mapstructure:"fill_method"`
}

// DisplayConfig contains rendering settings
type DisplayConfig struct {
	// MaxRows truncates rendered tables (0 = unlimited)
	MaxRows int `yaml:"max_rows" json:"max_rows" mapstructure:"max_rows"`
	// Precision is the number of decimals for float cells
	Precision int `yaml:"precision" json:"precision" mapstructure:"precision"`
}

// NewEngineConfig creates a configuration with sensible defaults
func NewEngineConfig(name string) *EngineConfig {
	return &EngineConfig{
		Name: name,
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "tabula",
		},
		Tracing: TracingConfig{
			SamplingRate: 1,
		},
		Alignment: AlignmentConfig{
			FillMethod: "none",
		},
		Display: DisplayConfig{
			MaxRows:   60,
			Precision: 4,
		},
	}
}

// Validate validates the configuration for correctness
func (c *EngineConfig) Validate() error {
	if c.Name == "" {
		return errors.New(errors.ErrorTypeConfig, "name is required")
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unsupported log encoding %q", c.Logging.Encoding)
	}
	if _, err := c.Alignment.Method(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid alignment.fill_method")
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return errors.New(errors.ErrorTypeConfig, "tracing.sampling_rate must be between 0 and 1")
	}
	if c.Display.MaxRows < 0 {
		return errors.New(errors.ErrorTypeConfig, "display.max_rows cannot be negative")
	}
	if c.Display.Precision < 0 || c.Display.Precision > 17 {
		return errors.New(errors.ErrorTypeConfig, "display.precision must be between 0 and 17")
	}
	return nil
}

// LoggerConfig converts the logging section into a logger.Config
func (l *LoggingConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       l.Level,
		Encoding:    l.Encoding,
		Development: l.Development,
	}
}

// Method parses the configured fill method
func (a *AlignmentConfig) Method() (align.Method, error) {
	return align.ParseMethod(a.FillMethod)
}
