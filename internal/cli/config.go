package cli

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/ajitpratap0/tabula/pkg/config"
	"github.com/ajitpratap0/tabula/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. TABULA_LOGGING_LEVEL
const EnvPrefix = "TABULA"

// Config keys shared by viper, the YAML file and the flags
const (
	KeyName             = "name"
	KeyLogLevel         = "logging.level"
	KeyLogEncoding      = "logging.encoding"
	KeyLogDevelopment   = "logging.development"
	KeyMetricsEnabled   = "metrics.enabled"
	KeyMetricsNamespace = "metrics.namespace"
	KeyTracingEnabled   = "tracing.enabled"
	KeyTracingSampling  = "tracing.sampling_rate"
	KeyFillMethod       = "alignment.fill_method"
	KeyMaxRows          = "display.max_rows"
	KeyPrecision        = "display.precision"
)

// NewViper returns a viper instance reading TABULA_* environment overrides
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig resolves the engine configuration. Built-in defaults are
// overlaid by the YAML file at path (if any), then by environment variables
// and finally by flags bound on v. The result is validated.
func LoadConfig(v *viper.Viper, path string) (*config.EngineConfig, error) {
	cfg := config.NewEngineConfig("tabula")
	if path != "" {
		if err := config.Load(path, cfg); err != nil {
			return nil, err
		}
	}

	// defaults must be registered for AutomaticEnv to reach Unmarshal
	v.SetDefault(KeyName, cfg.Name)
	v.SetDefault(KeyLogLevel, cfg.Logging.Level)
	v.SetDefault(KeyLogEncoding, cfg.Logging.Encoding)
	v.SetDefault(KeyLogDevelopment, cfg.Logging.Development)
	v.SetDefault(KeyMetricsEnabled, cfg.Metrics.Enabled)
	v.SetDefault(KeyMetricsNamespace, cfg.Metrics.Namespace)
	v.SetDefault(KeyTracingEnabled, cfg.Tracing.Enabled)
	v.SetDefault(KeyTracingSampling, cfg.Tracing.SamplingRate)
	v.SetDefault(KeyFillMethod, cfg.Alignment.FillMethod)
	v.SetDefault(KeyMaxRows, cfg.Display.MaxRows)
	v.SetDefault(KeyPrecision, cfg.Display.Precision)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to resolve configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
