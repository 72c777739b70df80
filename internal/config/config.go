package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. DATAMATIC_SAMPLE_SIZE.
const EnvPrefix = "DATAMATIC"

// Global configuration structure.
type Global struct {
	SampleSize       int     `mapstructure:"sample_size" yaml:"sample_size"`
	MaxSampleValues  int     `mapstructure:"max_sample_values" yaml:"max_sample_values"`
	OutlierThreshold float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
	MaxRows          int     `mapstructure:"max_rows" yaml:"max_rows"`

	// profile-batch worker bound
	BatchWorkers int `mapstructure:"batch_workers" yaml:"batch_workers"`

	SessionsDir  string `mapstructure:"sessions_dir" yaml:"sessions_dir"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"sample_size", "max_sample_values", "outlier_threshold", "max_rows",
	"batch_workers", "sessions_dir", "log_level", "output_format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sample_size", 10)
	v.SetDefault("max_sample_values", 10)
	v.SetDefault("outlier_threshold", 3.5)
	v.SetDefault("max_rows", 0)
	v.SetDefault("batch_workers", 4)
	v.SetDefault("sessions_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("output_format", "markdown")
}

// Defaults returns the configuration used when no file or env override is present.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	if dir, err := HomeDir(); err == nil {
		c.SessionsDir = filepath.Join(dir, "sessions")
	}
	return &c
}

// HomeDir returns ~/.datamatic.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datamatic"), nil
}

// Path returns cfgFile, or ~/.datamatic/config.yaml when empty.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datamatic/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by callers.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := HomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.SessionsDir == "" {
		dir, err := HomeDir()
		if err != nil {
			return nil, err
		}
		c.SessionsDir = filepath.Join(dir, "sessions")
	}
	return &c, nil
}

// Validate rejects values no command can work with.
func (c *Global) Validate() error {
	switch {
	case c.SampleSize < 1:
		return fmt.Errorf("sample_size must be >= 1, got %d", c.SampleSize)
	case c.MaxSampleValues < 0:
		return fmt.Errorf("max_sample_values must be >= 0, got %d", c.MaxSampleValues)
	case c.OutlierThreshold < 0:
		return fmt.Errorf("outlier_threshold must be >= 0, got %g", c.OutlierThreshold)
	case c.MaxRows < 0:
		return fmt.Errorf("max_rows must be >= 0, got %d", c.MaxRows)
	case c.BatchWorkers < 1:
		return fmt.Errorf("batch_workers must be >= 1, got %d", c.BatchWorkers)
	}
	switch strings.ToLower(c.OutputFormat) {
	case "markdown", "json", "yaml":
	default:
		return fmt.Errorf("output_format must be markdown, json or yaml, got %q", c.OutputFormat)
	}
	return nil
}

// Set assigns key from its string form, as typed on the command line.
// c is left unchanged when the result would not validate.
func (c *Global) Set(key, value string) error {
	next := *c
	if err := next.assign(key, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func (c *Global) assign(key, value string) error {
	var err error
	switch key {
	case "sample_size":
		c.SampleSize, err = intValue(key, value)
	case "max_sample_values":
		c.MaxSampleValues, err = intValue(key, value)
	case "outlier_threshold":
		c.OutlierThreshold, err = floatValue(key, value)
	case "max_rows":
		c.MaxRows, err = intValue(key, value)
	case "batch_workers":
		c.BatchWorkers, err = intValue(key, value)
	case "sessions_dir":
		c.SessionsDir = value
	case "log_level":
		c.LogLevel = value
	case "output_format":
		c.OutputFormat = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
	return err
}

func intValue(key, value string) (int, error) {
	n, err := cast.ToIntE(decimal(strings.TrimSpace(value)))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, value)
	}
	return n, nil
}

// decimal strips leading zeros so cast does not read "010" as octal.
func decimal(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	if trimmed := strings.TrimLeft(s, "0"); trimmed != s {
		if trimmed == "" {
			trimmed = "0"
		}
		s = trimmed
	}
	return sign + s
}

func floatValue(key, value string) (float64, error) {
	f, err := cast.ToFloat64E(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, value)
	}
	return f, nil
}
