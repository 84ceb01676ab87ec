// Package config loads daemon and CLI settings from an optional records.yaml,
// RECORDS_* environment variables and command-line flags, in rising order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Backend names accepted by the backend setting.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// EnvPrefix prefixes every environment override, e.g. RECORDS_DATA_DIR.
const EnvPrefix = "RECORDS"

// Config is the resolved configuration.
type Config struct {
	DataDir   string `mapstructure:"data_dir"`
	Backend   string `mapstructure:"backend"`
	Persona   string `mapstructure:"persona"`
	Namespace string `mapstructure:"namespace"`
	Seed      bool   `mapstructure:"seed"`
	// VaultKey is a hex AES-256 key. When set, collections are sealed at rest.
	VaultKey  string `mapstructure:"vault_key"`

	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// HTTPConfig configures the daemon listener.
type HTTPConfig struct {
	Port string `mapstructure:"port"`
	// Mode is the gin mode: debug, release or test.
	Mode string `mapstructure:"mode"`
}

// LogConfig configures zap and file rotation.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // json or console
	// File enables rotated file output in addition to stderr.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// New returns a viper instance carrying defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("data_dir", "./data")
	v.SetDefault("backend", BackendJSON)
	v.SetDefault("persona", "local")
	v.SetDefault("namespace", "tracker")
	v.SetDefault("seed", true)
	v.SetDefault("vault_key", "")
	v.SetDefault("http.port", "7002")
	v.SetDefault("http.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file when given, or records.yaml from the working directory or
// the data dir when present, and decodes the result.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("records")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(v.GetString("data_dir"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the openers cannot act on.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown backend %q (want %s or %s)", c.Backend, BackendJSON, BackendSQLite)
	}
	if c.Persona == "" || c.Namespace == "" {
		return errors.New("config: persona and namespace are required")
	}
	if c.DataDir == "" {
		return errors.New("config: data_dir is required")
	}
	return nil
}
