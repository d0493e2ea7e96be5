package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/unionlabs/union-sub007/libs/log"
	tmmath "github.com/unionlabs/union-sub007/libs/math"
	"github.com/unionlabs/union-sub007/light"
)

// NOTE: Most of the structs & relevant comments + the
// default configuration options were used to manually
// generate the config.toml. Please reflect any changes
// made here in the defaultConfigTemplate constant in
// config/toml.go
var (
	DefaultLightdDir = ".lightd"
	defaultConfigDir = "config"
	defaultDataDir   = "data"

	defaultConfigFileName = "config.toml"

	defaultConfigFilePath = filepath.Join(defaultConfigDir, defaultConfigFileName)
)

// Config defines the top level configuration for lightd.
type Config struct {
	// Top level options use an anonymous struct
	BaseConfig `mapstructure:",squash"`

	// Defaults of new clients
	Client *ClientConfig `mapstructure:"client"`

	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation"`
}

// DefaultConfig returns a default configuration for lightd.
func DefaultConfig() *Config {
	return &Config{
		BaseConfig:      DefaultBaseConfig(),
		Client:          DefaultClientConfig(),
		Instrumentation: DefaultInstrumentationConfig(),
	}
}

// TestConfig returns a configuration that can be used for testing
func TestConfig() *Config {
	return &Config{
		BaseConfig:      TestBaseConfig(),
		Client:          DefaultClientConfig(),
		Instrumentation: TestInstrumentationConfig(),
	}
}

// SetRoot sets the RootDir for all Config structs
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.Client.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [client] section: %w", err)
	}
	if err := cfg.Instrumentation.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [instrumentation] section: %w", err)
	}
	return nil
}

//-----------------------------------------------------------------------------
// BaseConfig

// BaseConfig defines the base configuration for lightd.
type BaseConfig struct { //nolint: maligned
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home"`

	// Database backend: goleveldb | cleveldb | boltdb | rocksdb | badgerdb | memdb
	DBBackend string `mapstructure:"db-backend"`

	// Database directory
	DBPath string `mapstructure:"db-dir"`

	// Output level for logging
	LogLevel string `mapstructure:"log-level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log-format"`
}

// DefaultBaseConfig returns a default base configuration for lightd.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		DBBackend: "goleveldb",
		DBPath:    defaultDataDir,
		LogLevel:  log.LogLevelInfo,
		LogFormat: log.LogFormatPlain,
	}
}

// TestBaseConfig returns a base configuration for testing lightd.
func TestBaseConfig() BaseConfig {
	cfg := DefaultBaseConfig()
	cfg.DBBackend = "memdb"
	cfg.LogLevel = log.LogLevelDebug
	return cfg
}

// DBDir returns the full path to the database directory
func (cfg BaseConfig) DBDir() string {
	return rootify(cfg.DBPath, cfg.RootDir)
}

// ConfigFile returns the full path to the config.toml file
func (cfg BaseConfig) ConfigFile() string {
	return rootify(defaultConfigFilePath, cfg.RootDir)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg BaseConfig) ValidateBasic() error {
	switch cfg.LogFormat {
	case log.LogFormatPlain, log.LogFormatText, log.LogFormatJSON:
	default:
		return errors.New("unknown log format (must be 'plain', 'text' or 'json')")
	}
	switch cfg.LogLevel {
	case log.LogLevelDebug, log.LogLevelInfo, log.LogLevelWarn, log.LogLevelError:
	default:
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	if cfg.DBBackend == "" {
		return errors.New("db-backend cannot be empty")
	}
	return nil
}

//-----------------------------------------------------------------------------
// ClientConfig

// ClientConfig holds the parameters given to new clients unless overridden
// on the command line.
type ClientConfig struct {
	// Fraction of the trusted validator set that must sign a non-adjacent
	// header, e.g. "1/3"
	TrustLevel string `mapstructure:"trust-level"`

	// How long a consensus state can be trusted after its block time
	TrustingPeriod time.Duration `mapstructure:"trusting-period"`

	// Unbonding period of the tracked chain. Must be above the trusting
	// period.
	UnbondingPeriod time.Duration `mapstructure:"unbonding-period"`

	// How far in the future a header may be dated
	MaxClockDrift time.Duration `mapstructure:"max-clock-drift"`
}

// DefaultClientConfig returns a default configuration for new clients.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		TrustLevel:      light.DefaultTrustLevel.String(),
		TrustingPeriod:  14 * 24 * time.Hour,
		UnbondingPeriod: 21 * 24 * time.Hour,
		MaxClockDrift:   10 * time.Second,
	}
}

// ParseTrustLevel returns the configured trust level.
func (cfg *ClientConfig) ParseTrustLevel() (tmmath.Fraction, error) {
	return tmmath.ParseFraction(cfg.TrustLevel)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *ClientConfig) ValidateBasic() error {
	lvl, err := cfg.ParseTrustLevel()
	if err != nil {
		return fmt.Errorf("trust-level: %w", err)
	}
	if err := light.ValidateTrustLevel(lvl); err != nil {
		return fmt.Errorf("trust-level: %w", err)
	}
	if cfg.TrustingPeriod <= 0 {
		return errors.New("trusting-period must be positive")
	}
	if cfg.UnbondingPeriod <= cfg.TrustingPeriod {
		return errors.New("unbonding-period must be greater than trusting-period")
	}
	if cfg.MaxClockDrift <= 0 {
		return errors.New("max-clock-drift must be positive")
	}
	return nil
}

//-----------------------------------------------------------------------------
// InstrumentationConfig

// InstrumentationConfig defines the configuration for metrics reporting.
type InstrumentationConfig struct {
	// When true, Prometheus metrics are served under /metrics on
	// PrometheusListenAddr.
	// Check out the documentation for the list of available metrics.
	Prometheus bool `mapstructure:"prometheus"`

	// Address to listen for Prometheus collector(s) connections.
	PrometheusListenAddr string `mapstructure:"prometheus-listen-addr"`

	// Instrumentation namespace.
	Namespace string `mapstructure:"namespace"`
}

// DefaultInstrumentationConfig returns a default configuration for metrics
// reporting.
func DefaultInstrumentationConfig() *InstrumentationConfig {
	return &InstrumentationConfig{
		Prometheus:           false,
		PrometheusListenAddr: ":26660",
		Namespace:            "lightd",
	}
}

// TestInstrumentationConfig returns a default configuration for metrics
// reporting.
func TestInstrumentationConfig() *InstrumentationConfig {
	return DefaultInstrumentationConfig()
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *InstrumentationConfig) ValidateBasic() error {
	if cfg.Prometheus && cfg.PrometheusListenAddr == "" {
		return errors.New("prometheus-listen-addr cannot be empty when prometheus is enabled")
	}
	if cfg.Namespace == "" {
		return errors.New("namespace cannot be empty")
	}
	return nil
}

//-----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
