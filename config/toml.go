package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/BurntSushi/toml"
	"github.com/creachadair/atomicfile"

	tmos "github.com/unionlabs/union-sub007/libs/os"
)

// defaultDirPerm is the default permissions used when creating directories.
const defaultDirPerm = 0700

var configTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("configFileTemplate")
	if configTemplate, err = tmpl.Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

/****** these are for production settings ***********/

// EnsureRoot creates the root, config, and data directories if they don't exist.
func EnsureRoot(rootDir string) error {
	for _, dir := range []string{
		rootDir,
		filepath.Join(rootDir, defaultConfigDir),
		filepath.Join(rootDir, defaultDataDir),
	} {
		if err := tmos.EnsureDir(dir, defaultDirPerm); err != nil {
			return err
		}
	}
	return nil
}

// WriteConfigFile renders config using the template and writes it to
// configFilePath. This function is called by cmd/lightd/commands/init.go
func WriteConfigFile(rootDir string, config *Config) error {
	return config.WriteToTemplate(filepath.Join(rootDir, defaultConfigFilePath))
}

// WriteDefaultConfigFileIfNone writes the default config.toml under rootDir
// unless one is already there.
func WriteDefaultConfigFileIfNone(rootDir string) error {
	configFilePath := filepath.Join(rootDir, defaultConfigFilePath)
	if !tmos.FileExists(configFilePath) {
		return WriteConfigFile(rootDir, DefaultConfig())
	}
	return nil
}

// WriteToTemplate writes the config to the exact file specified by
// the path, in the default toml template and does not mangle the path
// or filename at all. The rendered file is checked to be valid TOML and
// replaces any previous file atomically.
func (cfg *Config) WriteToTemplate(path string) error {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, cfg); err != nil {
		return err
	}

	var parsed map[string]interface{}
	if _, err := toml.Decode(buffer.String(), &parsed); err != nil {
		return fmt.Errorf("rendered config is not valid toml: %w", err)
	}

	_, err := atomicfile.WriteAll(path, &buffer, 0644)
	return err
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

# NOTE: Any path below can be absolute (e.g. "/var/lightd/data") or
# relative to the home directory (e.g. "data"). The home directory is
# "$HOME/.lightd" by default, but could be changed via $LIGHTD_HOME env variable
# or --home cmd flag.

#######################################################################
###                   Main Base Config Options                      ###
#######################################################################

# Database backend: goleveldb | cleveldb | boltdb | rocksdb | badgerdb | memdb
db-backend = "{{ .BaseConfig.DBBackend }}"

# Database directory
db-dir = "{{ js .BaseConfig.DBPath }}"

# Output level for logging: debug | info | warn | error
log-level = "{{ .BaseConfig.LogLevel }}"

# Output format: 'plain' (colored text) or 'json'
log-format = "{{ .BaseConfig.LogFormat }}"

#######################################################################
###                   Light Client Defaults                         ###
#######################################################################
[client]

# Fraction of the trusted validator set that must have signed a
# non-adjacent header.
trust-level = "{{ .Client.TrustLevel }}"

# How long a consensus state stays trusted after its block time.
trusting-period = "{{ .Client.TrustingPeriod }}"

# Unbonding period of the tracked chain. Must be greater than
# trusting-period.
unbonding-period = "{{ .Client.UnbondingPeriod }}"

# Maximum amount a header timestamp may run ahead of the local clock.
max-clock-drift = "{{ .Client.MaxClockDrift }}"

#######################################################################
###                   Instrumentation Options                       ###
#######################################################################
[instrumentation]

# When true, Prometheus metrics are served under /metrics on
# PrometheusListenAddr.
prometheus = {{ .Instrumentation.Prometheus }}

# Address to listen for Prometheus collector(s) connections
prometheus-listen-addr = "{{ .Instrumentation.PrometheusListenAddr }}"

# Instrumentation namespace
namespace = "{{ .Instrumentation.Namespace }}"
`
