package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ensureFiles(t *testing.T, rootDir string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(rootDir, f)
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
}

func TestEnsureRoot(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, EnsureRoot(tmpDir))
	require.NoError(t, WriteDefaultConfigFileIfNone(tmpDir))

	data, err := os.ReadFile(filepath.Join(tmpDir, defaultConfigFilePath))
	require.NoError(t, err)

	var parsed map[string]interface{}
	_, err = toml.Decode(string(data), &parsed)
	require.NoError(t, err)
	assert.Contains(t, parsed, "client")
	assert.Contains(t, parsed, "instrumentation")

	ensureFiles(t, tmpDir, "data")
}

func TestWriteDefaultConfigFileIfNoneKeepsExisting(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EnsureRoot(tmpDir))

	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	require.NoError(t, WriteConfigFile(tmpDir, cfg))
	require.NoError(t, WriteDefaultConfigFileIfNone(tmpDir))

	data, err := os.ReadFile(filepath.Join(tmpDir, defaultConfigFilePath))
	require.NoError(t, err)
	assert.Contains(t, string(data), `log-level = "debug"`)
}

// The rendered template must load back through viper into the same values.
func TestTemplateRoundTripThroughViper(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EnsureRoot(tmpDir))

	cfg := DefaultConfig()
	cfg.DBBackend = "memdb"
	cfg.LogFormat = "json"
	cfg.Client.TrustLevel = "2/3"
	cfg.Client.TrustingPeriod = 48 * time.Hour
	cfg.Client.UnbondingPeriod = 72 * time.Hour
	cfg.Client.MaxClockDrift = 3 * time.Second
	cfg.Instrumentation.Prometheus = true
	require.NoError(t, WriteConfigFile(tmpDir, cfg))

	v := viper.New()
	v.SetConfigFile(filepath.Join(tmpDir, defaultConfigFilePath))
	require.NoError(t, v.ReadInConfig())

	loaded := DefaultConfig()
	require.NoError(t, v.Unmarshal(loaded))
	loaded.SetRoot(tmpDir)

	require.NoError(t, loaded.ValidateBasic())
	assert.Equal(t, "memdb", loaded.DBBackend)
	assert.Equal(t, "json", loaded.LogFormat)
	assert.Equal(t, "2/3", loaded.Client.TrustLevel)
	assert.Equal(t, 48*time.Hour, loaded.Client.TrustingPeriod)
	assert.Equal(t, 72*time.Hour, loaded.Client.UnbondingPeriod)
	assert.Equal(t, 3*time.Second, loaded.Client.MaxClockDrift)
	assert.True(t, loaded.Instrumentation.Prometheus)
}

func TestDefaultDBProvider(t *testing.T) {
	cfg := TestConfig()
	cfg.SetRoot(t.TempDir())

	db, err := DefaultDBProvider(&DBContext{ID: "lightd", Config: cfg})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Set([]byte("k"), []byte("v")))
	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}
