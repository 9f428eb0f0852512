package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_TOML(t *testing.T) {
	cfg, err := Load("testdata/thunder.toml")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Encoding, "unset keys keep defaults")
	assert.Equal(t, 3, cfg.Pool.Size)
	assert.Equal(t, 250*time.Millisecond, cfg.Pool.IdleTimeout)
	assert.Equal(t, "editor", cfg.System.Name)
	assert.Equal(t, 5*time.Millisecond, cfg.System.Tick)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "thunder", cfg.Metrics.Namespace)
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load("testdata/thunder.yaml")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Encoding)
	assert.Equal(t, 2, cfg.Pool.Size)
	assert.Equal(t, 20*time.Millisecond, cfg.System.Tick)
	assert.Equal(t, "main", cfg.System.Name)
	assert.Equal(t, "tools", cfg.Metrics.Namespace)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	tests := map[string]string{
		"missing":       filepath.Join(dir, "nope.toml"),
		"extension":     write("thunder.ini", ""),
		"syntax":        write("bad.toml", "[pool\nsize = 1"),
		"negative pool": write("neg.yaml", "pool:\n  size: -1\n"),
		"zero tick":     write("tick.toml", "[system]\ntick = \"0s\"\n"),
		"encoding":      write("enc.yml", "log:\n  encoding: xml\n"),
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
	assert.Equal(t, "main", cfg.System.Name)
	assert.NotSame(t, cfg, Default())
}
