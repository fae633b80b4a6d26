package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wellness-api/pkg/config"
)

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	cfg := &config.Config{
		Env: config.EnvDevelopment,
		Log: config.LogConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1},
	}

	l, err := New(cfg)
	require.NoError(t, err)
	l.Info("store_ready")
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "store_ready")
}

func TestNewWithoutFile(t *testing.T) {
	l, err := New(&config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "bogus"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}
