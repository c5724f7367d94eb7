package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0:1111", cfg.Addr())
	assert.Equal(t, 30*time.Second, cfg.IdleTimeout())
	assert.Zero(t, cfg.ReservationTTL())
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
ListenAddr: 127.0.0.1
Port: 4000
MaxConnections: 10
IdleTimeoutSec: 60
ReservationTTLSec: 300
LogLevel: debug
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:4000", cfg.Addr())
		assert.Equal(t, 10, cfg.MaxConnections)
		assert.Equal(t, time.Minute, cfg.IdleTimeout())
		assert.Equal(t, 5*time.Minute, cfg.ReservationTTL())
		assert.Equal(t, "debug", cfg.LogLevel)
		// Untouched key keeps its default.
		assert.Equal(t, 256, cfg.MaxLineBytes)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "Port: [not a number")
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults are valid", func(*Config) {}, true},
		{"port zero", func(c *Config) { c.Port = 0 }, false},
		{"port too large", func(c *Config) { c.Port = 70000 }, false},
		{"negative max connections", func(c *Config) { c.MaxConnections = -1 }, false},
		{"tiny line limit", func(c *Config) { c.MaxLineBytes = 4 }, false},
		{"bogus address", func(c *Config) { c.ListenAddr = "not-an-ip" }, false},
		{"empty address is fine", func(c *Config) { c.ListenAddr = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
