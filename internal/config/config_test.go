package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NAO_HOST", "NAO_PORT", "GATEWAY_PORT", "LOG_LEVEL", "LOG_FILE",
		"RUNLOG_BACKEND", "REDIS_ADDR", "KICK_SETTLE_DELAY", "NAO_CALL_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Remote.Host)
	assert.Equal(t, 53417, cfg.Remote.Port)
	assert.Equal(t, "localhost:53417", cfg.RemoteAddr())
	assert.Equal(t, time.Second, cfg.Kick.SettleDelay)
	assert.Equal(t, "memory", cfg.RunLog.Backend)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
remote:
  host: nao.local
  port: 9559
kick:
  settleDelay: 1500ms
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nao.local", cfg.Remote.Host)
	assert.Equal(t, 9559, cfg.Remote.Port)
	assert.Equal(t, 1500*time.Millisecond, cfg.Kick.SettleDelay)
	assert.Equal(t, "debug", cfg.Log.Level)

	t.Setenv("NAO_HOST", "192.168.1.12")
	t.Setenv("KICK_SETTLE_DELAY", "2s")

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.12", cfg.Remote.Host)
	assert.Equal(t, 9559, cfg.Remote.Port)
	assert.Equal(t, 2*time.Second, cfg.Kick.SettleDelay)
}

func TestLoad_BadPortEnvIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("NAO_PORT", "not-a-port")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultNaoPort, cfg.Remote.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty host", func(c *Config) { c.Remote.Host = "" }, false},
		{"port too large", func(c *Config) { c.Remote.Port = 70000 }, false},
		{"negative settle", func(c *Config) { c.Kick.SettleDelay = -time.Second }, false},
		{"unknown backend", func(c *Config) { c.RunLog.Backend = "etcd" }, false},
		{"redis without addr", func(c *Config) {
			c.RunLog.Backend = "redis"
			c.RunLog.RedisAddr = ""
		}, false},
		{"redis with addr", func(c *Config) { c.RunLog.Backend = "redis" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoad_RobotsOverrideCatalog(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Catalog().Len())

	path := writeFile(t, `
robots:
  - id: 5
    title: Pepper
    description: Tall one
`)
	cfg, err = Load(path)
	require.NoError(t, err)
	robot, err := cfg.Catalog().Get(5)
	require.NoError(t, err)
	assert.Equal(t, "Pepper", robot.Title)
	assert.Equal(t, 1, cfg.Catalog().Len())

	dup := writeFile(t, `
robots:
  - id: 1
    title: a
  - id: 1
    title: b
`)
	_, err = Load(dup)
	assert.ErrorContains(t, err, "duplicate id 1")
}
