// Package config provides configuration loading for go-nao commands.
//
// Values are resolved in order: built-in defaults, an optional YAML file,
// then environment variables. The result is validated before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-nao/pkg/catalog"
)

// Config is the complete gateway configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Remote RemoteConfig `yaml:"remote"`
	Kick   KickConfig   `yaml:"kick"`
	Log    LogConfig    `yaml:"log"`
	RunLog RunLogConfig `yaml:"runlog"`

	// Robots replaces the built-in catalog when set.
	Robots []catalog.Robot `yaml:"robots"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// RemoteConfig locates the robot middleware. Every capability shares
// the same endpoint.
type RemoteConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	CallTimeout    time.Duration `yaml:"callTimeout"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
}

// KickConfig tunes the balance choreography.
type KickConfig struct {
	SettleDelay time.Duration `yaml:"settleDelay"`
}

// LogConfig selects log level and optional rotating file output.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
}

// RunLogConfig selects where choreography runs are journaled.
type RunLogConfig struct {
	Backend   string        `yaml:"backend"` // memory or redis
	Limit     int           `yaml:"limit"`
	RedisAddr string        `yaml:"redisAddr"`
	RedisDB   int           `yaml:"redisDb"`
	Prefix    string        `yaml:"prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultGatewayPort,
			ShutdownTimeout: 5 * time.Second,
		},
		Remote: RemoteConfig{
			Host:           DefaultNaoHost,
			Port:           DefaultNaoPort,
			CallTimeout:    30 * time.Second,
			ConnectTimeout: 5 * time.Second,
		},
		Kick: KickConfig{
			SettleDelay: time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
		RunLog: RunLogConfig{
			Backend:   "memory",
			Limit:     100,
			RedisAddr: "localhost:6379",
			Prefix:    "naogw:",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), and environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Remote.Host = NaoHost(c.Remote.Host)
	c.Remote.Port = NaoPort(c.Remote.Port)
	c.Server.Port = GatewayPort(c.Server.Port)

	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FILE", &c.Log.File)
	envString("RUNLOG_BACKEND", &c.RunLog.Backend)
	envString("REDIS_ADDR", &c.RunLog.RedisAddr)
	envDuration("KICK_SETTLE_DELAY", &c.Kick.SettleDelay)
	envDuration("NAO_CALL_TIMEOUT", &c.Remote.CallTimeout)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Remote.Host == "" {
		errs = append(errs, errors.New("remote.host is required"))
	}
	if c.Remote.Port <= 0 || c.Remote.Port > 65535 {
		errs = append(errs, fmt.Errorf("remote.port %d out of range", c.Remote.Port))
	}
	if c.Remote.CallTimeout <= 0 {
		errs = append(errs, errors.New("remote.callTimeout must be positive"))
	}
	if c.Remote.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("remote.connectTimeout must be positive"))
	}
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Kick.SettleDelay < 0 {
		errs = append(errs, errors.New("kick.settleDelay must not be negative"))
	}
	switch c.RunLog.Backend {
	case "memory":
	case "redis":
		if c.RunLog.RedisAddr == "" {
			errs = append(errs, errors.New("runlog.redisAddr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("runlog.backend %q is not memory or redis", c.RunLog.Backend))
	}
	if c.RunLog.Limit <= 0 {
		errs = append(errs, errors.New("runlog.limit must be positive"))
	}

	seen := make(map[int]bool, len(c.Robots))
	for _, r := range c.Robots {
		if seen[r.ID] {
			errs = append(errs, fmt.Errorf("robots: duplicate id %d", r.ID))
		}
		seen[r.ID] = true
	}

	return errors.Join(errs...)
}

// Catalog returns the configured robot catalog, or the built-in one.
func (c *Config) Catalog() *catalog.Catalog {
	if len(c.Robots) == 0 {
		return catalog.Default()
	}
	return catalog.New(c.Robots...)
}

// RemoteAddr returns host:port of the robot middleware.
func (c *Config) RemoteAddr() string {
	return fmt.Sprintf("%s:%d", c.Remote.Host, c.Remote.Port)
}
