package config

import (
	"os"
	"strconv"
	"time"
)

// Default remote and gateway settings.
const (
	DefaultNaoHost     = "localhost"
	DefaultNaoPort     = 53417
	DefaultGatewayPort = "5000"
)

// NaoHost returns the robot host from NAO_HOST env var.
// Falls back to the provided default if not set.
func NaoHost(defaultHost string) string {
	if host := os.Getenv("NAO_HOST"); host != "" {
		return host
	}
	return defaultHost
}

// NaoPort returns the proxy port from NAO_PORT env var.
// Falls back to the provided default if unset or not a number.
func NaoPort(defaultPort int) int {
	if v := os.Getenv("NAO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			return port
		}
	}
	return defaultPort
}

// GatewayPort returns the HTTP listen port from GATEWAY_PORT env var.
func GatewayPort(defaultPort string) string {
	if port := os.Getenv("GATEWAY_PORT"); port != "" {
		return port
	}
	return defaultPort
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
