package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full application configuration, loaded once at startup and
// passed by reference into the container. No package reads the environment
// after Load returns.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Notifx   NotifxConfig
	Profile  ProfileConfig
}

// Load reads every section from the environment.
func Load() *Config {
	return &Config{
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
		Redis:    loadRedisConfig(),
		Auth:     loadAuthConfig(),
		Notifx:   loadNotifxConfig(),
		Profile:  loadProfileConfig(),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
