package config

import "time"

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string
	CORSOrigins     string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnv("PORT", "8080"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}
