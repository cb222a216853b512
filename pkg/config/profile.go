package config

import "time"

// ProfileConfig configures the downstream user-profile and mileage services.
type ProfileConfig struct {
	UserServiceURL    string
	MileageServiceURL string
	RequestTimeout    time.Duration
}

func loadProfileConfig() ProfileConfig {
	return ProfileConfig{
		UserServiceURL:    getEnv("USER_SERVICE_URL", "http://user-server:8080"),
		MileageServiceURL: getEnv("MILEAGE_SERVICE_URL", "http://mileage-server:8080"),
		RequestTimeout:    getEnvDuration("PROFILE_REQUEST_TIMEOUT", 5*time.Second),
	}
}
