package config

import "time"

// AuthConfig configures token signing and the lifetimes of tokens, sessions
// and verification codes. The signing key is read once here and is read-only
// for the rest of the process lifetime.
type AuthConfig struct {
	JWTSecret       string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SessionTTL      time.Duration
	ChallengeTTL    time.Duration
	BcryptCost      int
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:       getEnv("JWT_SECRET_KEY", ""),
		Issuer:          getEnv("JWT_ISSUER", "dpang-auth-server"),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 3*time.Hour),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 5*24*time.Hour),
		SessionTTL:      getEnvDuration("SESSION_TTL", 5*24*time.Hour),
		ChallengeTTL:    getEnvDuration("CHALLENGE_TTL", 5*time.Minute),
		BcryptCost:      getEnvInt("BCRYPT_COST", 10),
	}
}
