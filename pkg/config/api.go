package config

import (
	"errors"
	"time"
)

// APIConfig holds runtime configuration for the account service.
type APIConfig struct {
	Environment     string
	Addr            string
	DatabaseURL     string
	MigrationsDir   string
	AccessSecret    string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// LoadAPIConfig constructs an APIConfig from environment variables.
// The two signing secrets have no fallback: startup must fail when
// either is unset.
func LoadAPIConfig() (APIConfig, error) {
	cfg := APIConfig{
		Environment:     GetString("APP_ENV", "development"),
		Addr:            GetString("API_ADDR", ":4000"),
		DatabaseURL:     GetString("DATABASE_URL", "postgres://accounts:accounts@db:5432/accounts?sslmode=disable"),
		MigrationsDir:   GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		AccessSecret:    GetString("JWT_ACCESS_SECRET", ""),
		RefreshSecret:   GetString("JWT_REFRESH_SECRET", ""),
		AccessTokenTTL:  time.Duration(GetInt("ACCESS_TOKEN_TTL_MIN", 15)) * time.Minute,
		RefreshTokenTTL: time.Duration(GetInt("REFRESH_TOKEN_TTL_HOURS", 168)) * time.Hour,
	}
	if cfg.AccessSecret == "" {
		return APIConfig{}, errors.New("JWT_ACCESS_SECRET must be set")
	}
	if cfg.RefreshSecret == "" {
		return APIConfig{}, errors.New("JWT_REFRESH_SECRET must be set")
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c APIConfig) IsProduction() bool {
	return c.Environment == "production"
}
