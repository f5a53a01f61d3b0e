package config

import (
	"os"
	"strconv"
)

// Config holds all environment-driven settings. Load once in main and pass
// down; nothing reads the environment after startup.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret               string
	TokenExpirationMinutes  int
	RefreshExpirationDays   int
	RequireConfirmedAccount bool

	GoogleClientID     string
	GoogleTokenInfoURL string
	FacebookGraphURL   string

	SeedAdminEmail    string
	SeedAdminPassword string
}

// Load reads settings from the environment, applying development defaults.
func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "postgres"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:               os.Getenv("JWT_SECRET"),
		TokenExpirationMinutes:  getEnvInt("TOKEN_EXPIRATION_MINUTES", 60),
		RefreshExpirationDays:   getEnvInt("REFRESH_EXPIRATION_DAYS", 7),
		RequireConfirmedAccount: getEnvBool("REQUIRE_CONFIRMED_ACCOUNT", false),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleTokenInfoURL: getEnv("GOOGLE_TOKENINFO_URL", "https://oauth2.googleapis.com/tokeninfo"),
		FacebookGraphURL:   getEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com"),

		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@local"),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", "ChangeMe123!"),
	}

	if cfg.JWTSecret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		cfg.JWTSecret = "default_super_secret_key" // development fallback, never used in release mode
	}

	return cfg
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort +
		"/" + c.DBName + "?sslmode=" + c.DBSSLMode
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

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
