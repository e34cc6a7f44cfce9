package config

import (
	"os"
	"strings"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	// Record store connection. When either value is missing the site runs on
	// the bundled fallback menu and the owner portal cannot save edits.
	StoreURL     string
	StoreAnonKey string

	// Comma-separated emails permitted to use the owner portal. Empty means
	// every signed-in account is admitted.
	AdminEmails string

	// Secret used to encrypt record-store tokens at rest in the session
	// database. When empty a throwaway key is derived per process start,
	// which invalidates sessions on restart.
	SessionSecret string
}

// FromEnv builds the configuration from environment variables, applying
// defaults for everything except the store connection.
func FromEnv() Config {
	return Config{
		Port:          envOr("GLOW_PORT", "8080"),
		DBPath:        envOr("GLOW_DB_PATH", "gloworganic.db"),
		LogLevel:      envOr("GLOW_LOG_LEVEL", "info"),
		LogFormat:     envOr("GLOW_LOG_FORMAT", "text"),
		StoreURL:      strings.TrimSpace(os.Getenv("SUPABASE_URL")),
		StoreAnonKey:  strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY")),
		AdminEmails:   os.Getenv("ADMIN_EMAILS"),
		SessionSecret: os.Getenv("GLOW_SESSION_SECRET"),
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
