// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// insecureDefaultKey is the development encryption key. Production refuses it.
const insecureDefaultKey = "0000000000000000000000000000000000000000000000000000000000000000"

// AuthConfig holds the identity verification settings. Bearer tokens are
// verified against the OIDC issuer when one is configured, otherwise against
// the HS256 shared secret.
type AuthConfig struct {
	IssuerURL string // OIDC issuer URL for discovery-based verification
	Audience  string // required audience claim for OIDC tokens
	JWTSecret string // HS256 shared secret for local/dev JWT auth
}

// Enabled returns true when some bearer token verification is configured.
func (a *AuthConfig) Enabled() bool {
	return a.IssuerURL != "" || a.JWTSecret != ""
}

// AuditConfig bounds the audit delivery pipeline and its replay job.
type AuditConfig struct {
	QueueSize      int           // in-memory delivery queue capacity (default 256)
	Attempts       int           // sink write attempts before spooling (default 3)
	Backoff        time.Duration // pause after the first failed attempt (default 50ms)
	SpoolPath      string        // JSONL fallback spool file (default "rowguard_audit.spool")
	ReplaySchedule string        // cron schedule for spool replay (default "@every 1m")
}

// Config holds the configuration for the HTTP service.
type Config struct {
	DBPath        string // path to the SQLite file (default "rowguard.sqlite")
	ListenAddr    string // HTTP listen address (default ":8080")
	EncryptionKey string // 64-char hex string (32-byte AES key) for the credentials store
	LogLevel      string // log level: debug, info, warn, error (default "info")
	Env           string // environment: "development" (default) or "production"
	PolicyFile    string // optional YAML policy file; built-in rule sets when empty

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Auth holds identity verification configuration.
	Auth AuthConfig

	// Audit holds the delivery pipeline bounds.
	Audit AuditConfig

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:        os.Getenv("DB_PATH"),
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		EncryptionKey: os.Getenv("ENCRYPTION_KEY"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Env:           os.Getenv("ENV"),
		PolicyFile:    os.Getenv("POLICY_FILE"),
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimitBurst = n
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}

	// Auth config
	cfg.Auth = AuthConfig{
		IssuerURL: os.Getenv("AUTH_ISSUER_URL"),
		Audience:  os.Getenv("AUTH_AUDIENCE"),
		JWTSecret: os.Getenv("JWT_SECRET"),
	}
	if cfg.Auth.IssuerURL != "" && cfg.Auth.Audience == "" {
		return nil, fmt.Errorf("AUTH_AUDIENCE is required when AUTH_ISSUER_URL is set")
	}

	// Audit pipeline
	cfg.Audit = AuditConfig{
		SpoolPath:      os.Getenv("AUDIT_SPOOL_PATH"),
		ReplaySchedule: os.Getenv("AUDIT_REPLAY_SCHEDULE"),
	}
	if v := os.Getenv("AUDIT_QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("AUDIT_QUEUE_SIZE: %w", err)
		}
		cfg.Audit.QueueSize = n
	}
	if v := os.Getenv("AUDIT_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("AUDIT_ATTEMPTS: %w", err)
		}
		cfg.Audit.Attempts = n
	}
	if v := os.Getenv("AUDIT_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("AUDIT_BACKOFF: %w", err)
		}
		cfg.Audit.Backoff = d
	}

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = "rowguard.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.Audit.QueueSize == 0 {
		cfg.Audit.QueueSize = 256
	}
	if cfg.Audit.Attempts == 0 {
		cfg.Audit.Attempts = 3
	}
	if cfg.Audit.Backoff == 0 {
		cfg.Audit.Backoff = 50 * time.Millisecond
	}
	if cfg.Audit.SpoolPath == "" {
		cfg.Audit.SpoolPath = "rowguard_audit.spool"
	}
	if cfg.Audit.ReplaySchedule == "" {
		cfg.Audit.ReplaySchedule = "@every 1m"
	}
	if cfg.EncryptionKey == "" {
		cfg.EncryptionKey = insecureDefaultKey
		cfg.Warnings = append(cfg.Warnings, "ENCRYPTION_KEY not set, using insecure default; set ENCRYPTION_KEY in production")
	}
	if !cfg.Auth.Enabled() {
		cfg.Warnings = append(cfg.Warnings, "no bearer verification configured; set JWT_SECRET or AUTH_ISSUER_URL (only API keys and anonymous requests will work)")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if !cfg.Auth.Enabled() {
			return nil, fmt.Errorf("bearer verification must be configured in production (set AUTH_ISSUER_URL or JWT_SECRET)")
		}
		if cfg.EncryptionKey == insecureDefaultKey {
			return nil, fmt.Errorf("ENCRYPTION_KEY must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
