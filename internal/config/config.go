package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the Gatehouse service.
type Config struct {
	Environment    string
	HTTPPort       int
	DataStore      string
	DatabaseURL    string
	RedisURL       string
	LogLevel       string
	AllowedOrigins []string

	// BaseURL is the public origin of the deployment, used to build provider
	// redirect URLs. Required whenever an OAuth provider is configured.
	BaseURL string
	// BasePath is the mount point auth routes live under.
	BasePath string

	SessionLifetime      time.Duration
	SessionIdleThreshold time.Duration

	GitHubClientID     string
	GitHubClientSecret string
	GoogleClientID     string
	GoogleClientSecret string
}

// Load reads configuration from environment variables with sensible defaults
// for local development.
func Load() (Config, error) {
	databaseURL, err := getEnvOrFile("DATABASE_URL", "/run/secrets/gatehouse_database_url")
	if err != nil {
		return Config{}, err
	}

	githubSecret, err := getEnvOrFile("AUTH_GITHUB_CLIENT_SECRET", "/run/secrets/gatehouse_github_client_secret")
	if err != nil {
		return Config{}, err
	}

	googleSecret, err := getEnvOrFile("AUTH_GOOGLE_CLIENT_SECRET", "/run/secrets/gatehouse_google_client_secret")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment:        getEnv("APP_ENV", "development"),
		DataStore:          strings.ToLower(getEnv("DATA_STORE", "memory")),
		DatabaseURL:        databaseURL,
		RedisURL:           os.Getenv("REDIS_URL"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins:     parseCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:8080")),
		BaseURL:            strings.TrimSuffix(os.Getenv("BASE_URL"), "/"),
		BasePath:           getEnv("BASE_PATH", "/"),
		GitHubClientID:     os.Getenv("AUTH_GITHUB_CLIENT_ID"),
		GitHubClientSecret: githubSecret,
		GoogleClientID:     os.Getenv("AUTH_GOOGLE_CLIENT_ID"),
		GoogleClientSecret: googleSecret,
	}

	portValue := getEnv("PORT", getEnv("HTTP_PORT", "8080"))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", portValue, err)
	}
	cfg.HTTPPort = port

	cfg.SessionLifetime, err = getDuration("SESSION_LIFETIME", 30*24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionIdleThreshold, err = getDuration("SESSION_IDLE_THRESHOLD", cfg.SessionLifetime/2)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.DataStore {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATA_STORE is postgres but DATABASE_URL is not set")
		}
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("DATA_STORE is redis but REDIS_URL is not set")
		}
	default:
		return fmt.Errorf("unknown DATA_STORE %q", c.DataStore)
	}

	if c.HasGitHubOAuth() || c.HasGoogleOAuth() {
		if c.BaseURL == "" {
			return fmt.Errorf("BASE_URL is required when an OAuth provider is configured")
		}
	} else if !c.IsDevelopment() {
		return fmt.Errorf("at least one OAuth provider is required outside development")
	}

	return nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// HasGitHubOAuth reports whether GitHub credentials are configured.
func (c Config) HasGitHubOAuth() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// HasGoogleOAuth reports whether Google credentials are configured.
func (c Config) HasGoogleOAuth() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
