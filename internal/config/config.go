// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultBackendURL       = "http://127.0.0.1:8000"
	DefaultAzureFunctionURL = "https://your-function-app.azurewebsites.net"
)

type Config struct {
	ServerPort   string `toml:"server_port"`
	Environment  string `toml:"environment"`
	LogLevel     string `toml:"log_level"`
	JWTSecretKey string `toml:"jwt_secret_key"`

	// BackendURL is the knowledge-base HTTP backend.
	BackendURL string `toml:"backend_url"`

	AzureFunctionURL     string        `toml:"azure_function_url"`
	AzureFunctionKey     string        `toml:"azure_function_key"`
	AzureFunctionTimeout time.Duration `toml:"-"`

	HistoryDBPath  string   `toml:"history_db_path"`
	StaticDir      string   `toml:"static_dir"`
	CORSOrigins    []string `toml:"cors_origins"`
	TrustedProxies []string `toml:"trusted_proxies"`
	UILocale       string   `toml:"ui_locale"`
	UITimezone     string   `toml:"ui_timezone"`
}

func defaults() *Config {
	return &Config{
		ServerPort:           "8080",
		BackendURL:           DefaultBackendURL,
		AzureFunctionURL:     DefaultAzureFunctionURL,
		AzureFunctionTimeout: 30 * time.Second,
		HistoryDBPath:        "kbshell.db",
		StaticDir:            "web/static",
		CORSOrigins:          []string{"*"},
		UILocale:             "en-US",
		UITimezone:           "UTC",
	}
}

// Load reads configuration from an optional TOML file, the .env file and
// environment variables, in that order of increasing precedence.
func Load() (*Config, error) {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := defaults()

	if path := os.Getenv("KB_CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decoding config file %s: %w", path, err)
		}
	}

	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.Environment = getEnv("ENV", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", cfg.JWTSecretKey)
	cfg.BackendURL = getEnv("BACKEND_URL", cfg.BackendURL)
	cfg.AzureFunctionURL = getEnv("AZURE_FUNCTION_URL", cfg.AzureFunctionURL)
	cfg.AzureFunctionKey = getEnv("AZURE_FUNCTION_KEY", cfg.AzureFunctionKey)
	cfg.AzureFunctionTimeout = time.Duration(getEnvAsInt("AZURE_FUNCTION_TIMEOUT_SECONDS", int(cfg.AzureFunctionTimeout.Seconds()))) * time.Second
	cfg.HistoryDBPath = getEnv("HISTORY_DB_PATH", cfg.HistoryDBPath)
	cfg.StaticDir = getEnv("STATIC_DIR", cfg.StaticDir)
	cfg.CORSOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", cfg.CORSOrigins)
	cfg.TrustedProxies = getEnvAsList("TRUSTED_PROXIES", cfg.TrustedProxies)
	cfg.UILocale = getEnv("UI_LOCALE", cfg.UILocale)
	cfg.UITimezone = getEnv("UI_TIMEZONE", cfg.UITimezone)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate only enforces required keys in production.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	missing := []string{}
	if c.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if c.AzureFunctionURL == "" || c.AzureFunctionURL == DefaultAzureFunctionURL {
		missing = append(missing, "AZURE_FUNCTION_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required production environment variables: %v", missing)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// Location resolves UITimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.UITimezone)
	if err != nil {
		log.Printf("Warning: unknown timezone %q, using UTC", c.UITimezone)
		return time.UTC
	}
	return loc
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

// getEnvAsList splits a comma-separated env var, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
