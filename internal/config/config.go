// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the daemon configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Gateway GatewayConfig
	Server  ServerConfig
	Cache   CacheConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// GatewayConfig holds remote data gateway (BaaS) configuration.
type GatewayConfig struct {
	// URL is the base URL of the hosted backend, e.g. https://xyz.supabase.co
	URL string
	// AnonKey is the public API key sent with every request.
	AnonKey string
	// Timeout is the per-request HTTP timeout (default: 30s).
	Timeout time.Duration
}

// ServerConfig holds local HTTP server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8090)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	// AllowedOrigins for CORS; the mobile-web view layer runs on its own origin.
	AllowedOrigins []string
}

// CacheConfig holds local snapshot cache configuration.
type CacheConfig struct {
	// Path is the SQLite database file for warm-start snapshots.
	// Empty disables persistence (in-memory only run).
	Path string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	gatewayURL := flag.String("gateway-url", "", "Base URL of the hosted backend")
	gatewayKey := flag.String("gateway-key", "", "Public API key for the hosted backend")
	gatewayTimeout := flag.String("gateway-timeout", "", "Gateway request timeout (default: 30s)")
	serverName := flag.String("server-name", "", "Name for the station daemon")
	serverPort := flag.String("port", "", "Server port (default: 8090)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := flag.String("allowed-origins", "", "Comma-separated CORS origins (default: *)")
	cachePath := flag.String("cache-path", "", "SQLite snapshot cache file")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Gateway: GatewayConfig{
			URL:     getConfigValue(*gatewayURL, "GATEWAY_URL", ""),
			AnonKey: getConfigValue(*gatewayKey, "GATEWAY_ANON_KEY", ""),
		},
		Server: ServerConfig{
			Name: getConfigValue(*serverName, "SERVER_NAME", "BookTravel Station"),
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8090"),
		},
		Cache: CacheConfig{
			Path: getConfigValue(*cachePath, "CACHE_PATH", ""),
		},
	}

	origins := getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, o)
		}
	}

	var err error
	if cfg.Gateway.Timeout, err = parseDurationValue(*gatewayTimeout, "GATEWAY_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	// Expand cache path (empty stays empty; persistence is optional).
	if err := cfg.expandCachePath(); err != nil {
		return nil, fmt.Errorf("invalid cache path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Gateway.URL == "" {
		return errors.New("GATEWAY_URL is required")
	}
	u, err := url.Parse(c.Gateway.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid gateway URL: %s", c.Gateway.URL)
	}
	if c.Gateway.AnonKey == "" {
		return errors.New("GATEWAY_ANON_KEY is required")
	}

	return nil
}

// expandCachePath expands ~ and makes the path absolute.
// Empty path means the cache is disabled, leave it alone.
func (c *Config) expandCachePath() error {
	if c.Cache.Path == "" {
		return nil
	}

	path := c.Cache.Path
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	c.Cache.Path = filepath.Clean(path)
	return nil
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	str := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), str, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
