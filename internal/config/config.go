// Package config loads gxcopy settings from the environment, a .env.local
// file and ~/.config/gxcopy/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lherron/gxcopy/internal/domain"
	"github.com/lherron/gxcopy/internal/retry"
)

// UserCredential binds a user email to the credentials file that acts as
// that user.
type UserCredential struct {
	Email string `yaml:"email"`
	File  string `yaml:"file"`
}

// Config represents the application configuration
type Config struct {
	JournalPath      string           `yaml:"journal_path"`
	AdminCredentials string           `yaml:"admin_credentials"`
	UserCredentials  []UserCredential `yaml:"user_credentials"`
	OwningDomain     string           `yaml:"owning_domain"`
	LogLevel         string           `yaml:"log_level"`
	LogFormat        string           `yaml:"log_format"`
	LogFile          string           `yaml:"log_file"`
	RetryAttempts    int              `yaml:"retry_attempts"`
	RetryDelay       time.Duration    `yaml:"retry_delay"`
	Output           string           `yaml:"output"`
	MetricsFile      string           `yaml:"metrics_file"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/gxcopy/config.yaml (YAML)
func Load() (*Config, error) {
	defaults := retry.DefaultConfig()
	cfg := &Config{
		LogLevel:      "error",
		LogFormat:     "console",
		RetryAttempts: defaults.MaxAttempts,
		RetryDelay:    defaults.Wait,
		Output:        "table",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	if err := loadYAMLConfig(cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	if v := getEnvOrFile("GXCOPY_JOURNAL_PATH", "GXCOPY_JOURNAL_PATH_FILE"); v != "" {
		cfg.JournalPath = v
	}
	if v := getEnvOrFile("GXCOPY_ADMIN_CREDENTIALS", "GXCOPY_ADMIN_CREDENTIALS_FILE"); v != "" {
		cfg.AdminCredentials = v
	}
	if v := os.Getenv("GXCOPY_USER_CREDENTIALS"); v != "" {
		creds, err := ParseUserCredentials(v)
		if err != nil {
			return nil, fmt.Errorf("GXCOPY_USER_CREDENTIALS: %w", err)
		}
		cfg.UserCredentials = creds
	}
	if v := os.Getenv("GXCOPY_OWNING_DOMAIN"); v != "" {
		cfg.OwningDomain = v
	}
	if v := os.Getenv("GXCOPY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GXCOPY_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("GXCOPY_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("GXCOPY_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("GXCOPY_RETRY_ATTEMPTS: %w", err)
		}
		cfg.RetryAttempts = n
	}
	if v := os.Getenv("GXCOPY_RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("GXCOPY_RETRY_DELAY: %w", err)
		}
		cfg.RetryDelay = d
	}
	if v := os.Getenv("GXCOPY_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("GXCOPY_METRICS_FILE"); v != "" {
		cfg.MetricsFile = v
	}

	if cfg.JournalPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.JournalPath = filepath.Join(homeDir, ".local", "share", "gxcopy", "journal.db")
	}

	if cfg.RetryAttempts < 1 {
		return nil, fmt.Errorf("retry_attempts must be at least 1, got %d", cfg.RetryAttempts)
	}
	if cfg.RetryDelay < 0 {
		return nil, fmt.Errorf("retry_delay must not be negative, got %s", cfg.RetryDelay)
	}

	return cfg, nil
}

// Retry returns the remote call retry policy
func (c *Config) Retry() retry.Config {
	return retry.Config{MaxAttempts: c.RetryAttempts, Wait: c.RetryDelay}
}

// NormalizedOwningDomain returns the owning domain with a leading "@"
func (c *Config) NormalizedOwningDomain() (string, error) {
	return domain.NormalizeDomain(c.OwningDomain)
}

// ParseUserCredential parses "email=path"
func ParseUserCredential(s string) (UserCredential, error) {
	email, file, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok || strings.TrimSpace(file) == "" {
		return UserCredential{}, fmt.Errorf("invalid user credential %q: want email=path", s)
	}
	email = strings.TrimSpace(email)
	if err := domain.ValidateEmail(email); err != nil {
		return UserCredential{}, err
	}
	return UserCredential{Email: email, File: strings.TrimSpace(file)}, nil
}

// ParseUserCredentials parses a comma-separated list of "email=path"
func ParseUserCredentials(s string) ([]UserCredential, error) {
	var creds []UserCredential
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseUserCredential(part)
		if err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	return creds, nil
}

// loadYAMLConfig loads configuration from ~/.config/gxcopy/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "gxcopy", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		if dir == homeDir {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}
