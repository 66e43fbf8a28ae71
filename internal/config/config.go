// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml), with ${VAR} expansion
//  2. Environment variables (fallback)
//
// A .env file, when present, is loaded into the environment first.
//
// Example usage:
//
//	cfg := config.LoadOrEnv("config.yaml")
//	budgets := cfg.BudgetTable()
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"expense-tracker/internal/categorizer"
	"expense-tracker/internal/models"
)

// Config represents the entire application configuration
type Config struct {
	Paths         PathsConfig         `yaml:"paths"`
	Budgets       map[string]float64  `yaml:"budgets"`
	Categories    CategoriesConfig    `yaml:"categories"`
	Analysis      AnalysisConfig      `yaml:"analysis"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PathsConfig holds input and output file locations
type PathsConfig struct {
	Transactions string `yaml:"transactions"`
	Budgets      string `yaml:"budgets"`
	Averages     string `yaml:"averages"`
	AlertLog     string `yaml:"alert_log"`
	AuditLog     string `yaml:"audit_log"`
	Database     string `yaml:"database"`
}

// CategoriesConfig holds keyword categorization rules.
// Keywords from the file extend and override the built-in table.
type CategoriesConfig struct {
	Keywords map[string]string `yaml:"keywords"`
}

// AnalysisConfig holds analysis tuning
type AnalysisConfig struct {
	AnomalyThreshold float64 `yaml:"anomaly_threshold"`
	HistoryLookback  int     `yaml:"history_lookback"` // audit runs averaged into baselines
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int `yaml:"port"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultBudgets is the budget table used when no budget file can be read
func DefaultBudgets() map[string]float64 {
	return map[string]float64{
		models.CatFuel:        1000,
		models.CatMaintenance: 500,
		models.CatFood:        300,
		models.CatInsurance:   400,
		models.CatOther:       200,
	}
}

// Default returns a configuration with every field set to its default
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Transactions: "data/transactions.csv",
			Budgets:      "config/budgets.csv",
			AlertLog:     "output/audit_logs/budget_alerts.csv",
			AuditLog:     "output/audit_logs/audit.log",
			Database:     "output/audit.db",
		},
		Categories: CategoriesConfig{
			Keywords: categorizer.DefaultKeywords(),
		},
		Analysis: AnalysisConfig{
			AnomalyThreshold: 0.30,
			HistoryLookback:  6,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "text",
			},
		},
	}
}

// Load reads and parses the config file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${EXPENSE_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := Default()

	cfg.Paths.Transactions = getEnv("EXPENSE_TRANSACTIONS", cfg.Paths.Transactions)
	cfg.Paths.Budgets = getEnv("EXPENSE_BUDGETS", cfg.Paths.Budgets)
	cfg.Paths.Averages = getEnv("EXPENSE_AVERAGES", cfg.Paths.Averages)
	cfg.Paths.AlertLog = getEnv("EXPENSE_ALERT_LOG", cfg.Paths.AlertLog)
	cfg.Paths.AuditLog = getEnv("EXPENSE_AUDIT_LOG", cfg.Paths.AuditLog)
	cfg.Paths.Database = getEnv("EXPENSE_DB_PATH", cfg.Paths.Database)

	cfg.Analysis.AnomalyThreshold = getEnvFloat("ANOMALY_THRESHOLD", cfg.Analysis.AnomalyThreshold)
	cfg.Analysis.HistoryLookback = getEnvInt("HISTORY_LOOKBACK", cfg.Analysis.HistoryLookback)

	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)

	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", cfg.Observability.Logging.Format)

	return cfg
}

// LoadOrEnv tries to load from the specified path, falls back to environment variables
func LoadOrEnv(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// LoadDotEnv loads .env files into the process environment.
// Files that do not exist are skipped; existing variables are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error loading %s: %w", path, err)
		}
	}
	return nil
}

// BudgetTable returns the configured default budget table as decimals.
// Without a budgets section the built-in defaults are used.
func (c *Config) BudgetTable() models.Budgets {
	source := c.Budgets
	if len(source) == 0 {
		source = DefaultBudgets()
	}

	budgets := make(models.Budgets, len(source))
	for category, amount := range source {
		budgets[category] = decimal.NewFromFloat(amount)
	}
	return budgets
}

// AnomalyThreshold returns the configured threshold as a decimal
func (c *Config) AnomalyThreshold() decimal.Decimal {
	return decimal.NewFromFloat(c.Analysis.AnomalyThreshold)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Paths.Transactions) == "" {
		errs = append(errs, "transactions path cannot be empty")
	}

	for category, amount := range c.Budgets {
		if strings.TrimSpace(category) == "" {
			errs = append(errs, "budget category name cannot be empty")
		}
		if amount < 0 {
			errs = append(errs, fmt.Sprintf("invalid budget %.2f for %s: must not be negative", amount, category))
		}
	}

	if c.Analysis.AnomalyThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("invalid anomaly threshold %v: must be greater than 0", c.Analysis.AnomalyThreshold))
	}
	if c.Analysis.HistoryLookback < 0 {
		errs = append(errs, fmt.Sprintf("invalid history lookback %d: must not be negative", c.Analysis.HistoryLookback))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}

	validLevels := []string{"debug", "info", "warn", "warning", "error"}
	if !contains(validLevels, c.Observability.Logging.Level) {
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of %v", c.Observability.Logging.Level, validLevels))
	}
	validFormats := []string{"text", "json"}
	if !contains(validFormats, c.Observability.Logging.Format) {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be one of %v", c.Observability.Logging.Format, validFormats))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable with a fallback default
func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
