package config

import (
	"os"
	"strconv"
	"strings"

	"creditrisk/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig     `validate:"required"`
	Cleaning CleaningConfig `validate:"required"`
	Split    SplitConfig    `validate:"required"`
	Database DatabaseConfig
	Server   ServerConfig `validate:"required"`
	Paths    PathConfig   `validate:"required"`
}

// DataConfig holds input settings
type DataConfig struct {
	Path        string
	LabelColumn string `validate:"required"`
}

// CleaningConfig holds the imputation and outlier handling defaults
type CleaningConfig struct {
	ImputeStrategy string   `validate:"omitempty,oneof=mean median mode"`
	OutlierMethod  string   `validate:"required,oneof=iqr"`
	ClipColumns    []string `validate:"dive,required"`
}

// SplitConfig holds train/test partitioning settings
type SplitConfig struct {
	TestFraction float64 `validate:"gt=0,lt=1"`
	Seed         int64
}

// DatabaseConfig holds the optional run ledger connection
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port string `validate:"required,numeric"`
}

// PathConfig holds file system paths
type PathConfig struct {
	ArtifactDir string `validate:"required"`
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:     *loadDataConfig(),
		Cleaning: *loadCleaningConfig(),
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Server:   ServerConfig{Port: getEnvOrDefault("API_PORT", "8080")},
		Paths:    PathConfig{ArtifactDir: getEnvOrDefault("ARTIFACT_DIR", "./artifacts")},
	}

	splitConfig, err := loadSplitConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load split configuration")
	}
	config.Split = *splitConfig

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks a configuration against its struct constraints
func Validate(config *Config) error {
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(errors.ConfigInvalid(err.Error()), "configuration validation failed")
	}
	return nil
}

// HasDatabase reports whether a Postgres run ledger is configured
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Path:        getEnvOrDefault("DATA_PATH", ""),
		LabelColumn: getEnvOrDefault("LABEL_COLUMN", "credit_risk"),
	}
}

func loadCleaningConfig() *CleaningConfig {
	return &CleaningConfig{
		ImputeStrategy: getEnvOrDefault("IMPUTE_STRATEGY", "median"),
		OutlierMethod:  getEnvOrDefault("OUTLIER_METHOD", "iqr"),
		ClipColumns:    getEnvListOrDefault("CLIP_COLUMNS", []string{"age", "income", "credit_score"}),
	}
}

func loadSplitConfig() (*SplitConfig, error) {
	fraction, err := getEnvFloat("TEST_FRACTION", 0.2)
	if err != nil {
		return nil, err
	}
	seed, err := getEnvInt64("SPLIT_SEED", 42)
	if err != nil {
		return nil, err
	}
	return &SplitConfig{TestFraction: fraction, Seed: seed}, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be a number: " + value)
	}
	return f, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer: " + value)
	}
	return i, nil
}
