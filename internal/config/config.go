package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"invoicer/internal/docai"
	"invoicer/internal/logger"
	"invoicer/internal/storage"
)

type Config struct {
	// Storage Configuration
	StoreDriver string
	StorePath   string
	StoreKey    string
	SQLitePath  string
	GCSBucket   string
	GCSPrefix   string

	// Export Configuration
	DefaultTemplate string
	PrintCommand    string

	// Slack Configuration
	SlackBotToken string
	SlackChannel  string

	// Google Cloud Configuration
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string
	GoogleCredentialsFile      string
	GoogleCredentialsJSON      string

	// Google Sheets Configuration
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		StoreDriver:                strings.ToLower(getEnv("STORE_DRIVER", storage.DriverFile)),
		StorePath:                  getEnv("STORE_PATH", defaultStorePath()),
		StoreKey:                   getEnv("STORE_KEY", "invoices"),
		SQLitePath:                 getEnv("SQLITE_PATH", ""),
		GCSBucket:                  getEnv("GCS_BUCKET", ""),
		GCSPrefix:                  getEnv("GCS_PREFIX", ""),
		DefaultTemplate:            strings.ToLower(getEnv("DEFAULT_TEMPLATE", "modern")),
		PrintCommand:               getEnv("PRINT_COMMAND", "lp"),
		SlackBotToken:              getEnv("SLACK_BOT_TOKEN", ""),
		SlackChannel:               getEnv("SLACK_CHANNEL", ""),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		GoogleCredentialsFile:      getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GoogleCredentialsJSON:      getEnv("GOOGLE_CREDENTIALS", ""),
		GoogleSheetURL:             getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:       getEnv("GOOGLE_SHEET_WORKSHEET", "Invoices"),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stderr"),
	}

	if config.SQLitePath == "" {
		config.SQLitePath = filepath.Join(config.StorePath, "invoices.db")
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validate checks what every command needs. Integration settings (Slack,
// Sheets, Document AI) are checked by the command that uses them.
func (c *Config) validate() error {
	switch c.StoreDriver {
	case storage.DriverFile, storage.DriverMemory:
	case storage.DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case storage.DriverGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for the gcs store")
		}
	default:
		return fmt.Errorf("STORE_DRIVER %q is not one of file, sqlite, gcs, memory", c.StoreDriver)
	}
	if c.StoreKey == "" {
		return fmt.Errorf("STORE_KEY must not be empty")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetStorageConfig returns the settings of the configured storage slot.
func (c *Config) GetStorageConfig() storage.Config {
	return storage.Config{
		Driver:     c.StoreDriver,
		Dir:        c.StorePath,
		SQLitePath: c.SQLitePath,
		GCSBucket:  c.GCSBucket,
		GCSPrefix:  c.GCSPrefix,
	}
}

// GetDocumentAIConfig returns the Document AI processor settings.
func (c *Config) GetDocumentAIConfig() docai.Config {
	return docai.Config{
		ProjectID:        c.GoogleCloudProject,
		Location:         c.GoogleCloudLocation,
		ProcessorID:      c.DocumentAIProcessorID,
		ProcessorVersion: c.DocumentAIProcessorVersion,
		CredentialsFile:  c.GoogleCredentialsFile,
		CredentialsJSON:  c.GoogleCredentialsJSON,
		Timeout:          60 * time.Second,
	}
}

// GoogleCredentials returns the service account key from
// GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS.
func (c *Config) GoogleCredentials() ([]byte, error) {
	if c.GoogleCredentialsFile != "" {
		creds, err := os.ReadFile(c.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		return creds, nil
	}
	if c.GoogleCredentialsJSON != "" {
		return []byte(c.GoogleCredentialsJSON), nil
	}
	return nil, fmt.Errorf("neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set")
}

func defaultStorePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "invoicer")
	}
	return ".invoicer"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
