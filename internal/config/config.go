package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port       string
	CORSOrigin string

	// Auth
	AuthUsername     string
	AuthPassword     string
	AuthPasswordHash string
	TokenSecret      string
	TokenTTL         time.Duration

	// Uploads
	UploadDir string

	// Settings store
	SettingsBackend string
	SettingsPath    string
	SQLiteDBPath    string

	// Sheets client
	SheetsBackend string
	ClientTTL     time.Duration

	// Import job
	CityPause     time.Duration
	RetryAttempts int
	RetryDelay    time.Duration

	// Task store
	TaskRetention   time.Duration
	JanitorInterval time.Duration

	// AMQP (optional; empty URL disables task events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	cfg := &Config{
		Port:       getEnv("PORT", "8000"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),

		AuthUsername:     getEnv("AUTH_USERNAME", "admin"),
		AuthPassword:     getEnv("AUTH_PASSWORD", ""),
		AuthPasswordHash: getEnv("AUTH_PASSWORD_HASH", ""),
		TokenSecret:      getEnv("TOKEN_SECRET", ""),
		TokenTTL:         getEnvDuration("TOKEN_TTL", 30*time.Minute),

		UploadDir: getEnv("UPLOAD_DIR", os.TempDir()),

		SettingsBackend: getEnv("SETTINGS_BACKEND", "json"),
		SettingsPath:    getEnv("SETTINGS_PATH", "./settings.json"),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/xlsimport.db"),

		SheetsBackend: getEnv("SHEETS_BACKEND", "google"),
		ClientTTL:     getEnvDuration("SHEETS_CLIENT_TTL", 30*time.Minute),

		CityPause:     getEnvDuration("CITY_PAUSE", 1*time.Second),
		RetryAttempts: getEnvInt("RETRY_ATTEMPTS", 3),
		RetryDelay:    getEnvDuration("RETRY_DELAY", 2*time.Second),

		TaskRetention:   getEnvDuration("TASK_RETENTION", 24*time.Hour),
		JanitorInterval: getEnvDuration("JANITOR_INTERVAL", 10*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "xlsimport"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "task_events"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate auth: a secret is mandatory, and at least one credential form
	if c.TokenSecret == "" {
		errors = append(errors, "TOKEN_SECRET must be set")
	}
	if c.AuthPassword == "" && c.AuthPasswordHash == "" {
		errors = append(errors, "either AUTH_PASSWORD or AUTH_PASSWORD_HASH must be set")
	}
	if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	// Validate settings backend
	validBackends := []string{"json", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.SettingsBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid settings backend '%s': must be one of %v", c.SettingsBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.SettingsBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}
	if c.SettingsBackend == "json" && c.SettingsPath == "" {
		errors = append(errors, "settings path cannot be empty when using json backend")
	}

	// Validate sheets backend
	if c.SheetsBackend != "google" && c.SheetsBackend != "memory" {
		errors = append(errors, fmt.Sprintf("invalid sheets backend '%s': must be 'google' or 'memory'", c.SheetsBackend))
	}

	// Validate upload directory
	if c.UploadDir == "" {
		errors = append(errors, "upload directory cannot be empty")
	}

	// Validate import job knobs
	if c.RetryAttempts < 1 {
		errors = append(errors, fmt.Sprintf("invalid retry attempts %d: must be at least 1", c.RetryAttempts))
	}
	if c.CityPause < 0 {
		errors = append(errors, fmt.Sprintf("invalid city pause %v: must not be negative", c.CityPause))
	}
	if c.TaskRetention < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid task retention %v: must be at least 1 minute", c.TaskRetention))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
