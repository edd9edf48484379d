package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Postgres PostgresConfig
	Session  SessionConfig
	Digest   DigestConfig
	Notify   NotifyConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for the operational-records store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// PostgresConfig holds settings for the dismissal/session database.
type PostgresConfig struct {
	DSN string
}

// SessionConfig identifies this device's session against the auth layer.
type SessionConfig struct {
	Token string
}

// DigestConfig holds daily-digest scheduler settings.
type DigestConfig struct {
	CronSchedule string
	Timezone     string
	TenantID     string
}

// NotifyConfig configures the outbound digest webhook.
type NotifyConfig struct {
	WebhookURL string
	AuthToken  string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "fermops"),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		Session: SessionConfig{
			Token: os.Getenv("SESSION_TOKEN"),
		},
		Digest: DigestConfig{
			CronSchedule: getenvWithDefault("DIGEST_CRON_SCHEDULE", "0 6 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Europe/Bucharest"),
			TenantID:     os.Getenv("DIGEST_TENANT_ID"),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
			AuthToken:  os.Getenv("NOTIFY_AUTH_TOKEN"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	if c.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN must be provided")
	}

	if c.Session.Token == "" {
		return errors.New("SESSION_TOKEN must be provided")
	}

	if c.Digest.CronSchedule == "" {
		return errors.New("DIGEST_CRON_SCHEDULE must be provided")
	}
	if c.Digest.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	// The digest is optional: without a tenant and webhook the scheduler
	// simply stays idle.
	if c.Digest.TenantID != "" && c.Notify.WebhookURL == "" {
		return errors.New("NOTIFY_WEBHOOK_URL must be provided when DIGEST_TENANT_ID is set")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
