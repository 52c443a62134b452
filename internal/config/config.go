// Package config loads the todo server configuration from the environment,
// an optional .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nhle/mcp-todo/internal/validator"
)

// WebhookCredentialKey is the keyring entry consulted when no webhook URL
// is configured.
const WebhookCredentialKey = "notification-webhook"

// NotifyConfig controls the deadline notifier.
type NotifyConfig struct {
	// Interval is the time between two deadline checks.
	Interval time.Duration `mapstructure:"interval" validate:"required"`

	// Window is how far ahead a due date counts as approaching. It is also
	// how long a notified item stays snoozed.
	Window time.Duration `mapstructure:"window" validate:"required"`
}

// Config is the top-level application configuration.
type Config struct {
	DatabasePath        string       `mapstructure:"database_path" validate:"required"`
	NotificationWebhook string       `mapstructure:"notification_webhook" validate:"omitempty,url"`
	ServerName          string       `mapstructure:"server_name" validate:"required"`
	ServerVersion       string       `mapstructure:"server_version" validate:"required"`
	Port                string       `mapstructure:"port" validate:"required,numeric"`
	Env                 string       `mapstructure:"env" validate:"oneof=development production"`
	LogLevel            string       `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Notify              NotifyConfig `mapstructure:"notify"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"database_path":        "DATABASE_PATH",
	"notification_webhook": "NOTIFICATION_WEBHOOK",
	"server_name":          "MCP_SERVER_NAME",
	"server_version":       "MCP_SERVER_VERSION",
	"port":                 "PORT",
	"env":                  "ENV",
	"log_level":            "LOG_LEVEL",
	"notify.interval":      "NOTIFY_INTERVAL",
	"notify.window":        "NOTIFY_WINDOW",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_path", "./todo.db")
	v.SetDefault("notification_webhook", "")
	v.SetDefault("server_name", "mcp-todo")
	v.SetDefault("server_version", "1.0.0")
	v.SetDefault("port", "3000")
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("notify.interval", time.Minute)
	v.SetDefault("notify.window", time.Hour)
}

// Load reads configuration. Variables from a .env file in the working
// directory are loaded first without overriding the real environment.
// If path is not empty the YAML file there is read; a missing file is not
// an error. Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			var pathErr *os.PathError
			if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ResolveWebhook fills an empty NotificationWebhook from the credential
// store. A lookup failure leaves the webhook empty, which disables
// notifications.
func (c *Config) ResolveWebhook(lookup func(key string) (string, error)) {
	if c.NotificationWebhook != "" || lookup == nil {
		return
	}
	if url, err := lookup(WebhookCredentialKey); err == nil {
		c.NotificationWebhook = url
	}
}

// Validate checks every field against its constraints. Failures wrap a
// validator.ValidationErrors naming the config keys.
func (c *Config) Validate() error {
	if err := validator.New().Validate(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
