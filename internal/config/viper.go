// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Server struct {
		Addr     string `mapstructure:"addr" yaml:"addr"`
		ClientID string `mapstructure:"client_id" yaml:"client_id"`
		Secret   string `mapstructure:"secret" yaml:"-"` // Never serialize the auth secret
	} `mapstructure:"server" yaml:"server"`

	Storage struct {
		Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
		AccessKey string `mapstructure:"access_key" yaml:"access_key"`
		SecretKey string `mapstructure:"secret_key" yaml:"-"` // Never serialize the storage key
		Bucket    string `mapstructure:"bucket" yaml:"bucket"`
		UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
		Region    string `mapstructure:"region" yaml:"region"`
	} `mapstructure:"storage" yaml:"storage"`

	Queue struct {
		Addr     string `mapstructure:"addr" yaml:"addr"`
		Password string `mapstructure:"password" yaml:"-"`
		DB       int    `mapstructure:"db" yaml:"db"`
		Key      string `mapstructure:"key" yaml:"key"`
	} `mapstructure:"queue" yaml:"queue"`

	Mail struct {
		Host     string `mapstructure:"host" yaml:"host"`
		Port     int    `mapstructure:"port" yaml:"port"`
		Username string `mapstructure:"username" yaml:"username"`
		Password string `mapstructure:"password" yaml:"-"`
		From     string `mapstructure:"from" yaml:"from"`
		Subject  string `mapstructure:"subject" yaml:"subject"`
	} `mapstructure:"mail" yaml:"mail"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.rt-register")
	v.AddConfigPath(".rt-register")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("RT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
		// Config file not found or invalid is OK, we'll use defaults and env vars
	}

	// 5. Secrets always come from unprefixed environment variables
	secretBindings := map[string]string{
		"server.secret":      "RT_AUTH_SECRET",
		"server.client_id":   "RT_AUTH_CLIENT_ID",
		"storage.secret_key": "STORAGE_SECRET_KEY",
		"queue.password":     "REDIS_PASSWORD",
		"mail.password":      "SMTP_PASSWORD",
	}
	for key, env := range secretBindings {
		if err := v.BindEnv(key, env); err != nil {
			fmt.Printf("Warning: failed to bind %s environment variable: %v\n", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.client_id", "")
	v.SetDefault("server.secret", "")

	// Storage defaults
	v.SetDefault("storage.endpoint", "127.0.0.1:9000")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.bucket", "rt-documents")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.region", "")

	// Queue defaults
	v.SetDefault("queue.addr", "127.0.0.1:6379")
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 0)
	v.SetDefault("queue.key", "rt:receipts")

	// Mail defaults
	v.SetDefault("mail.host", "127.0.0.1")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "no-reply@example.org")
	v.SetDefault("mail.subject", "IO Dono - Ricevuta di pagamento per donazione")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}

	if config.Queue.Key == "" {
		return fmt.Errorf("queue.key must not be empty")
	}

	if config.Mail.Port < 1 || config.Mail.Port > 65535 {
		return fmt.Errorf("mail.port must be a valid TCP port, got: %d", config.Mail.Port)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
