//-------------------------------------------------------------------------
//
// pgEdge Order Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-orderbi.
//
// Settings come from a YAML config file and CLI flags. Credentials
// (database, OpenAI key, login hash) may also come from a dotenv file or
// the process environment, using the POSTGRES_*, OPENAI_API_KEY and
// HASHED_PASSWORD variables. Everything is resolved once into a Config
// value which is passed explicitly to the components that need it.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// ErrMissingCredentials is returned when no usable database URL can be built.
var ErrMissingCredentials = errors.New("missing database credentials")

// Environment variable names read by LoadSecrets.
const (
	EnvPostgresServer   = "POSTGRES_SERVER"
	EnvPostgresUsername = "POSTGRES_USERNAME"
	EnvPostgresPassword = "POSTGRES_PASSWORD"
	EnvPostgresDatabase = "POSTGRES_DATABASE"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvHashedPassword   = "HASHED_PASSWORD"
)

// Config holds all configuration for pgedge-orderbi.
type Config struct {
	// Connection is a complete PostgreSQL connection string. When set it
	// takes precedence over the Postgres component settings.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// EnvFile is the dotenv file consulted for credentials.
	EnvFile string `mapstructure:"env_file"`

	// Postgres holds the connection components used when Connection is empty.
	Postgres PostgresConfig `mapstructure:"postgres"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`

	// Web holds configuration for the serve subcommand.
	Web WebConfig `mapstructure:"web"`
}

// PostgresConfig holds database connection components.
type PostgresConfig struct {
	// Server is a host[:port], or a full postgres:// URL.
	Server   string `mapstructure:"server"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// LoadConfig holds configuration for the ETL pipeline.
type LoadConfig struct {
	// DataFile is the tab-separated order history file.
	DataFile string `mapstructure:"data_file"`

	// BatchSize is the number of statements sent per batch.
	BatchSize int `mapstructure:"batch_size"`

	// StrictLineItems skips records whose multi-value cells have
	// different lengths instead of truncating to the shortest list.
	StrictLineItems bool `mapstructure:"strict_line_items"`
}

// WebConfig holds configuration for the query assistant web UI.
type WebConfig struct {
	// Addr is the listen address.
	Addr string `mapstructure:"addr"`

	// OpenAIAPIKey is the API key for SQL generation.
	OpenAIAPIKey string `mapstructure:"openai_api_key"`

	// OpenAIBaseURL is the base URL of the chat completions API.
	OpenAIBaseURL string `mapstructure:"openai_base_url"`

	// Model is the chat model used to generate SQL.
	Model string `mapstructure:"model"`

	// Temperature is the sampling temperature.
	Temperature float64 `mapstructure:"temperature"`

	// MaxTokens bounds the length of the generated answer.
	MaxTokens int `mapstructure:"max_tokens"`

	// HashedPassword is the bcrypt hash of the login password.
	HashedPassword string `mapstructure:"hashed_password"`

	// HistorySize is how many past queries are shown per session.
	HistorySize int `mapstructure:"history_size"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		EnvFile:  ".env",
		Load: LoadConfig{
			DataFile:  "orders_data.txt",
			BatchSize: 5000,
		},
		Web: WebConfig{
			Addr:          ":8501",
			OpenAIBaseURL: "https://api.openai.com/v1",
			Model:         "gpt-4o-mini",
			Temperature:   0.1,
			MaxTokens:     1000,
			HistorySize:   5,
		},
	}
}

// Load reads configuration from config files and credentials from the
// dotenv file and environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-orderbi.yaml
// 3. ~/.config/pgedge-orderbi/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-orderbi")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-orderbi"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.LoadSecrets(cfg.EnvFile); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadSecrets fills empty credential fields from the dotenv file at
// envFile (optional) and the process environment. Environment variables
// win over the dotenv file; values already set in the config file or by
// flags are left alone.
func (c *Config) LoadSecrets(envFile string) error {
	s := viper.New()

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			s.SetConfigFile(envFile)
			s.SetConfigType("env")
			if err := s.ReadInConfig(); err != nil {
				return fmt.Errorf("error reading env file %s: %w", envFile, err)
			}
		}
	}
	s.AutomaticEnv()

	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = strings.TrimSpace(s.GetString(key))
		}
	}

	fill(&c.Postgres.Server, EnvPostgresServer)
	fill(&c.Postgres.Username, EnvPostgresUsername)
	fill(&c.Postgres.Password, EnvPostgresPassword)
	fill(&c.Postgres.Database, EnvPostgresDatabase)
	fill(&c.Web.OpenAIAPIKey, EnvOpenAIAPIKey)
	fill(&c.Web.HashedPassword, EnvHashedPassword)

	return nil
}

// DatabaseURL resolves the PostgreSQL connection string.
func (c *Config) DatabaseURL() (string, error) {
	if c.Connection != "" {
		return c.Connection, nil
	}

	server := c.Postgres.Server
	if strings.HasPrefix(server, "postgresql://") || strings.HasPrefix(server, "postgres://") {
		return server, nil
	}

	var missing []string
	if server == "" {
		missing = append(missing, EnvPostgresServer)
	}
	if c.Postgres.Username == "" {
		missing = append(missing, EnvPostgresUsername)
	}
	if c.Postgres.Database == "" {
		missing = append(missing, EnvPostgresDatabase)
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s not set", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	u := url.URL{
		Scheme: "postgresql",
		Host:   server,
		Path:   "/" + c.Postgres.Database,
	}
	if c.Postgres.Password != "" {
		u.User = url.UserPassword(c.Postgres.Username, c.Postgres.Password)
	} else {
		u.User = url.User(c.Postgres.Username)
	}
	return u.String(), nil
}

// Validate checks that a database connection can be resolved.
func (c *Config) Validate() error {
	if _, err := c.DatabaseURL(); err != nil {
		return err
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Load.DataFile == "" {
		return fmt.Errorf("data file is required for load")
	}
	if c.Load.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	return nil
}

// ValidateWeb checks configuration required for the serve command.
func (c *Config) ValidateWeb() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Web.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Web.OpenAIAPIKey == "" {
		return fmt.Errorf("%s is not set", EnvOpenAIAPIKey)
	}
	if len(c.Web.HashedPassword) < 10 {
		return fmt.Errorf("%s is not set", EnvHashedPassword)
	}
	if _, err := bcrypt.Cost([]byte(c.Web.HashedPassword)); err != nil {
		return fmt.Errorf("invalid %s format: %w", EnvHashedPassword, err)
	}
	if c.Web.HistorySize < 1 {
		return fmt.Errorf("history_size must be at least 1")
	}
	return nil
}
