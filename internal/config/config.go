package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lepinkainen/feedtrack/internal/history"
	"github.com/lepinkainen/feedtrack/internal/store"
	"github.com/lepinkainen/feedtrack/pkg/filesystem"
)

// DefaultFile is the configuration file looked up when no path is given
const DefaultFile = "config.yaml"

// Config holds the central application configuration
type Config struct {
	DataFile     string        `mapstructure:"data_file"`     // JSON file holding the tracked feeds
	HistoryDB    string        `mapstructure:"history_db"`    // SQLite journal, empty disables history
	UserAgent    string        `mapstructure:"user_agent"`    // User-Agent sent when fetching feeds
	Timeout      time.Duration `mapstructure:"timeout"`       // Per-request timeout, 0 means none
	HistoryLimit int           `mapstructure:"history_limit"` // Default number of history lines
}

// LoadConfig loads the configuration from a YAML file. Environment variables
// prefixed with FEEDTRACK_ override file values. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	path = filesystem.ResolvePath(path)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("data_file", store.DefaultFile)
	v.SetDefault("history_db", history.DefaultDBFile)
	v.SetDefault("user_agent", "feedtrack/1.0")
	v.SetDefault("timeout", "0s")
	v.SetDefault("history_limit", 20)

	v.SetEnvPrefix("FEEDTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
