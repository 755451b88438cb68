// Package config loads engine configuration from a .env file and/or
// environment variables via viper, the same shape as the teacher's
// config package.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the engine. Values are loaded by
// Viper from a config file and/or environment variables.
type Config struct {
	WorkDir                 string `mapstructure:"WORK_DIR"`
	UserAgent               string `mapstructure:"USERAGENT"`
	BatchSize               int    `mapstructure:"BATCH_SIZE"`
	FetchTimeoutSeconds     int    `mapstructure:"FETCH_TIMEOUT_SECONDS"`
	DefaultMinecraftVersion string `mapstructure:"DEFAULT_MINECRAFT_VERSION"`
	DefaultLoader           string `mapstructure:"DEFAULT_LOADER"`
	KeepEmitHistory         bool   `mapstructure:"KEEP_EMIT_HISTORY"`
	DatabasePath            string `mapstructure:"-"` // not from env, derived
}

// LoadConfig reads configuration from file and environment variables,
// applies defaults, and ensures the working directory tree exists.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	viper.AutomaticEnv()

	for _, key := range []string{
		"work_dir", "useragent", "batch_size", "fetch_timeout_seconds",
		"default_minecraft_version", "default_loader", "keep_emit_history",
	} {
		if bindErr := viper.BindEnv(key); bindErr != nil {
			slog.Warn("unable to bind env var", "key", key, "error", bindErr)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", err)
	}

	processConfigDefaults(&config)

	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}

	config.DatabasePath = filepath.Join(config.WorkDir, "emit-history.db")
	return config, nil
}

// processConfigDefaults fills in DefaultLoader, DefaultMinecraftVersion,
// BatchSize, FetchTimeoutSeconds and UserAgent when viper left them at their
// zero value, and KeepEmitHistory when it is unset. WorkDir has no default.
func processConfigDefaults(config *Config) {
	if config.DefaultLoader == "" {
		config.DefaultLoader = "fabric"
	}
	if config.DefaultMinecraftVersion == "" {
		config.DefaultMinecraftVersion = "1.20.1"
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 5
	}
	if config.FetchTimeoutSeconds <= 0 {
		config.FetchTimeoutSeconds = 30
	}
	if config.UserAgent == "" {
		config.UserAgent = "modpack-merger/dev (unknown-user)"
		slog.Warn("USERAGENT not set in config or environment, using default.")
	}

	keepStr := viper.GetString("KEEP_EMIT_HISTORY")
	if keepStr == "" {
		config.KeepEmitHistory = true
	} else if keep, err := strconv.ParseBool(keepStr); err == nil {
		config.KeepEmitHistory = keep
	} else {
		slog.Warn("invalid value for KEEP_EMIT_HISTORY, defaulting to true", "error", err)
		config.KeepEmitHistory = true
	}
}

// validateAndEnsureDirectories requires a configured WorkDir and creates
// it, plus its packs/ and output/ subdirectories, if they do not already
// exist.
func validateAndEnsureDirectories(config *Config) error {
	if config.WorkDir == "" {
		slog.Error("WORK_DIR is not set")
		return fmt.Errorf("WORK_DIR is required")
	}

	for _, dir := range []string{
		config.WorkDir,
		filepath.Join(config.WorkDir, "packs"),
		filepath.Join(config.WorkDir, "output"),
	} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			slog.Info("creating directory", "path", dir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				slog.Error("failed to create directory", "path", dir, "error", err)
				return err
			}
		} else if err != nil {
			slog.Error("failed to check directory", "path", dir, "error", err)
			return err
		}
	}
	return nil
}
