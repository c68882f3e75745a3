package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a config file and/or environment variables.
type Config struct {
	SteamBaseURL           string `mapstructure:"STEAM_BASE_URL"`
	AppID                  int64  `mapstructure:"APP_ID"`
	GameVersion            string `mapstructure:"GAME_VERSION"`      // target game version written into the catalog header
	GameVersionTags        string `mapstructure:"GAME_VERSION_TAGS"` // comma-separated listing tags, e.g. "1.4,1.5"
	MaxListingPages        int    `mapstructure:"MAX_LISTING_PAGES"` // hard cap per listing URL
	DownloadFailureLimit   int    `mapstructure:"DOWNLOAD_FAILURE_LIMIT"`
	AuthorRetirementMonths int    `mapstructure:"AUTHOR_RETIREMENT_MONTHS"`
	UserAgent              string `mapstructure:"USERAGENT"`
	CatalogDir             string `mapstructure:"CATALOG_DIR"`
	DatabasePath           string `mapstructure:"-"` // Not from env, derived
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)   // Path to look for the config file in
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")  // REQUIRED if the config file does not have the extension in the name

	vip_err := viper.ReadInConfig()
	if _, ok := vip_err.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vip_err != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vip_err)
	}

	// Bind environment variables automatically.
	viper.AutomaticEnv()

	for _, key := range []string{
		"STEAM_BASE_URL", "APP_ID", "GAME_VERSION", "GAME_VERSION_TAGS",
		"MAX_LISTING_PAGES", "DOWNLOAD_FAILURE_LIMIT", "AUTHOR_RETIREMENT_MONTHS",
		"USERAGENT", "CATALOG_DIR",
	} {
		if bindErr := viper.BindEnv(strings.ToLower(key), key); bindErr != nil {
			slog.Warn("Unable to bind env var", "key", key, "error", bindErr)
		}
	}

	// Unmarshal the config
	vip_err = viper.Unmarshal(&config)
	if vip_err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", vip_err)
	}

	processConfigDefaults(&config)

	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// processConfigDefaults fills in defaults for everything that can be defaulted.
func processConfigDefaults(cfg *Config) {
	if cfg.SteamBaseURL == "" {
		cfg.SteamBaseURL = "https://steamcommunity.com"
	}
	if cfg.AppID == 0 {
		cfg.AppID = 294100
	}
	if cfg.GameVersionTags == "" {
		cfg.GameVersionTags = cfg.GameVersion
	}
	if cfg.MaxListingPages <= 0 {
		cfg.MaxListingPages = 330
	}
	if cfg.DownloadFailureLimit <= 0 {
		cfg.DownloadFailureLimit = 75
	}
	if cfg.AuthorRetirementMonths <= 0 {
		cfg.AuthorRetirementMonths = 24
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "workshop-catalog-updater/dev (unknown-user)"
		slog.Warn("USERAGENT not set in config or environment, using default.")
	}
}

// validateAndEnsureDirectories checks required settings and creates the
// catalog directory tree when missing.
func validateAndEnsureDirectories(cfg *Config) error {
	if cfg.CatalogDir == "" {
		slog.Error("CATALOG_DIR is not set")
		return fmt.Errorf("CATALOG_DIR is required")
	}

	if _, err := os.Stat(cfg.CatalogDir); os.IsNotExist(err) {
		slog.Info("Catalog directory does not exist, creating it", "path", cfg.CatalogDir)
		if err := os.MkdirAll(cfg.CatalogDir, 0755); err != nil {
			slog.Error("Failed to create catalog directory", "path", cfg.CatalogDir, "error", err)
			return err
		}
	} else if err != nil {
		slog.Error("Failed to check catalog directory", "path", cfg.CatalogDir, "error", err)
		return err
	}

	// Temp download area for the crawler, next to the snapshots
	tempDir := filepath.Join(cfg.CatalogDir, "temp")
	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		slog.Info("Temp directory does not exist, creating it", "path", tempDir)
		if err := os.MkdirAll(tempDir, 0755); err != nil {
			slog.Error("Failed to create temp directory", "path", tempDir, "error", err)
			return err
		}
	} else if err != nil {
		slog.Error("Failed to check temp directory", "path", tempDir, "error", err)
		return err
	}

	// Derive DatabasePath (place it with the snapshots for portability)
	cfg.DatabasePath = filepath.Join(cfg.CatalogDir, "sessions.db")

	return nil
}

// VersionTags returns the configured game-version listing tags.
func (c Config) VersionTags() []string {
	var tags []string
	for _, t := range strings.Split(c.GameVersionTags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// TempDir returns the crawler's temp download directory.
func (c Config) TempDir() string {
	return filepath.Join(c.CatalogDir, "temp")
}
