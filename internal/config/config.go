package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	API    APIConfig    `toml:"api"`
	Cache  CacheConfig  `toml:"cache"`
	Prices PricesConfig `toml:"prices"`
	Report ReportConfig `toml:"report"`
	Log    LogConfig    `toml:"log"`
}

// APIConfig describes the remote endpoints
type APIConfig struct {
	BaseURL   string   `toml:"base_url"`
	ImageURL  string   `toml:"image_url"`
	UserAgent string   `toml:"user_agent"`
	Timeout   Duration `toml:"timeout"`
	// ImageRate is the maximum number of image requests per second (0 = unlimited)
	ImageRate float64 `toml:"image_rate"`
}

type CacheConfig struct {
	// Dir overrides the cache directory; empty means the XDG cache location
	Dir string `toml:"dir"`
}

// PricesConfig is the vendor fallback policy used when reading the price snapshot
type PricesConfig struct {
	Medium  string   `toml:"medium"`
	Vendors []string `toml:"vendors"`
	Listing string   `toml:"listing"`
}

type ReportConfig struct {
	RowHeight       float64 `toml:"row_height"`
	ThumbnailHeight uint    `toml:"thumbnail_height"`
	UnknownPrice    string  `toml:"unknown_price"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://mtgjson.com/api/v5",
			ImageURL:  "https://cards.scryfall.io/small/front/{id0}/{id1}/{id}.jpg",
			UserAgent: "setsheet/1.0",
			ImageRate: 10,
		},
		Prices: PricesConfig{
			Medium:  "paper",
			Vendors: []string{"tcgplayer", "cardkingdom"},
			Listing: "retail",
		},
		Report: ReportConfig{
			RowHeight:    200,
			UnknownPrice: "unknown",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetXDGCacheHome returns XDG_CACHE_HOME or default path
func GetXDGCacheHome() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return xdgCache
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".cache")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "setsheet", "config.toml")
}

// GetCacheDir returns the directory holding downloaded resources
func (c *Config) GetCacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return filepath.Join(GetXDGCacheHome(), "setsheet", "downloads")
}

// LoadConfig loads the config file at path, creating it with defaults if it doesn't exist.
// An empty path means the XDG location.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefaultConfig(path)
	}

	// Missing keys keep their defaults
	config := Default()
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	return config, nil
}

// createDefaultConfig writes a default config file
func createDefaultConfig(path string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	config := Default()

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(config); err != nil {
		return nil, fmt.Errorf("error encoding config: %w", err)
	}

	return config, nil
}
