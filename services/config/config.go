package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/rhythmerc/steamshelf/services/library/apppaths"
)

// Manager handles loading and saving application configuration
type Manager struct {
	path string
	data *Config
	mu   sync.RWMutex
}

// Config represents the application configuration
type Config struct {
	// Steam contains the Web API credentials and install location
	Steam SteamConfig `toml:"steam"`

	// Paths contains optional overrides for the storage locations
	Paths PathsConfig `toml:"paths"`
}

// SteamConfig contains Steam-specific settings
type SteamConfig struct {
	// APIKey is the Steam Web API key used for the owned-games listing
	APIKey string `toml:"api_key"`

	// SteamID is the 64-bit account identifier the library belongs to
	SteamID string `toml:"steam_id"`

	// InstallPath overrides Steam install auto-detection
	InstallPath string `toml:"install_path"`
}

// PathsConfig contains storage location overrides
type PathsConfig struct {
	// ArtCache is the directory holding cached cover images
	ArtCache string `toml:"art_cache"`

	// MetadataFile is the JSON file holding the persisted library
	MetadataFile string `toml:"metadata_file"`
}

var defaultConfig = Config{}

// NewManager creates a new configuration manager
func NewManager(configPath string) (*Manager, error) {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := defaultConfig
	manager := &Manager{
		path: configPath,
		data: &cfg,
	}

	// Try to load existing config
	if err := manager.Load(); err != nil {
		// If file doesn't exist, save defaults
		if os.IsNotExist(err) {
			if err := manager.Save(); err != nil {
				return nil, fmt.Errorf("failed to save default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	return manager, nil
}

// Load reads configuration from disk
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := toml.DecodeFile(m.path, m.data); err != nil {
		return err
	}

	return nil
}

// Save writes configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, err := os.Create(m.path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(m.data); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.data
}

// SetSteam updates the Steam settings
func (m *Manager) SetSteam(steam SteamConfig) error {
	m.mu.Lock()
	m.data.Steam = steam
	m.mu.Unlock()

	return m.Save()
}

// ArtCacheDir returns the configured art cache directory or the default
func (m *Manager) ArtCacheDir() string {
	cfg := m.Get()
	if cfg.Paths.ArtCache != "" {
		return cfg.Paths.ArtCache
	}
	return apppaths.ArtCache
}

// MetadataPath returns the configured metadata file path or the default
func (m *Manager) MetadataPath() string {
	cfg := m.Get()
	if cfg.Paths.MetadataFile != "" {
		return cfg.Paths.MetadataFile
	}
	return apppaths.MetadataFile
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	return apppaths.ConfigFile
}
