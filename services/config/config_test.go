package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewManager(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test.toml")

	manager, err := NewManager(configPath)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	// Defaults are empty: credentials come from the user
	cfg := manager.Get()
	if cfg.Steam.APIKey != "" || cfg.Steam.SteamID != "" {
		t.Error("Expected empty default credentials")
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
}

func TestLoadAndSave(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test.toml")

	manager, err := NewManager(configPath)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	steam := SteamConfig{
		APIKey:      "ABCDEF0123456789",
		SteamID:     "76561198000000000",
		InstallPath: "/opt/steam",
	}
	if err := manager.SetSteam(steam); err != nil {
		t.Fatalf("Failed to set steam config: %v", err)
	}

	// Create new manager and load saved config
	manager2, err := NewManager(configPath)
	if err != nil {
		t.Fatalf("Failed to create second manager: %v", err)
	}

	cfg := manager2.Get()
	if cfg.Steam != steam {
		t.Errorf("Loaded steam config = %+v, want %+v", cfg.Steam, steam)
	}
}

func TestPathOverrides(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test.toml")

	manager, err := NewManager(configPath)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	// Without overrides the defaults apply
	if manager.ArtCacheDir() == "" {
		t.Error("Default art cache dir is empty")
	}
	if manager.MetadataPath() == "" {
		t.Error("Default metadata path is empty")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if path == "" {
		t.Error("DefaultConfigPath returned empty string")
	}
	if !strings.Contains(path, "steamshelf") {
		t.Errorf("Expected path to contain 'steamshelf', got: %s", path)
	}
}
