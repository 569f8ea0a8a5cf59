package steam

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	vdf "github.com/andygrunwald/vdf"
)

// InstalledGame describes one locally installed game found in a Steam
// steamapps directory.
type InstalledGame struct {
	AppID       int
	Name        string
	InstallPath string
	SizeOnDisk  int64
}

// ScanInstalled reads every appmanifest_*.acf under the install's steamapps
// directory and returns the installed games keyed by app id. A missing
// steamapps directory yields an empty map; individual manifests that fail to
// parse are skipped.
func ScanInstalled(installPath string) (map[int]InstalledGame, error) {
	steamappsDir := filepath.Join(installPath, "steamapps")

	if _, err := os.Stat(steamappsDir); os.IsNotExist(err) {
		return map[int]InstalledGame{}, nil
	}

	entries, err := os.ReadDir(steamappsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read steamapps directory: %w", err)
	}

	installed := make(map[int]InstalledGame)
	for _, entry := range entries {
		if entry.IsDir() || !isAppManifest(entry.Name()) {
			continue
		}

		game, err := ParseAppManifest(filepath.Join(steamappsDir, entry.Name()))
		if err != nil {
			continue
		}
		installed[game.AppID] = *game
	}

	return installed, nil
}

// isAppManifest checks if a filename is an appmanifest file
func isAppManifest(filename string) bool {
	return filepath.Ext(filename) == ".acf" && len(filename) > 12 && filename[:12] == "appmanifest_"
}

// ParseAppManifest parses a Steam appmanifest_*.acf file
func ParseAppManifest(path string) (*InstalledGame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open appmanifest: %w", err)
	}
	defer f.Close()

	p := vdf.NewParser(f)
	m, err := p.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse VDF: %w", err)
	}

	// VDF files have a root node (usually "AppState")
	var appState map[string]any
	for _, value := range m {
		if v, ok := value.(map[string]any); ok {
			appState = v
			break
		}
	}

	if appState == nil {
		return nil, fmt.Errorf("no AppState found in manifest")
	}

	appID, err := strconv.Atoi(getString(appState, "appid"))
	if err != nil || appID == 0 {
		return nil, fmt.Errorf("no appid found in manifest")
	}

	// The manifest lives at steamapps/appmanifest_*.acf; the game itself
	// lives at steamapps/common/<installdir>.
	installDir := getString(appState, "installdir")
	installPath := filepath.Join(filepath.Dir(path), "common", installDir)

	return &InstalledGame{
		AppID:       appID,
		Name:        getString(appState, "name"),
		InstallPath: installPath,
		SizeOnDisk:  getInt64(appState, "SizeOnDisk"),
	}, nil
}

// DetectSteamPath auto-detects the local Steam installation path.
func DetectSteamPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	var candidates []string
	switch runtime.GOOS {
	case "linux":
		candidates = []string{
			filepath.Join(home, ".local", "share", "Steam"),
			filepath.Join(home, ".steam", "steam"),
			filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"), // Flatpak
		}
	case "darwin":
		candidates = []string{
			filepath.Join(home, "Library", "Application Support", "Steam"),
		}
	case "windows":
		candidates = []string{
			filepath.Join("C:\\", "Program Files (x86)", "Steam"),
		}
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("Steam not found")
}

// getString extracts a string value from a map[string]any, handling nested maps
func getString(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		switch val := v.(type) {
		case string:
			return val
		case map[string]any:
			return fmt.Sprintf("%v", val)
		}
	}
	return ""
}

// getInt64 extracts an int64 value from a map[string]any (VDF stores numbers as strings)
func getInt64(m map[string]any, key string) int64 {
	if v, ok := m[key]; ok {
		switch val := v.(type) {
		case string:
			if i, err := strconv.ParseInt(val, 10, 64); err == nil {
				return i
			}
		case int64:
			return val
		case int:
			return int64(val)
		}
	}
	return 0
}
