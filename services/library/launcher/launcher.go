package launcher

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Launcher starts games through the Steam URL protocol and reports whether a
// launched game is still running. Steam manages the actual game process, so
// run-state detection is activity based: any process whose executable lives
// under the install path counts.
type Launcher struct {
	logger *slog.Logger
}

// New creates a launcher
func New(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{logger: logger}
}

// Launch opens the steam://rungameid URL with the platform opener. The
// returned command is the opener, not the game.
func (l *Launcher) Launch(appID int) error {
	url := fmt.Sprintf("steam://rungameid/%d", appID)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default: // linux
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch Steam URL: %w", err)
	}

	l.logger.Info("launched game", "appID", appID)
	return nil
}

// IsRunning reports whether any process executable is within the install path
func (l *Launcher) IsRunning(installPath string) (bool, error) {
	if installPath == "" {
		return false, nil
	}

	processes, err := process.Processes()
	if err != nil {
		return false, err
	}
	for _, p := range processes {
		// Check exe first (native Linux format)
		exe, err := p.Exe()
		if err == nil && strings.HasPrefix(exe, installPath) {
			return true, nil
		}
		// Check cmdline for Wine/Proton paths
		cmdline, err := p.Cmdline()
		if err == nil {
			if strings.Contains(normalizeWinePath(cmdline), installPath) {
				return true, nil
			}
		}
	}
	return false, nil
}

// normalizeWinePath converts Wine/Proton paths to Linux format
// Handles paths like "Z:\home\user\..." -> "/home/user/..."
func normalizeWinePath(path string) string {
	if len(path) > 2 && path[1] == ':' {
		path = path[2:]
	}
	return strings.ReplaceAll(path, `\`, `/`)
}
