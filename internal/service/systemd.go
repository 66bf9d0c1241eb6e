// Package service installs and removes the systemd units that keep a
// songfone library synchronized in the background: a path unit fired on
// source library changes, a timer as fallback, and the oneshot service
// both of them trigger.
package service

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jakob/songfone/internal/util"
)

const pathUnitTemplate = `[Unit]
Description=songfone library path monitoring trigger

[Path]
%s

[Install]
WantedBy=multi-user.target
`

const timerUnitTemplate = `[Unit]
Description=songfone library timer trigger every 5min

[Timer]
OnUnitActiveSec=5min

[Install]
WantedBy=multi-user.target
`

const serviceUnitTemplate = `[Unit]
Description=songfone library update service

[Service]
Type=oneshot
ExecStart=%s sync
%s
[Install]
WantedBy=multi-user.target
`

// Options selects where the units go and what they watch
type Options struct {
	// System installs templated units under /etc/systemd/system (run as
	// root); otherwise user units go below the home directory
	System bool

	// AudioDirs become PathModified lines of the path unit
	AudioDirs []string

	// ExecPath is the songfone binary the service runs
	ExecPath string
}

// Install writes the service, path and timer units. Linux only; elsewhere
// it returns util.ErrUnsupported.
func Install(opts Options) error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("service install on %s: %w", runtime.GOOS, util.ErrUnsupported)
	}

	unitDir, at, err := unitLocation(opts.System)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(unitDir, 0755); err != nil {
		return fmt.Errorf("cannot create unit directory: %w", err)
	}

	pathLines := make([]string, 0, len(opts.AudioDirs))
	for _, dir := range opts.AudioDirs {
		pathLines = append(pathLines, "PathModified="+dir)
	}

	userLine := ""
	if opts.System {
		userLine = "User=%I\n"
	}

	units := map[string]string{
		"songfone" + at + ".path":    fmt.Sprintf(pathUnitTemplate, strings.Join(pathLines, "\n")),
		"songfone" + at + ".timer":   timerUnitTemplate,
		"songfone" + at + ".service": fmt.Sprintf(serviceUnitTemplate, opts.ExecPath, userLine),
	}

	for name, content := range units {
		path := filepath.Join(unitDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("cannot write %s: %w", path, err)
		}
		util.InfoLog("Wrote %s", path)
	}
	return nil
}

// Uninstall removes the unit files; already-absent files are ignored
func Uninstall(opts Options) error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("service uninstall on %s: %w", runtime.GOOS, util.ErrUnsupported)
	}

	unitDir, at, err := unitLocation(opts.System)
	if err != nil {
		return err
	}

	for _, name := range []string{
		"songfone" + at + ".path",
		"songfone" + at + ".timer",
		"songfone" + at + ".service",
	} {
		path := filepath.Join(unitDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("cannot remove %s: %w", path, err)
		}
	}
	return nil
}

// unitLocation returns the unit directory and the template marker: system
// installs use templated units ("songfone@.service") so the instance names
// the user to run as
func unitLocation(system bool) (dir, at string, err error) {
	if system {
		return "/etc/systemd/system", "@", nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", err
	}
	return filepath.Join(home, ".local/share/systemd/user"), "", nil
}
