package service

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestInstallAndUninstallUserUnits(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("systemd units are linux only")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)

	opts := Options{
		AudioDirs: []string{"/music", "/more/music"},
		ExecPath:  "/usr/local/bin/songfone",
	}
	if err := Install(opts); err != nil {
		t.Fatal(err)
	}

	unitDir := filepath.Join(home, ".local/share/systemd/user")

	pathUnit, err := os.ReadFile(filepath.Join(unitDir, "songfone.path"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(pathUnit), "PathModified=/music") ||
		!strings.Contains(string(pathUnit), "PathModified=/more/music") {
		t.Errorf("path unit missing watch lines:\n%s", pathUnit)
	}

	serviceUnit, err := os.ReadFile(filepath.Join(unitDir, "songfone.service"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(serviceUnit), "ExecStart=/usr/local/bin/songfone sync") {
		t.Errorf("service unit missing ExecStart:\n%s", serviceUnit)
	}
	if strings.Contains(string(serviceUnit), "User=") {
		t.Errorf("user unit must not carry a User line:\n%s", serviceUnit)
	}

	if _, err := os.Stat(filepath.Join(unitDir, "songfone.timer")); err != nil {
		t.Error("timer unit not written")
	}

	if err := Uninstall(opts); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"songfone.path", "songfone.timer", "songfone.service"} {
		if _, err := os.Stat(filepath.Join(unitDir, name)); !os.IsNotExist(err) {
			t.Errorf("%s survived uninstall", name)
		}
	}
}

func TestUninstallMissingUnitsIsNoError(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("systemd units are linux only")
	}
	t.Setenv("HOME", t.TempDir())

	if err := Uninstall(Options{}); err != nil {
		t.Errorf("Uninstall of absent units = %v", err)
	}
}
