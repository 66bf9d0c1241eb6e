package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jakob/songfone/internal/service"
	"github.com/jakob/songfone/internal/util"
)

var serviceSystem bool

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage the background sync service (systemd)",
}

var serviceInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install systemd units that sync on library changes and every 5min",
	RunE:  runServiceInstall,
}

var serviceUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the installed systemd units",
	RunE:  runServiceUninstall,
}

func init() {
	serviceCmd.PersistentFlags().BoolVar(&serviceSystem, "system", os.Geteuid() == 0,
		"install system-wide templated units instead of user units")
	serviceCmd.AddCommand(serviceInstallCmd)
	serviceCmd.AddCommand(serviceUninstallCmd)
	rootCmd.AddCommand(serviceCmd)
}

func runServiceInstall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return err
	}

	if err := service.Install(service.Options{
		System:    serviceSystem,
		AudioDirs: cfg.Audio,
		ExecPath:  exe,
	}); err != nil {
		return err
	}
	util.SuccessLog("Service installed; enable it with systemctl")
	return nil
}

func runServiceUninstall(cmd *cobra.Command, args []string) error {
	if err := service.Uninstall(service.Options{System: serviceSystem}); err != nil {
		return err
	}
	util.SuccessLog("Service removed")
	return nil
}
