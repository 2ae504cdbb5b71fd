// Package subcmd holds the trackctl command tree.
package subcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bassista/trackctl/internal/app"
	"github.com/bassista/trackctl/internal/config"
	"github.com/bassista/trackctl/internal/logger"
)

var confPath string

var RootCmd = &cobra.Command{
	Use:   "trackctl",
	Short: "Configuration console client for the tracking appliance",
	Long: "trackctl edits the tracking appliance's configuration, shows service status,\n" +
		"drives service actions, and runs a local console gateway for browser consumers.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&confPath, "config", "c", ".", "directory containing config.yaml")
}

// Execute runs the command tree.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildApp loads configuration and wires the application container. Every
// subcommand goes through here so they share one wiring path.
func buildApp() (*app.App, error) {
	cfg, err := config.LoadConfig(confPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger.SetLevel(cfg.Misc.LogLevel)

	a, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire application: %w", err)
	}
	return a, nil
}

// consoleNotifier prints workflow outcomes for the terminal user.
type consoleNotifier struct{}

func (consoleNotifier) OnSuccess(msg string) {
	fmt.Fprintln(os.Stdout, msg)
}

func (consoleNotifier) OnError(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}
