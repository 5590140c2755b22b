// pitworld serves a geographic token-collecting world over websockets.
//
// Usage:
//
//	pitworld serve              - Run the world and serve /v1/ws
//	pitworld inspect <file>     - Summarize and validate a snapshot file
//	pitworld snapshots          - List indexed snapshots
//
// Global flags:
//
//	--data <dir>        - Runtime data directory (default: ./data)
//	--tuning <path>     - Tuning file (default: ./configs/tuning.yaml)
//	--log-level <lvl>   - debug, info, warn, error (default: info)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagDataDir  string
	flagTuning   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "pitworld",
	Short:         "Pitworld - collect and deposit tokens across a map grid",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data", "./data", "Runtime data directory")
	rootCmd.PersistentFlags().StringVar(&flagTuning, "tuning", "./configs/tuning.yaml", "Path to tuning.yaml")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(snapshotsCmd)
}

func newLogger() (*log.Logger, error) {
	lvl, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "pitworld",
		Level:           lvl,
	}), nil
}

func snapshotsDir() string { return filepath.Join(flagDataDir, "snapshots") }
func indexPath() string    { return filepath.Join(flagDataDir, "index", "world.sqlite") }
