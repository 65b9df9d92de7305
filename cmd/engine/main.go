package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagDataDir string
)

func main() {
	root := &cobra.Command{
		Use:           "engine",
		Short:         "BD intelligence engine: maps job postings to defense programs and infers org charts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file (default <data-dir>/config.yml)")
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "engine data directory (default $BDINTEL_DATA_DIR or .)")

	root.AddCommand(newMapCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func dataDir() (string, error) {
	dir := flagDataDir
	if dir == "" {
		dir = os.Getenv("BDINTEL_DATA_DIR")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
