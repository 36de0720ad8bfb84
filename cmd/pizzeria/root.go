package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pizzeria",
	Short: "Pizzeria - the JWT Pizza service",
	Long: `Pizzeria serves the JWT Pizza ordering API: authentication, the menu,
orders, franchises and stores.

Every request and business event is counted by an in-process metrics engine
that serves a JSON summary and a Prometheus endpoint, and periodically pushes
samples to an OTLP collector when one is configured.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
