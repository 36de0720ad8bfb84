package main

import (
	"github.com/spf13/cobra"

	"pizza-hq/pizzeria/pkg/cli"
	"pizza-hq/pizzeria/pkg/config"
	"pizza-hq/pizzeria/pkg/telemetry/otlp"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load the configuration file with environment overrides applied, validate it,
and print the effective settings. Secrets are never printed.

Examples:
  # Validate the default config file
  pizzeria validate

  # Validate a specific file and print JSON
  pizzeria validate --config /etc/pizzeria/config.yaml --format json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), configReport(cfgFile, cfg))
}

// configReport summarises the effective configuration without secrets.
func configReport(path string, cfg *config.Config) cli.Report {
	factoryURL := cfg.Factory.URL
	if factoryURL == "" {
		factoryURL = "(disabled)"
	}
	return cli.Report{
		{Key: "config", Value: path},
		{Key: "listen_address", Value: cfg.Server.ListenAddress},
		{Key: "database", Value: cfg.Database.Path},
		{Key: "factory", Value: factoryURL},
		{Key: "metrics_enabled", Value: cfg.Metrics.Enabled},
		{Key: "flush_interval", Value: cfg.Metrics.FlushInterval.String()},
		{Key: "publishing", Value: otlp.FromConfig(cfg.Metrics).Enabled()},
		{Key: "prometheus_path", Value: cfg.Metrics.PrometheusPath},
		{Key: "log_level", Value: cfg.Logging.Level},
		{Key: "watch", Value: cfg.Watch},
	}
}
