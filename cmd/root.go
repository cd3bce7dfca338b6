package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipeboot/pipeboot/internal/logging"
)

var (
	jsonOutput bool
	logFormat  string
	logLevel   string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "pipeboot",
	Short: "Idempotent environment bootstrap for the streaming pipeline",
	Long: "pipeboot — provision a host (Python, Poetry, GNU Make, system packages), " +
		"capture Azure credentials, and drive the pipeline's Makefile targets.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logFormat, logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output raw JSON")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.Tint, "Log format (tint, text, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config overriding the built-in defaults")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
