// Package cli implements the interceptd command-line tooling for
// validating, exercising, and scaffolding rule files.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/interceptd/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	logLevel  string
	logFormat string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "interceptd",
	Short: "interceptd is a programmable HTTP interception rule engine",
	Long: `interceptd is the decision layer of an intercepting proxy: it evaluates
an ordered set of matcher/action rules against request descriptors and either
forwards the request or synthesizes a response.

Rule files are YAML or JSON. Use 'interceptd validate' to check a rule file
and 'interceptd eval' to dry-run a request against it.`,
	SilenceUsage:  true,
	SilenceErrors: true, // errors are handled in Execute()
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level",
		envString("INTERCEPTD_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format",
		envString("INTERCEPTD_LOG_FORMAT", "text"), "Log format (text, json)")
}

// newLogger builds the command logger from the persistent flags.
func newLogger() *slog.Logger {
	return logging.New(logging.ParseLevel(logLevel), logging.ParseFormat(logFormat), os.Stderr)
}
