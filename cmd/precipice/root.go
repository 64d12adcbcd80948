// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"precipice-cli/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"

	// verbose enables verbose output
	verbose bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "precipice",
		Short: "A wall-clock benchmarker for binaries",
		Long: TitleStyle.Render("precipice") + SubtitleStyle.Render(" - a wall-clock benchmarker for binaries") + `

precipice runs a target program many times, measures each invocation's
wall-clock duration, and summarizes the distribution. Results are saved
as a row-oriented CSV of microsecond samples or as a histogram HTML page,
and previously recorded traces can be merged into either output.

` + SubtitleStyle.Render("Examples:") + `
  precipice run -b ./mybin -r 500              Benchmark 500 runs
  precipice run -b ./mybin -c "--fast -n 2"    Pass arguments to the target
  precipice run -b ./mybin -t histogram        Export a histogram page
  precipice export -i a.csv -i b.csv -o all    Merge recorded traces
  precipice tui                                Interactive session`,
	}
)

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tuiCmd)
}

func initLogging() {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main() exactly once.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
	); err != nil {
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// render their suggestions; verbose mode shows the full cause chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
