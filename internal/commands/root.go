// Package commands provides CLI commands for leety.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFlag      string
	debuggerURLFlag string
	modelFlag       string
	verboseFlag     bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// NewRootCmd creates the leety command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}

	cmd := &cobra.Command{
		Use:   "leety",
		Short: "Gemini chat assistant for LeetCode problems",
		Long: `leety is a chat assistant for LeetCode. It reads the problem you have
open in the browser (title, description and your current code) and
answers questions about it through the Gemini API.

Examples:
  leety                                 Open the chat panel
  leety key set                         Store your Gemini API key
  leety ask "Why is my solution O(n^2)?"
  leety scrape                          Print the open problem as JSON
  leety --debugger-url http://localhost:9222
                                        Use an already running Chrome`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "leety %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return runPanel(cmd, deps)
		},
	}

	cmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default ~/.leety/config.json)")
	cmd.PersistentFlags().StringVar(&debuggerURLFlag, "debugger-url", "",
		"Chrome DevTools URL of a running browser (default: launch one)")
	cmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Gemini model to use (e.g., gemini-2.5-pro)")
	cmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Debug logging")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewPanelCmd(deps))
	cmd.AddCommand(NewAskCmd(deps))
	cmd.AddCommand(NewKeyCmd(deps))
	cmd.AddCommand(NewScrapeCmd(deps))
	cmd.AddCommand(NewConfigCmd(deps))
	cmd.AddCommand(NewTranscriptsCmd(deps))

	return cmd
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(nil)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReply) {
			fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		}
		os.Exit(exitCode(err))
	}
}
