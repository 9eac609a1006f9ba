// Package cli implements the rsictl operator commands. The scanner only
// advises; opening and closing trades is an explicit operator action
// performed here, against the same journal the scanner reads.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rsictl",
	Short: "Operator console for the mean-reversion scanner",
	Long: `rsictl inspects and records against the scanner's trade journal.

Commands:
  status   - current oscillator, trend, session and gate state
  journal  - show a day's signals, trades and statistics
  open     - record a trade entry in the journal
  close    - close an open trade with its result
  size     - position sizing, levels and expectancy for an entry

Configuration is read from the environment (and .env / CONFIG_FILE),
identical to the scanner daemon.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
