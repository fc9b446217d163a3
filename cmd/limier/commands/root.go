package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "limier",
	Short: "Limier - a campus whodunit played in the terminal",
	Long: `Limier is a turn-based deduction game: someone on campus has been
murdered, every player embodies a staff member, and the table takes turns
moving between rooms and testing hypotheses until the belief ledgers give
the culprit away.

Games run against an in-memory store by default; a Postgres graph store and
a Redis action history can be enabled through the environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var errorColor = color.New(color.FgRed, color.Bold)

// Execute runs the root command. Cobra's own printing is silenced; failures
// are rendered here, once, in color.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	err := rootCmd.Execute()
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

func printError(w io.Writer, err error) {
	errorColor.Fprintf(w, "Error: %v\n", err)
}

// SetVersionInfo sets the version string shown by --version.
func SetVersionInfo(version, commit string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", version, commit)
}
