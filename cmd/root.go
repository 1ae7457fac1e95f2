// Package cmd is the command-line front-end (spec.md §1: "explicitly out
// of scope" of the engine itself, wired here as the peripheral surface
// spec.md §6 describes). Grounded on the teacher's own cobra root-command
// shape, generalised from the provenance-logging domain to the commit
// mining one.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linemine/linemine/internal/format"
	"github.com/linemine/linemine/internal/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "linemine",
	Short: "Mine a git repository into a relational dataset of line-level edits",
	Long: `linemine walks a repository's commit history and, for every commit and
file modification, extracts the line-level edits it introduced relative
to its parent, attributing each removed line back to the commit that
originally authored it. The result is a relational store from which
co-editing, author-file, and author-DAG collaboration networks can be
derived.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command, printing any error to stderr in the
// teacher's bordered-box style before returning it to main for the exit
// code.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, format.FormatBorderedText(err.Error(), "error"))
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug-level logging")
	rootCmd.PersistentFlags().String("config", "", "path to a YAML config file")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		telemetry.SetDebug(verbose)
	}

	rootCmd.AddCommand(newMineCmd())
	rootCmd.AddCommand(newStatsCmd())
}
