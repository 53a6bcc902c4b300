// Package commands holds the repograph CLI.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gomantics/repograph/config"
	"github.com/gomantics/repograph/domains/harvest"
	"github.com/gomantics/repograph/libs/ghapi"
	"github.com/spf13/cobra"
)

// Process exit statuses.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitRateLimited = 3
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "repograph",
	Short: "Build the repository/contributor graph of the most-starred repositories.",
	Long: `repograph discovers the most-starred repositories, mirrors them, counts
commits per contributor and exports the resulting bipartite graph.

Stages run in order: ranking, langs, harvest, export. Each stage only
processes what previous runs left undone, so re-running is the way to
recover from failures.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(configFile); err != nil {
			return err
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			config.SetVerbose()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./repograph.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")

	rootCmd.AddCommand(
		newRankingCmd(),
		newLangsCmd(),
		newHarvestCmd(),
		newExportCmd(),
		newStatusCmd(),
		newServeCmd(),
	)
}

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	err := rootCmd.Execute()
	code := ExitCode(err)
	if code != ExitOK {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return code
}

// ExitCode maps a command error to an exit status. An operator interrupt is a clean exit.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return ExitOK
	case errors.Is(err, harvest.ErrRateLimited), errors.Is(err, ghapi.ErrRateLimited):
		return ExitRateLimited
	default:
		return ExitFailure
	}
}
