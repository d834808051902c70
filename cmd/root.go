// Package cmd wires the gorulex command line: a learn command for a
// single search on a single split, and a cv command for the full
// cross-validation sweep.
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool
	class   int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gorulex",
	Short: "gorulex learns small defeasible rule classifiers over boolean datasets",
	Long: `gorulex learns an interpretable boolean classifier expressed as a few
default rules with exceptions, by exhaustive branch-and-bound search
within explicit size bounds, and measures its generalization over
repeated seeded 50/50 train/test splits.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().IntVar(&class, "class", 10, "index of the class attribute")
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(cvCmd)
}
