package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gorulex/gorulex/cv"
)

var (
	cvConfigFile string
	cvSeedsFile  string
	cvOutDir     string
	cvWorkers    int
	cvSummary    string
)

var cvCmd = &cobra.Command{
	Use:   "cv <data.lp>",
	Short: "Run the full cross-validation sweep and write the summary table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cv.DefaultConfig()
		if cvConfigFile != "" {
			var err error
			cfg, err = cv.LoadConfig(cvConfigFile)
			if err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("class") {
			cfg.Class = class
		}
		if cvSeedsFile != "" {
			cfg.SeedsFile = cvSeedsFile
		}
		if cvOutDir != "" {
			cfg.OutDir = cvOutDir
		}
		if cvWorkers > 0 {
			cfg.Workers = cvWorkers
		}
		ds, err := loadDataset(args[0], cfg.Class)
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		driver := &cv.Driver{Config: cfg, Log: logger}
		results, err := driver.Run(ctx, ds)
		if err != nil {
			return err
		}
		out := os.Stdout
		if cvSummary != "" {
			f, err := os.Create(cvSummary)
			if err != nil {
				return fmt.Errorf("could not create summary %q: %w", cvSummary, err)
			}
			defer f.Close()
			out = f
		}
		return cv.WriteSummary(out, results)
	},
}

func init() {
	cvCmd.Flags().StringVar(&cvConfigFile, "config", "", "YAML experiment config")
	cvCmd.Flags().StringVar(&cvSeedsFile, "seeds", "", "file with one partition seed per line (default 0..9)")
	cvCmd.Flags().StringVar(&cvOutDir, "out", "", "directory for per-split model reports (default runs)")
	cvCmd.Flags().IntVar(&cvWorkers, "workers", 0, "parallel grid points per split (default NumCPU)")
	cvCmd.Flags().StringVarP(&cvSummary, "summary", "o", "", "summary CSV path (default stdout)")
}
