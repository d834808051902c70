package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorulex/gorulex/cv"
	"github.com/gorulex/gorulex/facts"
	"github.com/gorulex/gorulex/search"
)

var (
	learnSeed    int64
	learnMaxD    int
	learnMaxE    int
	learnMaxBody int
	learnBudget  time.Duration
)

var learnCmd = &cobra.Command{
	Use:   "learn <data.lp>",
	Short: "Learn one model on one seeded 50/50 split and report its errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0], class)
		if err != nil {
			return err
		}
		train, test := ds.Partition(learnSeed)
		bounds := search.Bounds{MaxD: learnMaxD, MaxE: learnMaxE, MaxBody: learnMaxBody}
		s, err := search.New(train, bounds)
		if err != nil {
			return err
		}
		stop := make(chan struct{})
		go watchStop(stop, learnBudget)
		start := time.Now()
		res := s.Optimize(stop)
		logger.Info("search done",
			zap.Duration("elapsed", time.Since(start)),
			zap.Int64("nodes", res.Stats.Nodes),
			zap.Int64("pruned", res.Stats.Pruned),
			zap.Bool("partial", res.Partial))
		if res.Clamped {
			logger.Warn("maxBody clamped to attribute count",
				zap.Int("requested", bounds.MaxBody),
				zap.Int("effective", res.Bounds.MaxBody))
		}
		testErr := res.Model.Score(test.Records())
		fmt.Print(res.Model)
		fmt.Printf("%% trainErr=%d/%d testErr=%d/%d pp10k=%d literals=%d\n",
			res.TrainErr, train.Len(),
			testErr, test.Len(),
			cv.PP10K(testErr, test.Len()),
			res.Model.Literals())
		return nil
	},
}

func init() {
	learnCmd.Flags().Int64Var(&learnSeed, "seed", 0, "partition seed")
	learnCmd.Flags().IntVar(&learnMaxD, "maxd", 4, "max number of default rules")
	learnCmd.Flags().IntVar(&learnMaxE, "maxe", 1, "max exceptions per rule")
	learnCmd.Flags().IntVar(&learnMaxBody, "maxbody", 3, "max literals per rule body")
	learnCmd.Flags().DurationVar(&learnBudget, "budget", 0, "optional time budget; on expiry the best model so far is reported")
}

func loadDataset(path string, class int) (*facts.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	defer f.Close()
	ds, err := facts.ParseLP(f, class)
	if err != nil {
		return nil, fmt.Errorf("could not parse %q: %w", path, err)
	}
	return ds, nil
}

// watchStop closes stop when the budget expires or on interrupt. A zero
// budget means no time limit.
func watchStop(stop chan struct{}, budget time.Duration) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	var expired <-chan time.Time
	if budget > 0 {
		timer := time.NewTimer(budget)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case <-sig:
	case <-expired:
	}
	close(stop)
}
