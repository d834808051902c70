package cv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gorulex/gorulex/facts"
	"github.com/gorulex/gorulex/rules"
	"github.com/gorulex/gorulex/search"
)

// A UnitResult is the outcome of one unit of work: one grid point
// searched on one split. Err is set when the unit failed; the other
// fields are then meaningless.
type UnitResult struct {
	Split    int
	Seed     int64
	Bounds   search.Bounds // effective bounds, after clamping
	Clamped  bool
	Model    rules.Model
	TrainErr int
	TestErr  int
	TrainN   int
	TestN    int
	Literals int
	Partial  bool
	Err      error
}

// A SplitResult is the per-split selection: the winning unit, or Err when
// every unit of the split failed.
type SplitResult struct {
	Split int
	Seed  int64
	Best  *UnitResult
	Err   error
}

// A Driver runs cross-validation experiments. Log must not be nil; use
// zap.NewNop for silent runs.
type Driver struct {
	Config Config
	Log    *zap.Logger
}

// Run partitions the dataset once per seed, searches every grid point on
// every split, and returns one SplitResult per seed in seed order. Splits
// are processed sequentially; the grid points of one split run in
// parallel, bounded by Config.Workers. Unit failures are logged and kept
// as failure markers, never aborting sibling units. Cancelling ctx stops
// the remaining searches early; already-finished splits are returned.
func (d *Driver) Run(ctx context.Context, ds *facts.Dataset) ([]SplitResult, error) {
	seeds, err := d.Config.ResolveSeeds()
	if err != nil {
		return nil, err
	}
	combos := d.Config.Grid.Combos()
	if len(combos) == 0 {
		return nil, fmt.Errorf("empty hyperparameter grid")
	}
	workers := d.Config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if d.Config.OutDir != "" {
		if err := os.MkdirAll(d.Config.OutDir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create output dir: %w", err)
		}
	}
	results := make([]SplitResult, 0, len(seeds))
	for i, seed := range seeds {
		if ctx.Err() != nil {
			break
		}
		split := i + 1
		sr := d.runSplit(ctx, ds, split, seed, combos, workers)
		if sr.Err != nil {
			d.Log.Warn("split failed",
				zap.Int("split", split),
				zap.Int64("seed", seed),
				zap.Error(sr.Err))
		} else {
			best := sr.Best
			d.Log.Info("split complete",
				zap.Int("split", split),
				zap.Int64("seed", seed),
				zap.Int("trainErr", best.TrainErr),
				zap.Int("testErr", best.TestErr),
				zap.Int("pp10k", PP10K(best.TestErr, best.TestN)),
				zap.Int("literals", best.Literals),
				zap.Int("maxD", best.Bounds.MaxD),
				zap.Int("maxE", best.Bounds.MaxE),
				zap.Int("maxBody", best.Bounds.MaxBody))
		}
		results = append(results, sr)
	}
	if n, sum := successStats(results); n > 0 {
		d.Log.Info("sweep complete",
			zap.Int("splits", n),
			zap.Float64("meanTestError", sum/float64(n)))
	}
	return results, nil
}

// runSplit searches every grid point on one split and selects the winner:
// lowest training error, then lowest test error, then smallest model. The
// test error never influences the search itself, only this selection
// among already-optimal models. The winner's report is written to the
// output dir by this single goroutine once all units are done.
func (d *Driver) runSplit(ctx context.Context, ds *facts.Dataset, split int, seed int64, combos []search.Bounds, workers int) SplitResult {
	train, test := ds.Partition(seed)
	units := make([]UnitResult, len(combos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for ci, bounds := range combos {
		ci, bounds := ci, bounds
		g.Go(func() error {
			units[ci] = d.runUnit(gctx, train, test, split, seed, bounds)
			return nil
		})
	}
	_ = g.Wait() // units report failure via UnitResult.Err, never through the group
	sr := SplitResult{Split: split, Seed: seed}
	for ci := range units {
		u := &units[ci]
		if u.Err != nil {
			d.Log.Warn("unit failed",
				zap.Int("split", split),
				zap.Int("maxD", combos[ci].MaxD),
				zap.Int("maxE", combos[ci].MaxE),
				zap.Int("maxBody", combos[ci].MaxBody),
				zap.Error(u.Err))
			continue
		}
		if sr.Best == nil || betterUnit(u, sr.Best) {
			sr.Best = u
		}
	}
	if sr.Best == nil {
		sr.Err = fmt.Errorf("all %d grid points failed", len(combos))
		return sr
	}
	if d.Config.OutDir != "" {
		path := filepath.Join(d.Config.OutDir, fmt.Sprintf("split%d.txt", split))
		if err := os.WriteFile(path, []byte(sr.Best.Model.String()), 0o644); err != nil {
			sr.Err = fmt.Errorf("could not write split report: %w", err)
			sr.Best = nil
		}
	}
	return sr
}

// runUnit performs one search and scores the result on the test half.
func (d *Driver) runUnit(ctx context.Context, train, test *facts.Dataset, split int, seed int64, bounds search.Bounds) UnitResult {
	u := UnitResult{Split: split, Seed: seed, Bounds: bounds, TrainN: train.Len(), TestN: test.Len()}
	if err := ctx.Err(); err != nil {
		u.Err = err
		return u
	}
	s, err := search.New(train, bounds)
	if err != nil {
		u.Err = err
		return u
	}
	res := s.Optimize(ctx.Done())
	u.Bounds = res.Bounds
	u.Clamped = res.Clamped
	u.Model = res.Model
	u.TrainErr = res.TrainErr
	u.Literals = res.Model.Literals()
	u.Partial = res.Partial
	u.TestErr = res.Model.Score(test.Records())
	if res.Clamped {
		d.Log.Debug("maxBody clamped to attribute count",
			zap.Int("split", split),
			zap.Int("requested", bounds.MaxBody),
			zap.Int("effective", res.Bounds.MaxBody))
	}
	return u
}

// betterUnit reports whether a beats b under the per-split selection
// policy: training error, then test error, then model size. Grid order
// breaks remaining ties because the first winner is kept.
func betterUnit(a, b *UnitResult) bool {
	if a.TrainErr != b.TrainErr {
		return a.TrainErr < b.TrainErr
	}
	if a.TestErr != b.TestErr {
		return a.TestErr < b.TestErr
	}
	return a.Literals < b.Literals
}

func successStats(results []SplitResult) (n int, sumErrRate float64) {
	for _, sr := range results {
		if sr.Err != nil || sr.Best == nil {
			continue
		}
		n++
		if sr.Best.TestN > 0 {
			sumErrRate += float64(sr.Best.TestErr) / float64(sr.Best.TestN)
		}
	}
	return n, sumErrRate
}
