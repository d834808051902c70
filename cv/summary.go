package cv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// PP10K converts an error count over n records to errors per 10,000
// records, rounded to the nearest integer, the scale-independent rate
// used for comparison across datasets and model families.
func PP10K(errs, n int) int {
	if n == 0 {
		return 0
	}
	return (errs*10000 + n/2) / n
}

// WriteSummary renders the cross-validation summary as CSV, one row per
// split. Failed splits keep their row, marked failed, so a partial sweep
// is still visible as such.
func WriteSummary(w io.Writer, results []SplitResult) error {
	cw := csv.NewWriter(w)
	header := []string{"split", "seed", "trainErr", "testErr", "pp10k", "literals", "maxD", "maxE", "maxBody", "status"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("could not write summary: %w", err)
	}
	for _, sr := range results {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(sr.Split), strconv.FormatInt(sr.Seed, 10))
		if sr.Err != nil || sr.Best == nil {
			row = append(row, "", "", "", "", "", "", "", "failed")
		} else {
			b := sr.Best
			row = append(row,
				strconv.Itoa(b.TrainErr),
				strconv.Itoa(b.TestErr),
				strconv.Itoa(PP10K(b.TestErr, b.TestN)),
				strconv.Itoa(b.Literals),
				strconv.Itoa(b.Bounds.MaxD),
				strconv.Itoa(b.Bounds.MaxE),
				strconv.Itoa(b.Bounds.MaxBody),
				"ok")
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("could not write summary: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("could not write summary: %w", err)
	}
	return nil
}
