package search

import (
	"errors"
	"testing"

	"github.com/gorulex/gorulex/facts"
	"github.com/gorulex/gorulex/rules"
)

// dataset builds a dataset from rows of attribute values; the last column
// is the class label, attributes are indexed from 0.
func dataset(t *testing.T, rows [][]int) *facts.Dataset {
	t.Helper()
	vals := make(map[int]map[int]bool)
	for i, row := range rows {
		rv := make(map[int]bool)
		for attr, v := range row {
			rv[attr] = v == 1
		}
		vals[i+1] = rv
	}
	ds, err := facts.New(vals, len(rows[0])-1)
	if err != nil {
		t.Fatalf("could not build dataset: %v", err)
	}
	return ds
}

func optimize(t *testing.T, ds *facts.Dataset, b Bounds) *Result {
	t.Helper()
	s, err := New(ds, b)
	if err != nil {
		t.Fatalf("could not create search: %v", err)
	}
	return s.Optimize(nil)
}

// Eight records over three attributes whose label is a(0) && !a(1): a
// single two-literal rule separates them perfectly.
var separableRows = [][]int{
	{0, 0, 0, 0},
	{0, 0, 1, 0},
	{0, 1, 0, 0},
	{0, 1, 1, 0},
	{1, 0, 0, 1},
	{1, 0, 1, 1},
	{1, 1, 0, 0},
	{1, 1, 1, 0},
}

func TestSeparableRecoversRule(t *testing.T) {
	ds := dataset(t, separableRows)
	res := optimize(t, ds, Bounds{MaxD: 1, MaxE: 0, MaxBody: 2})
	if res.TrainErr != 0 {
		t.Fatalf("train error = %d, want 0\nmodel:\n%s", res.TrainErr, res.Model)
	}
	if len(res.Model.Rules) != 1 {
		t.Fatalf("got %d rules, want 1\nmodel:\n%s", len(res.Model.Rules), res.Model)
	}
	rule := res.Model.Rules[0]
	if got, want := rule.Body.String(), "a(0)=1 a(1)=0"; got != want {
		t.Errorf("rule body = %q, want %q", got, want)
	}
	if !rule.Label || res.Model.Fallback {
		t.Errorf("expected rule label 1 with fallback 0, got model:\n%s", res.Model)
	}
}

// Four records whose label is a(0) XOR a(1). No conjunction separates
// them; the best single rule isolates one cell and leaves one error to
// the fallback.
var xorRows = [][]int{
	{0, 0, 0},
	{0, 1, 1},
	{1, 0, 1},
	{1, 1, 0},
}

func TestXORSingleRule(t *testing.T) {
	ds := dataset(t, xorRows)
	res := optimize(t, ds, Bounds{MaxD: 1, MaxE: 0, MaxBody: 2})
	if want := naiveBest(ds, 2); res.TrainErr != want {
		t.Fatalf("train error = %d, brute force says %d\nmodel:\n%s", res.TrainErr, want, res.Model)
	}
	if res.TrainErr != 1 {
		t.Errorf("train error = %d, want 1 (one cell isolated, fallback covers two of the rest)", res.TrainErr)
	}
	if got := res.Model.Score(ds.Records()); got != res.TrainErr {
		t.Errorf("reported train error %d but Score gives %d", res.TrainErr, got)
	}
	// Two more rules fix XOR completely.
	res = optimize(t, ds, Bounds{MaxD: 2, MaxE: 0, MaxBody: 2})
	if res.TrainErr != 0 {
		t.Errorf("train error with two rules = %d, want 0\nmodel:\n%s", res.TrainErr, res.Model)
	}
}

// naiveBest exhaustively scores every single-rule model (plus the
// fallback-only ones) and returns the lowest error count. It is the
// reference the engine is checked against for maxD=1, maxE=0.
func naiveBest(ds *facts.Dataset, maxBody int) int {
	recs := ds.Records()
	best := len(recs)
	for _, fb := range []bool{false, true} {
		if errs := (rules.Model{Fallback: fb}).Score(recs); errs < best {
			best = errs
		}
		for _, body := range rules.Bodies(ds.Attrs(), maxBody) {
			for _, label := range []bool{false, true} {
				m := rules.Model{
					Rules:    []rules.DefaultRule{{Body: body, Label: label}},
					Fallback: fb,
				}
				if errs := m.Score(recs); errs < best {
					best = errs
				}
			}
		}
	}
	return best
}

// mixedRows is a dataset with no simple structure, used for reference and
// monotonicity checks.
var mixedRows = [][]int{
	{0, 0, 0, 1},
	{0, 0, 1, 0},
	{0, 1, 0, 1},
	{0, 1, 1, 1},
	{1, 0, 0, 0},
	{1, 0, 1, 0},
	{1, 1, 0, 1},
	{1, 1, 1, 0},
	{0, 0, 0, 1},
	{1, 1, 0, 0},
	{1, 0, 0, 1},
	{0, 1, 1, 0},
}

func TestSingleRuleMatchesBruteForce(t *testing.T) {
	ds := dataset(t, mixedRows)
	for maxBody := 1; maxBody <= 3; maxBody++ {
		res := optimize(t, ds, Bounds{MaxD: 1, MaxE: 0, MaxBody: maxBody})
		if want := naiveBest(ds, maxBody); res.TrainErr != want {
			t.Errorf("maxBody=%d: train error = %d, brute force says %d", maxBody, res.TrainErr, want)
		}
	}
}

func TestWiderBoundsNeverWorse(t *testing.T) {
	ds := dataset(t, mixedRows)
	errAt := func(b Bounds) int { return optimize(t, ds, b).TrainErr }
	base := Bounds{MaxD: 1, MaxE: 0, MaxBody: 1}
	prev := errAt(base)
	for maxD := 1; maxD <= 3; maxD++ {
		if e := errAt(Bounds{MaxD: maxD, MaxE: 0, MaxBody: 1}); e > prev {
			t.Errorf("maxD=%d increased the optimum from %d to %d", maxD, prev, e)
		} else {
			prev = e
		}
	}
	prev = errAt(base)
	for maxBody := 1; maxBody <= 3; maxBody++ {
		if e := errAt(Bounds{MaxD: 1, MaxE: 0, MaxBody: maxBody}); e > prev {
			t.Errorf("maxBody=%d increased the optimum from %d to %d", maxBody, prev, e)
		} else {
			prev = e
		}
	}
	prev = errAt(Bounds{MaxD: 1, MaxE: 0, MaxBody: 2})
	for maxE := 0; maxE <= 2; maxE++ {
		if e := errAt(Bounds{MaxD: 1, MaxE: maxE, MaxBody: 2}); e > prev {
			t.Errorf("maxE=%d increased the optimum from %d to %d", maxE, prev, e)
		} else {
			prev = e
		}
	}
}

// Label is a(0) && !(a(1) && a(2)): a default rule on a(0) with one
// two-literal exception classifies everything, while no single rule of
// up to two literals can.
var exceptionRows = [][]int{
	{0, 0, 0, 0},
	{0, 0, 1, 0},
	{0, 1, 0, 0},
	{0, 1, 1, 0},
	{1, 0, 0, 1},
	{1, 0, 1, 1},
	{1, 1, 0, 1},
	{1, 1, 1, 0},
}

func TestExceptionImprovesModel(t *testing.T) {
	ds := dataset(t, exceptionRows)
	res := optimize(t, ds, Bounds{MaxD: 1, MaxE: 0, MaxBody: 2})
	if res.TrainErr != 1 {
		t.Errorf("without exceptions: train error = %d, want 1", res.TrainErr)
	}
	res = optimize(t, ds, Bounds{MaxD: 1, MaxE: 1, MaxBody: 2})
	if res.TrainErr != 0 {
		t.Fatalf("with one exception: train error = %d, want 0\nmodel:\n%s", res.TrainErr, res.Model)
	}
	if len(res.Model.Rules) != 1 || len(res.Model.Rules[0].Exceptions) != 1 {
		t.Fatalf("expected one rule with one exception, got:\n%s", res.Model)
	}
	rule := res.Model.Rules[0]
	if got, want := rule.Body.String(), "a(0)=1"; got != want {
		t.Errorf("rule body = %q, want %q", got, want)
	}
	if got, want := rule.Exceptions[0].Body.String(), "a(1)=1 a(2)=1"; got != want {
		t.Errorf("exception body = %q, want %q", got, want)
	}
	if rule.Exceptions[0].Label == rule.Label {
		t.Errorf("exception label must flip the default's")
	}
	if got := res.Model.Literals(); got != 3 {
		t.Errorf("model size = %d literals, want 3", got)
	}
}

func TestDeterministicResult(t *testing.T) {
	ds := dataset(t, mixedRows)
	b := Bounds{MaxD: 2, MaxE: 1, MaxBody: 2}
	first := optimize(t, ds, b)
	for i := 0; i < 3; i++ {
		res := optimize(t, ds, b)
		if res.Model.String() != first.Model.String() || res.TrainErr != first.TrainErr {
			t.Fatalf("search is not deterministic:\nfirst:\n%s\nrun %d:\n%s", first.Model, i, res.Model)
		}
	}
}

func TestFallbackOnlyModel(t *testing.T) {
	ds := dataset(t, [][]int{
		{0, 0, 1},
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 1},
	})
	res := optimize(t, ds, Bounds{MaxD: 2, MaxE: 1, MaxBody: 2})
	if res.TrainErr != 0 {
		t.Errorf("train error = %d, want 0", res.TrainErr)
	}
	if len(res.Model.Rules) != 0 || !res.Model.Fallback {
		t.Errorf("expected the fallback-only model with fallback 1, got:\n%s", res.Model)
	}
}

func TestMaxBodyClampedObservably(t *testing.T) {
	ds := dataset(t, xorRows)
	res := optimize(t, ds, Bounds{MaxD: 1, MaxE: 0, MaxBody: 10})
	if !res.Clamped {
		t.Errorf("expected the clamping to be flagged")
	}
	if res.Bounds.MaxBody != 2 {
		t.Errorf("effective maxBody = %d, want 2 (the attribute count)", res.Bounds.MaxBody)
	}
	within := optimize(t, ds, Bounds{MaxD: 1, MaxE: 0, MaxBody: 2})
	if within.Clamped {
		t.Errorf("maxBody within range must not be flagged as clamped")
	}
	if res.TrainErr != within.TrainErr {
		t.Errorf("clamped search found %d errors, unclamped equivalent %d", res.TrainErr, within.TrainErr)
	}
}

func TestInvalidBounds(t *testing.T) {
	ds := dataset(t, xorRows)
	tests := []Bounds{
		{MaxD: 0, MaxE: 0, MaxBody: 1},
		{MaxD: 1, MaxE: -1, MaxBody: 1},
		{MaxD: 1, MaxE: 0, MaxBody: 0},
	}
	for _, b := range tests {
		_, err := New(ds, b)
		if err == nil {
			t.Errorf("bounds %+v: expected a ConfigError", b)
			continue
		}
		var cerr ConfigError
		if !errors.As(err, &cerr) {
			t.Errorf("bounds %+v: expected a ConfigError, got %T: %v", b, err, err)
		}
	}
}

func TestEmptySpace(t *testing.T) {
	// Records carrying nothing but the class attribute: no literal can be
	// built, so there is no candidate space at all.
	vals := map[int]map[int]bool{
		1: {0: true},
		2: {0: false},
	}
	ds, err := facts.New(vals, 0)
	if err != nil {
		t.Fatalf("could not build dataset: %v", err)
	}
	_, err = New(ds, Bounds{MaxD: 1, MaxE: 0, MaxBody: 1})
	var eerr EmptySpaceError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected an EmptySpaceError, got %T: %v", err, err)
	}
}

func TestStopReturnsPartialButValidModel(t *testing.T) {
	rows := make([][]int, 0, 32)
	for i := 0; i < 32; i++ {
		row := make([]int, 7)
		for a := 0; a < 6; a++ {
			row[a] = i >> (a % 5) & 1
		}
		row[6] = (i*7 + 3) % 5 & 1
		rows = append(rows, row)
	}
	ds := dataset(t, rows)
	s, err := New(ds, Bounds{MaxD: 3, MaxE: 2, MaxBody: 3})
	if err != nil {
		t.Fatalf("could not create search: %v", err)
	}
	stop := make(chan struct{})
	close(stop)
	res := s.Optimize(stop)
	if !res.Partial {
		t.Fatalf("expected a partial result from a stopped search (visited %d nodes)", res.Stats.Nodes)
	}
	if res.TrainErr > ds.Len() {
		t.Errorf("partial result has no valid model: train error %d", res.TrainErr)
	}
	if got := res.Model.Score(ds.Records()); got != res.TrainErr {
		t.Errorf("partial model scores %d, reported %d", got, res.TrainErr)
	}
}
