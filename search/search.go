// Package search implements the model search engine: an exhaustive
// branch-and-bound search for the defeasible rule model minimizing the
// training misclassification count, within explicit size bounds. Within
// those bounds the result is a true optimum, not a heuristic. Ties on the
// error count are broken by total literal count, then by the canonical
// enumeration order of the rule space, so repeated searches over the same
// data return the same model.
package search

import (
	"github.com/gorulex/gorulex/facts"
	"github.com/gorulex/gorulex/rules"
)

// Bounds is the combinatorial budget of one search: at most MaxD default
// rules, at most MaxE exceptions per rule, at most MaxBody literals per
// body (rule and exception bodies alike).
type Bounds struct {
	MaxD    int `yaml:"maxD"`
	MaxE    int `yaml:"maxE"`
	MaxBody int `yaml:"maxBody"`
}

// Validate returns a ConfigError if any bound is out of range.
// MaxD and MaxBody must be at least 1; MaxE must not be negative.
func (b Bounds) Validate() error {
	if b.MaxD < 1 {
		return ConfigError{Param: "maxD", Value: b.MaxD, Min: 1}
	}
	if b.MaxE < 0 {
		return ConfigError{Param: "maxE", Value: b.MaxE, Min: 0}
	}
	if b.MaxBody < 1 {
		return ConfigError{Param: "maxBody", Value: b.MaxBody, Min: 1}
	}
	return nil
}

// A Result is the outcome of one search: the optimal model, its training
// error count, and the bounds actually searched, which may be narrower
// than the requested ones (see Clamped).
type Result struct {
	Model    rules.Model
	TrainErr int
	Bounds   Bounds // effective bounds, after clamping
	Clamped  bool   // true when MaxBody exceeded the attribute count and was clamped
	Partial  bool   // true when the search was stopped early; Model is the best found so far
	Stats    Stats
}

// Stats reports how much of the search tree was actually visited.
type Stats struct {
	Nodes  int64 // search nodes expanded
	Pruned int64 // subtrees abandoned by the bound check
}

// A Search is the state of one model search over one training set. It is
// not safe for concurrent use, but independent searches share nothing and
// can run in parallel.
type Search struct {
	recs    []facts.Record
	attrs   []int
	bounds  Bounds
	clamped bool

	bodies   []rules.Body
	cov      []bitset // per body, the records it matches
	class    bitset   // records whose label is true
	notClass bitset

	best     rules.Model
	bestErr  int
	bestLits int
	stats    Stats
	stopped  bool
}

// New validates the bounds against the training set and prepares a
// search. A MaxBody larger than the number of usable attributes is
// clamped, and the clamping is visible in the result. It returns an
// EmptySpaceError when the dataset has no non-class attributes.
func New(train *facts.Dataset, b Bounds) (*Search, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	attrs := train.Attrs()
	if len(attrs) == 0 {
		return nil, EmptySpaceError{Reason: "dataset has no non-class attributes"}
	}
	clamped := false
	if b.MaxBody > len(attrs) {
		b.MaxBody = len(attrs)
		clamped = true
	}
	return &Search{
		recs:    train.Records(),
		attrs:   attrs,
		bounds:  b,
		clamped: clamped,
	}, nil
}

// Optimize runs the search to completion and returns the optimal model
// with its training error. If stop is non nil, closing it (or sending on
// it) makes the search return early with the best model found so far,
// flagged as partial. Even a partial result is a complete, valid model,
// just not necessarily the optimum.
func (s *Search) Optimize(stop <-chan struct{}) *Result {
	s.prepare()
	all := newBitset(len(s.recs))
	for i := range s.recs {
		all.set(i)
	}
	s.best = rules.Model{}
	s.bestErr = len(s.recs) + 1
	s.bestLits = 0
	s.stats = Stats{}
	s.stopped = false
	s.dfs(stop, 0, all, 0, 0, nil)
	return &Result{
		Model:    s.best,
		TrainErr: s.bestErr,
		Bounds:   s.bounds,
		Clamped:  s.clamped,
		Partial:  s.stopped,
		Stats:    s.stats,
	}
}

// prepare materializes the candidate body space in canonical order plus
// the per-body coverage bitsets the search works on. Coverage is computed
// once; every candidate evaluation afterwards is bitset arithmetic.
func (s *Search) prepare() {
	n := len(s.recs)
	s.class = newBitset(n)
	s.notClass = newBitset(n)
	for i, r := range s.recs {
		if r.Label() {
			s.class.set(i)
		} else {
			s.notClass.set(i)
		}
	}
	s.bodies = rules.Bodies(s.attrs, s.bounds.MaxBody)
	s.cov = make([]bitset, len(s.bodies))
	for bi, body := range s.bodies {
		cov := newBitset(n)
		for i, r := range s.recs {
			if body.Matches(r) {
				cov.set(i)
			}
		}
		s.cov[bi] = cov
	}
}

// misMask returns the records misclassified when predicted label.
func (s *Search) misMask(label bool) bitset {
	if label {
		return s.notClass
	}
	return s.class
}

// dfs extends a partial model one default rule at a time. uncovered holds
// the records not yet claimed by an earlier rule; errs and lits are the
// error and literal counts already committed by the prefix. Records
// claimed by a rule keep their outcome forever, so errs is a lower bound
// on the error of every completion of the prefix: that is the
// branch-and-bound invariant the prune relies on.
func (s *Search) dfs(stop <-chan struct{}, depth int, uncovered bitset, errs, lits int, prefix []rules.DefaultRule) {
	if s.stopped {
		return
	}
	s.stats.Nodes++
	if stop != nil && s.stats.Nodes&1023 == 0 {
		select {
		case <-stop:
			s.stopped = true
			return
		default:
		}
	}
	if errs > s.bestErr || (errs == s.bestErr && lits >= s.bestLits) {
		s.stats.Pruned++
		return
	}
	// Close the model here: pick the better fallback for what is left.
	// Trying false first makes the tie-break canonical.
	for _, fb := range []bool{false, true} {
		err := errs + uncovered.andCount(s.misMask(fb))
		if s.better(err, lits) {
			s.record(prefix, fb, err, lits)
		}
	}
	if depth == s.bounds.MaxD {
		return
	}
	for bi := range s.bodies {
		m := uncovered.and(s.cov[bi])
		if m.empty() {
			// The rule would claim nothing: it cannot change any
			// prediction and only costs literals.
			continue
		}
		rest := uncovered.andNot(m)
		for _, label := range []bool{false, true} {
			mis := m.and(s.misMask(label))
			s.expand(stop, depth, bi, label, m, mis, rest, errs, lits, prefix)
			if s.stopped {
				return
			}
		}
	}
}

// expand tries every exception set for one (body, label) rule candidate
// and recurses on the remaining records. Only bodies covering at least
// one record the rule misclassifies are exception candidates: an
// exception that fixes nothing can only add errors and literals, so
// every set containing one is dominated.
func (s *Search) expand(stop <-chan struct{}, depth, bi int, label bool, m, mis, rest bitset, errs, lits int, prefix []rules.DefaultRule) {
	var cands []int
	if s.bounds.MaxE > 0 && !mis.empty() {
		for bj := range s.bodies {
			if bj != bi && s.cov[bj].intersects(mis) {
				cands = append(cands, bj)
			}
		}
	}
	candBodies := make([]rules.Body, len(cands))
	for i, bj := range cands {
		candBodies[i] = s.bodies[bj]
	}
	enum := rules.NewExceptionEnum(candBodies, s.bounds.MaxE)
	flipped := newBitset(len(s.recs))
	for set, ok := enum.Next(); ok; set, ok = enum.Next() {
		flipped.clear()
		rlits := len(s.bodies[bi])
		var excs []rules.Exception
		for _, li := range set {
			bj := cands[li]
			flipped.orAnd(s.cov[bj], m)
			excs = append(excs, rules.Exception{Body: s.bodies[bj], Label: !label})
			rlits += len(s.bodies[bj])
		}
		err := mis.xorCount(flipped)
		rule := rules.DefaultRule{Body: s.bodies[bi], Label: label, Exceptions: excs}
		s.dfs(stop, depth+1, rest, errs+err, lits+rlits, append(prefix, rule))
		if s.stopped {
			return
		}
	}
}

// better reports whether (err, lits) beats the best model found so far.
func (s *Search) better(err, lits int) bool {
	return err < s.bestErr || (err == s.bestErr && lits < s.bestLits)
}

// record keeps a copy of the current prefix plus fallback as the new best
// model. The prefix slice is reused by the search, so the rule sequence
// is copied; bodies and exception slices are never mutated once built.
func (s *Search) record(prefix []rules.DefaultRule, fallback bool, err, lits int) {
	rs := make([]rules.DefaultRule, len(prefix))
	copy(rs, prefix)
	s.best = rules.Model{Rules: rs, Fallback: fallback}
	s.bestErr = err
	s.bestLits = lits
}
