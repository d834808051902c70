// Package rules defines defeasible classifiers over boolean records: an
// ordered list of default rules, each a conjunction of literals with a
// predicted label, optionally overridden by exception conditions, plus a
// fallback label for records no rule matches. It also provides the
// canonical enumeration of the candidate rule space used by the search
// engine, and a round-trippable textual report format.
package rules

import (
	"fmt"
	"strings"

	"github.com/gorulex/gorulex/facts"
)

// A Literal tests one attribute against a polarity. It matches a record
// iff the record's value at Attr equals Val.
type Literal struct {
	Attr int
	Val  bool
}

// Matches reports whether the literal holds for r.
func (l Literal) Matches(r facts.Record) bool { return r.Value(l.Attr) == l.Val }

func (l Literal) String() string {
	return fmt.Sprintf("a(%d)=%s", l.Attr, boolStr(l.Val))
}

// A Body is a conjunction of literals over distinct attributes, kept in
// canonical order (attribute index ascending).
type Body []Literal

// Matches reports whether all literals of the body hold for r.
// An empty body matches every record.
func (b Body) Matches(r facts.Record) bool {
	for _, l := range b {
		if !l.Matches(r) {
			return false
		}
	}
	return true
}

func (b Body) String() string {
	parts := make([]string, len(b))
	for i, l := range b {
		parts[i] = l.String()
	}
	return strings.Join(parts, " ")
}

// An Exception overrides its parent default rule's prediction with Label
// for the records it matches. It is only ever evaluated on records
// already matched by the parent.
type Exception struct {
	Body  Body
	Label bool
}

// A DefaultRule predicts Label for every record its body matches, unless
// one of its exceptions matches too.
type DefaultRule struct {
	Body       Body
	Label      bool
	Exceptions []Exception
}

// A Model is an ordered sequence of default rules plus a fallback label.
// Evaluation order is part of the model's identity: the first default
// rule whose body matches a record decides its prediction.
type Model struct {
	Rules    []DefaultRule
	Fallback bool
}

// Predict returns the model's prediction for r. Default rules are tried
// in order; the first whose body matches wins. Its exceptions are then
// tried in order, and the first matching exception overrides the
// prediction. A record matched by no default rule gets the fallback.
func (m Model) Predict(r facts.Record) bool {
	for _, rule := range m.Rules {
		if !rule.Body.Matches(r) {
			continue
		}
		for _, exc := range rule.Exceptions {
			if exc.Body.Matches(r) {
				return exc.Label
			}
		}
		return rule.Label
	}
	return m.Fallback
}

// Score returns the number of records whose prediction disagrees with
// their label.
func (m Model) Score(recs []facts.Record) int {
	errs := 0
	for _, r := range recs {
		if m.Predict(r) != r.Label() {
			errs++
		}
	}
	return errs
}

// Literals returns the total literal count over all rule bodies and
// exception bodies, the model's size measure.
func (m Model) Literals() int {
	n := 0
	for _, rule := range m.Rules {
		n += len(rule.Body)
		for _, exc := range rule.Exceptions {
			n += len(exc.Body)
		}
	}
	return n
}

// String renders the model in the report format parsed by ParseModel:
// one "default" line per rule, each followed by its "exception" lines,
// then a final "fallback" line.
func (m Model) String() string {
	var sb strings.Builder
	for _, rule := range m.Rules {
		fmt.Fprintf(&sb, "default %s => %s\n", rule.Body, boolStr(rule.Label))
		for _, exc := range rule.Exceptions {
			fmt.Fprintf(&sb, "exception %s => %s\n", exc.Body, boolStr(exc.Label))
		}
	}
	fmt.Fprintf(&sb, "fallback %s\n", boolStr(m.Fallback))
	return sb.String()
}

func boolStr(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
