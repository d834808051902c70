// Package facts holds the immutable boolean dataset a defeasible
// classifier is learned from. A dataset is a fixed-arity table of boolean
// records, one attribute of which is the class label. Records are loaded
// once and never mutated; partitioning only shuffles references.
package facts

import (
	"fmt"
	"math/rand"
	"sort"
)

// A Record is one example: a set of boolean attribute values plus its
// class label. The vals slice is indexed by attribute index; only indices
// listed in the owning dataset's attribute set are meaningful.
type Record struct {
	id    int
	vals  []bool
	label bool
}

// ID returns the record identifier from the source data.
func (r Record) ID() int { return r.id }

// Value returns the record's value for the given attribute index.
func (r Record) Value(attr int) bool { return r.vals[attr] }

// Label returns the record's class label.
func (r Record) Label() bool { return r.label }

// A Dataset is an immutable collection of records sharing one attribute
// set and one class attribute.
type Dataset struct {
	attrs []int // sorted non-class attribute indices
	class int
	recs  []Record
}

// Attrs returns the sorted non-class attribute indices. The caller must
// not modify the returned slice.
func (d *Dataset) Attrs() []int { return d.attrs }

// Class returns the index of the class attribute.
func (d *Dataset) Class() int { return d.class }

// Records returns the dataset's records. The caller must not modify the
// returned slice.
func (d *Dataset) Records() []Record { return d.recs }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.recs) }

// New builds a dataset from raw values. For each record, vals maps
// attribute indices to values and must contain the class attribute plus
// the same non-class attributes as every other record.
// It returns a FormatError on arity mismatch or a missing class value.
func New(vals map[int]map[int]bool, class int) (*Dataset, error) {
	if len(vals) == 0 {
		return nil, FormatError{Msg: "empty dataset"}
	}
	ids := make([]int, 0, len(vals))
	for id := range vals {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var attrs []int
	for attr := range vals[ids[0]] {
		if attr != class {
			attrs = append(attrs, attr)
		}
	}
	sort.Ints(attrs)
	d := &Dataset{attrs: attrs, class: class, recs: make([]Record, 0, len(ids))}
	width := class + 1
	if n := len(attrs); n > 0 && attrs[n-1] >= width {
		width = attrs[n-1] + 1
	}
	for _, id := range ids {
		rv := vals[id]
		label, ok := rv[class]
		if !ok {
			return nil, FormatError{Msg: fmt.Sprintf("record %d has no value for class attribute a(%d)", id, class)}
		}
		if len(rv) != len(attrs)+1 {
			return nil, FormatError{Msg: fmt.Sprintf("record %d has %d attributes, want %d", id, len(rv)-1, len(attrs))}
		}
		rec := Record{id: id, vals: make([]bool, width), label: label}
		for _, attr := range attrs {
			v, ok := rv[attr]
			if !ok {
				return nil, FormatError{Msg: fmt.Sprintf("record %d has no value for attribute a(%d)", id, attr)}
			}
			rec.vals[attr] = v
		}
		d.recs = append(d.recs, rec)
	}
	return d, nil
}

// Partition splits the dataset into a train and a test part using a
// seeded shuffle, so the same seed always yields the same partition.
// The train part gets the first half of the shuffled order; on an odd
// dataset size the extra record goes to the test part.
func (d *Dataset) Partition(seed int64) (train, test *Dataset) {
	perm := make([]int, len(d.recs))
	for i := range perm {
		perm[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	half := len(perm) / 2
	train = &Dataset{attrs: d.attrs, class: d.class, recs: make([]Record, 0, half)}
	test = &Dataset{attrs: d.attrs, class: d.class, recs: make([]Record, 0, len(perm)-half)}
	for i, idx := range perm {
		if i < half {
			train.recs = append(train.recs, d.recs[idx])
		} else {
			test.recs = append(test.recs, d.recs[idx])
		}
	}
	return train, test
}

// A FormatError reports malformed input data. Line is 0 when the error is
// not tied to a specific input line.
type FormatError struct {
	Line int
	Msg  string
}

func (e FormatError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("invalid dataset: %s", e.Msg)
	}
	return fmt.Sprintf("invalid dataset: line %d: %s", e.Line, e.Msg)
}
