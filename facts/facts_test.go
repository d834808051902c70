package facts

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const smallLP = `% three attributes, label on a(3)
val(1,a(0),0).
val(1,a(1),0).
val(1,a(2),1).
val(1,a(3),0).
val(2,a(0),1).
val(2,a(1),0).
val(2,a(2),0).
val(2,a(3),1).
val(3,a(0),1).
val(3,a(1),1).
val(3,a(2),0).
val(3,a(3),0).
`

func parseSmall(t *testing.T) *Dataset {
	t.Helper()
	ds, err := ParseLP(strings.NewReader(smallLP), 3)
	if err != nil {
		t.Fatalf("could not parse dataset: %v", err)
	}
	return ds
}

func TestParseLP(t *testing.T) {
	ds := parseSmall(t)
	if ds.Len() != 3 {
		t.Fatalf("got %d records, want 3", ds.Len())
	}
	if want := []int{0, 1, 2}; !reflect.DeepEqual(ds.Attrs(), want) {
		t.Errorf("Attrs = %v, want %v", ds.Attrs(), want)
	}
	if ds.Class() != 3 {
		t.Errorf("Class = %d, want 3", ds.Class())
	}
	recs := ds.Records()
	if recs[0].ID() != 1 || recs[1].ID() != 2 || recs[2].ID() != 3 {
		t.Errorf("records not ordered by id: %v %v %v", recs[0].ID(), recs[1].ID(), recs[2].ID())
	}
	if recs[0].Label() || !recs[1].Label() || recs[2].Label() {
		t.Errorf("wrong labels parsed")
	}
	if !recs[0].Value(2) || recs[1].Value(2) {
		t.Errorf("wrong attribute values parsed")
	}
}

func TestParseLPErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"comments only", "% nothing here\n"},
		{"garbage", "va(1,a(0),0).\n"},
		{"non boolean value", "val(1,a(0),2).\nval(1,a(1),0).\n"},
		{"missing dot", "val(1,a(0),0)\n"},
		{"zero record id", "val(0,a(0),0).\nval(0,a(1),1).\n"},
		{"duplicate fact", "val(1,a(0),0).\nval(1,a(0),1).\nval(1,a(1),0).\n"},
		{"no class value", "val(1,a(0),0).\n"},
		{"arity mismatch", "val(1,a(0),0).\nval(1,a(3),0).\nval(2,a(3),1).\n"},
		{"disjoint attributes", "val(1,a(0),0).\nval(1,a(3),0).\nval(2,a(1),0).\nval(2,a(3),1).\n"},
	}
	for _, test := range tests {
		_, err := ParseLP(strings.NewReader(test.input), 3)
		if err == nil {
			t.Errorf("%s: expected an error for %q", test.name, test.input)
			continue
		}
		var ferr FormatError
		if !errors.As(err, &ferr) {
			t.Errorf("%s: expected a FormatError, got %T: %v", test.name, err, err)
		}
	}
}

func TestPartitionReproducible(t *testing.T) {
	ds := bigDataset(t, 20)
	train1, test1 := ds.Partition(42)
	train2, test2 := ds.Partition(42)
	if !sameIDs(train1, train2) || !sameIDs(test1, test2) {
		t.Errorf("same seed produced different partitions")
	}
	train3, _ := ds.Partition(43)
	if sameIDs(train1, train3) {
		t.Errorf("different seeds produced identical partitions (unlikely with 20 records)")
	}
}

func TestPartitionDisjointAndBalanced(t *testing.T) {
	for _, n := range []int{2, 8, 20} {
		ds := bigDataset(t, n)
		train, test := ds.Partition(7)
		if train.Len() != n/2 || test.Len() != n-n/2 {
			t.Errorf("n=%d: got sizes %d/%d, want %d/%d", n, train.Len(), test.Len(), n/2, n-n/2)
		}
		seen := make(map[int]int)
		for _, r := range train.Records() {
			seen[r.ID()]++
		}
		for _, r := range test.Records() {
			seen[r.ID()]++
		}
		if len(seen) != n {
			t.Errorf("n=%d: partition covers %d distinct records, want %d", n, len(seen), n)
		}
		for id, count := range seen {
			if count != 1 {
				t.Errorf("n=%d: record %d appears %d times across the partition", n, id, count)
			}
		}
	}
}

func TestPartitionOddSizeExtraGoesToTest(t *testing.T) {
	ds := bigDataset(t, 9)
	train, test := ds.Partition(0)
	if train.Len() != 4 || test.Len() != 5 {
		t.Errorf("odd split sizes %d/%d, want 4/5 (test side gets the extra record)", train.Len(), test.Len())
	}
}

// bigDataset builds n records over 3 attributes with label a(3).
func bigDataset(t *testing.T, n int) *Dataset {
	t.Helper()
	vals := make(map[int]map[int]bool)
	for i := 1; i <= n; i++ {
		vals[i] = map[int]bool{
			0: i%2 == 0,
			1: i%3 == 0,
			2: i%5 == 0,
			3: i%2 == 0 && i%3 != 0,
		}
	}
	ds, err := New(vals, 3)
	if err != nil {
		t.Fatalf("could not build dataset: %v", err)
	}
	return ds
}

func sameIDs(a, b *Dataset) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i, r := range a.Records() {
		if b.Records()[i].ID() != r.ID() {
			return false
		}
	}
	return true
}
