package search

import "math/bits"

// A bitset indexes training records. All bitsets of one search have the
// same length, so the binary operations assume equal word counts.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) set(i int) {
	b[i/64] |= 1 << (i % 64)
}

func (b bitset) clear() {
	for i := range b {
		b[i] = 0
	}
}

func (b bitset) empty() bool {
	for _, w := range b {
		if w != 0 {
			return false
		}
	}
	return true
}

// and returns a new bitset holding b & o.
func (b bitset) and(o bitset) bitset {
	res := make(bitset, len(b))
	for i, w := range b {
		res[i] = w & o[i]
	}
	return res
}

// andNot returns a new bitset holding b &^ o.
func (b bitset) andNot(o bitset) bitset {
	res := make(bitset, len(b))
	for i, w := range b {
		res[i] = w &^ o[i]
	}
	return res
}

// orAnd sets b to b | (x & y) without allocating.
func (b bitset) orAnd(x, y bitset) {
	for i := range b {
		b[i] |= x[i] & y[i]
	}
}

// intersects reports whether b and o share a set bit.
func (b bitset) intersects(o bitset) bool {
	for i, w := range b {
		if w&o[i] != 0 {
			return true
		}
	}
	return false
}

// andCount returns the number of bits set in b & o.
func (b bitset) andCount(o bitset) int {
	n := 0
	for i, w := range b {
		n += bits.OnesCount64(w & o[i])
	}
	return n
}

// xorCount returns the number of bits set in b ^ o.
func (b bitset) xorCount(o bitset) int {
	n := 0
	for i, w := range b {
		n += bits.OnesCount64(w ^ o[i])
	}
	return n
}
