package rules

// Canonical enumeration of the candidate rule space. Both enumerators are
// finite, deterministic and restartable: after Reset, the exact same
// sequence is produced again, so a search over the space is reproducible.

// A BodyEnum lazily enumerates every body of 1..maxBody literals over
// distinct attributes, in canonical order: body size ascending, then the
// attribute combination in lexicographic order, then the polarity vector
// with false before true (first literal most significant).
type BodyEnum struct {
	attrs   []int
	maxBody int
	size    int
	combo   []int // positions into attrs, strictly increasing
	pols    int   // polarity bits for the current combination
}

// NewBodyEnum returns an enumerator over bodies of up to maxBody literals
// drawn from the given attribute indices. A maxBody larger than the
// attribute count behaves as if it were the attribute count.
func NewBodyEnum(attrs []int, maxBody int) *BodyEnum {
	if maxBody > len(attrs) {
		maxBody = len(attrs)
	}
	return &BodyEnum{attrs: attrs, maxBody: maxBody}
}

// Reset restarts the enumeration from the first body.
func (e *BodyEnum) Reset() {
	e.size = 0
	e.combo = nil
	e.pols = 0
}

// Next returns the next body in canonical order, or false once the space
// is exhausted. The returned body is freshly allocated.
func (e *BodyEnum) Next() (Body, bool) {
	if !e.advance() {
		return nil, false
	}
	b := make(Body, e.size)
	for i, pos := range e.combo {
		b[i] = Literal{
			Attr: e.attrs[pos],
			Val:  e.pols>>(e.size-1-i)&1 == 1,
		}
	}
	return b, true
}

func (e *BodyEnum) advance() bool {
	if e.size == 0 {
		if e.maxBody < 1 || len(e.attrs) == 0 {
			return false
		}
		e.size = 1
		e.combo = []int{0}
		e.pols = 0
		return true
	}
	if e.pols++; e.pols < 1<<e.size {
		return true
	}
	e.pols = 0
	// Next attribute combination of the same size.
	i := e.size - 1
	for i >= 0 && e.combo[i] == len(e.attrs)-e.size+i {
		i--
	}
	if i >= 0 {
		e.combo[i]++
		for j := i + 1; j < e.size; j++ {
			e.combo[j] = e.combo[j-1] + 1
		}
		return true
	}
	// Grow the body size.
	if e.size++; e.size > e.maxBody {
		return false
	}
	e.combo = make([]int, e.size)
	for j := range e.combo {
		e.combo[j] = j
	}
	return true
}

// Bodies drains a fresh enumeration into a slice, preserving the
// canonical order. Mostly useful for tests and for search code that
// needs positional access to the candidate space.
func Bodies(attrs []int, maxBody int) []Body {
	e := NewBodyEnum(attrs, maxBody)
	var all []Body
	for b, ok := e.Next(); ok; b, ok = e.Next() {
		all = append(all, b)
	}
	return all
}

// An ExceptionEnum lazily enumerates every set of 0..maxE exception
// bodies drawn from a fixed candidate list, in canonical order: set size
// ascending, then candidate indices ascending. The first set produced is
// always the empty one. Exception order within a set is irrelevant to
// evaluation (all exceptions of one default flip to the same label), so
// sets are enumerated as combinations, never as permutations.
type ExceptionEnum struct {
	bodies []Body
	maxE   int
	size   int
	combo  []int
	done   bool
}

// NewExceptionEnum returns an enumerator over exception sets drawn from
// the given candidate bodies. A maxE larger than the candidate count
// behaves as if it were the candidate count.
func NewExceptionEnum(bodies []Body, maxE int) *ExceptionEnum {
	if maxE > len(bodies) {
		maxE = len(bodies)
	}
	return &ExceptionEnum{bodies: bodies, maxE: maxE, size: -1}
}

// Reset restarts the enumeration from the empty set.
func (e *ExceptionEnum) Reset() {
	e.size = -1
	e.combo = nil
	e.done = false
}

// Next returns the candidate indices of the next exception set, or false
// once the space is exhausted. The returned slice is freshly allocated;
// Body returns the body for one index.
func (e *ExceptionEnum) Next() ([]int, bool) {
	if !e.advanceSet() {
		return nil, false
	}
	set := make([]int, e.size)
	copy(set, e.combo)
	return set, true
}

// Body returns the candidate body at index i, as returned by Next.
func (e *ExceptionEnum) Body(i int) Body { return e.bodies[i] }

func (e *ExceptionEnum) advanceSet() bool {
	if e.done {
		return false
	}
	if e.size < 0 {
		e.size = 0
		return true // the empty set
	}
	i := e.size - 1
	for i >= 0 && e.combo[i] == len(e.bodies)-e.size+i {
		i--
	}
	if i >= 0 {
		e.combo[i]++
		for j := i + 1; j < e.size; j++ {
			e.combo[j] = e.combo[j-1] + 1
		}
		return true
	}
	if e.size++; e.size > e.maxE {
		e.done = true
		return false
	}
	e.combo = make([]int, e.size)
	for j := range e.combo {
		e.combo[j] = j
	}
	return true
}
