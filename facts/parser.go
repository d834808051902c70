package facts

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseLP reads a dataset in the boolean fact format, one fact per line:
//
//	val(ID,a(N),V).
//
// where ID is a positive record identifier, N an attribute index and V
// either 0 or 1. Blank lines and lines starting with '%' are ignored.
// The class attribute index is declared by the caller; every record must
// carry a value for it. It returns a FormatError on any malformed line,
// on a duplicate (record, attribute) pair, and on records whose attribute
// sets disagree.
func ParseLP(r io.Reader, class int) (*Dataset, error) {
	vals := make(map[int]map[int]bool)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		id, attr, v, err := parseFact(text)
		if err != nil {
			return nil, FormatError{Line: line, Msg: err.Error()}
		}
		rv, ok := vals[id]
		if !ok {
			rv = make(map[int]bool)
			vals[id] = rv
		}
		if _, dup := rv[attr]; dup {
			return nil, FormatError{Line: line, Msg: fmt.Sprintf("duplicate value for record %d, attribute a(%d)", id, attr)}
		}
		rv[attr] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read dataset: %w", err)
	}
	if len(vals) == 0 {
		return nil, FormatError{Msg: "no facts found"}
	}
	return New(vals, class)
}

// parseFact parses a single "val(ID,a(N),V)." fact.
func parseFact(text string) (id, attr int, v bool, err error) {
	rest, ok := strings.CutPrefix(text, "val(")
	if !ok {
		return 0, 0, false, fmt.Errorf("expected %q, got %q", "val(", text)
	}
	id, rest, err = cutInt(rest, ",")
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid record id: %v", err)
	}
	if id <= 0 {
		return 0, 0, false, fmt.Errorf("record id must be positive, got %d", id)
	}
	rest, ok = strings.CutPrefix(rest, "a(")
	if !ok {
		return 0, 0, false, fmt.Errorf("expected attribute term %q in %q", "a(N)", text)
	}
	attr, rest, err = cutInt(rest, "),")
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid attribute index: %v", err)
	}
	switch {
	case strings.HasPrefix(rest, "0"):
		v = false
	case strings.HasPrefix(rest, "1"):
		v = true
	default:
		return 0, 0, false, fmt.Errorf("value must be 0 or 1 in %q", text)
	}
	if rest[1:] != ")." {
		return 0, 0, false, fmt.Errorf("expected %q at end of %q", ").", text)
	}
	return id, attr, v, nil
}

// cutInt reads a non-negative integer prefix of s followed by sep, and
// returns the value and what follows sep.
func cutInt(s, sep string) (val int, rest string, err error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		val = 10*val + int(s[i]-'0')
		i++
	}
	if i == 0 {
		return 0, "", fmt.Errorf("expected digit, got %q", s)
	}
	if !strings.HasPrefix(s[i:], sep) {
		return 0, "", fmt.Errorf("expected %q after %q", sep, s[:i])
	}
	return val, s[i+len(sep):], nil
}
