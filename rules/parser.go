package rules

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ParseModel reads a model report as produced by Model.String and returns
// the equivalent model. A report is a sequence of "default" lines, each
// optionally followed by "exception" lines attaching to it, terminated by
// a single "fallback" line:
//
//	default a(1)=1 a(2)=0 => 1
//	exception a(4)=1 => 0
//	fallback 0
//
// Blank lines and lines starting with '%' are ignored. The parsed model
// makes the same predictions as the one that was serialized.
func ParseModel(r io.Reader) (Model, error) {
	var m Model
	scanner := bufio.NewScanner(r)
	line := 0
	haveFallback := false
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		if haveFallback {
			return Model{}, fmt.Errorf("line %d: unexpected %q after fallback line", line, text)
		}
		field, rest, _ := strings.Cut(text, " ")
		switch field {
		case "default":
			body, label, err := parseRuleLine(rest)
			if err != nil {
				return Model{}, fmt.Errorf("line %d: %v", line, err)
			}
			m.Rules = append(m.Rules, DefaultRule{Body: body, Label: label})
		case "exception":
			if len(m.Rules) == 0 {
				return Model{}, fmt.Errorf("line %d: exception without a preceding default rule", line)
			}
			body, label, err := parseRuleLine(rest)
			if err != nil {
				return Model{}, fmt.Errorf("line %d: %v", line, err)
			}
			rule := &m.Rules[len(m.Rules)-1]
			rule.Exceptions = append(rule.Exceptions, Exception{Body: body, Label: label})
		case "fallback":
			label, err := parseLabel(rest)
			if err != nil {
				return Model{}, fmt.Errorf("line %d: %v", line, err)
			}
			m.Fallback = label
			haveFallback = true
		default:
			return Model{}, fmt.Errorf("line %d: unknown directive %q", line, field)
		}
	}
	if err := scanner.Err(); err != nil {
		return Model{}, fmt.Errorf("could not read model: %w", err)
	}
	if !haveFallback {
		return Model{}, fmt.Errorf("model report has no fallback line")
	}
	return m, nil
}

// parseRuleLine parses "a(N)=V a(M)=V ... => V".
func parseRuleLine(s string) (Body, bool, error) {
	cond, labelStr, ok := strings.Cut(s, "=>")
	if !ok {
		return nil, false, fmt.Errorf("expected %q in %q", "=>", s)
	}
	var body Body
	seen := make(map[int]bool)
	for _, field := range strings.Fields(cond) {
		lit, err := parseLiteral(field)
		if err != nil {
			return nil, false, err
		}
		if seen[lit.Attr] {
			return nil, false, fmt.Errorf("attribute a(%d) appears twice in one body", lit.Attr)
		}
		seen[lit.Attr] = true
		body = append(body, lit)
	}
	if len(body) == 0 {
		return nil, false, fmt.Errorf("empty rule body in %q", s)
	}
	sort.Slice(body, func(i, j int) bool { return body[i].Attr < body[j].Attr })
	label, err := parseLabel(strings.TrimSpace(labelStr))
	if err != nil {
		return nil, false, err
	}
	return body, label, nil
}

// parseLiteral parses "a(N)=V".
func parseLiteral(s string) (Literal, error) {
	rest, ok := strings.CutPrefix(s, "a(")
	if !ok {
		return Literal{}, fmt.Errorf("invalid literal %q", s)
	}
	attrStr, valStr, ok := strings.Cut(rest, ")=")
	if !ok {
		return Literal{}, fmt.Errorf("invalid literal %q", s)
	}
	attr := 0
	for _, c := range attrStr {
		if c < '0' || c > '9' {
			return Literal{}, fmt.Errorf("invalid attribute index in %q", s)
		}
		attr = 10*attr + int(c-'0')
	}
	if attrStr == "" {
		return Literal{}, fmt.Errorf("missing attribute index in %q", s)
	}
	val, err := parseLabel(valStr)
	if err != nil {
		return Literal{}, fmt.Errorf("invalid polarity in %q", s)
	}
	return Literal{Attr: attr, Val: val}, nil
}

func parseLabel(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("label must be 0 or 1, got %q", s)
}
