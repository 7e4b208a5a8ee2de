// Package pattern compiles simulation command templates into matchers.
//
// A template is literal text with angle-bracket placeholders:
//
//	scan <ip>
//	firewall --add-rule <rule>
//
// Placeholders capture one or more characters; everything else matches
// literally. Matching is anchored to the whole trimmed input line and is
// case-sensitive.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedPattern is returned for templates with unbalanced or empty
// placeholder delimiters.
var ErrMalformedPattern = errors.New("malformed command pattern")

// Matcher tests literal command lines against a compiled template
type Matcher struct {
	source string
	names  []string
	re     *regexp.Regexp
}

// Result holds the arguments captured by a successful match
type Result struct {
	// Values are captures in placeholder order
	Values []string
	// Args maps placeholder name to captured text. Repeated names keep the
	// last capture.
	Args map[string]string
}

// Compile translates a template into a Matcher
func Compile(pattern string) (*Matcher, error) {
	var (
		expr  strings.Builder
		names []string
		rest  = pattern
	)

	expr.WriteString("^")
	for {
		open := strings.IndexByte(rest, '<')
		closing := strings.IndexByte(rest, '>')

		if open < 0 {
			if closing >= 0 {
				return nil, fmt.Errorf("%w: unmatched '>' in %q", ErrMalformedPattern, pattern)
			}
			expr.WriteString(regexp.QuoteMeta(rest))
			break
		}
		if closing >= 0 && closing < open {
			return nil, fmt.Errorf("%w: unmatched '>' in %q", ErrMalformedPattern, pattern)
		}

		expr.WriteString(regexp.QuoteMeta(rest[:open]))
		rest = rest[open+1:]

		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return nil, fmt.Errorf("%w: unclosed '<' in %q", ErrMalformedPattern, pattern)
		}
		name := rest[:end]
		if name == "" || strings.ContainsRune(name, '<') {
			return nil, fmt.Errorf("%w: bad placeholder %q in %q", ErrMalformedPattern, "<"+name+">", pattern)
		}

		names = append(names, name)
		expr.WriteString("(.+)")
		rest = rest[end+1:]
	}
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedPattern, pattern, err)
	}

	return &Matcher{source: pattern, names: names, re: re}, nil
}

// MustCompile is like Compile but panics on error
func MustCompile(pattern string) *Matcher {
	m, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Match tests the trimmed input against the template
func (m *Matcher) Match(input string) (Result, bool) {
	groups := m.re.FindStringSubmatch(strings.TrimSpace(input))
	if groups == nil {
		return Result{}, false
	}

	res := Result{
		Values: groups[1:],
		Args:   make(map[string]string, len(m.names)),
	}
	for i, name := range m.names {
		res.Args[name] = groups[i+1]
	}
	return res, true
}

// Source returns the template the matcher was compiled from
func (m *Matcher) Source() string { return m.source }

// Placeholders returns the placeholder names in template order
func (m *Matcher) Placeholders() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// CompileAll compiles templates in order, failing on the first malformed one
func CompileAll(patterns []string) ([]*Matcher, error) {
	out := make([]*Matcher, 0, len(patterns))
	for i, p := range patterns {
		m, err := Compile(p)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}
