// Package rules labels raw statement rows and maintains the human-curated
// rule files those labels come from.
package rules

import (
	"fmt"
	"regexp"

	"github.com/fimo-dev/fimo/internal/model"
)

// MatchMode selects how rule patterns are compared to row values.
type MatchMode int

const (
	// MatchRegex searches the row value for the pattern as a regular
	// expression (unanchored).
	MatchRegex MatchMode = iota
	// MatchExact requires the row value to equal the pattern.
	MatchExact
)

func (m MatchMode) String() string {
	switch m {
	case MatchRegex:
		return "regex"
	case MatchExact:
		return "exact"
	default:
		return fmt.Sprintf("MatchMode(%d)", int(m))
	}
}

// Matcher applies an ordered rule list to rows.
type Matcher struct {
	mode    MatchMode
	rules   []model.Rule
	regexps []map[string]*regexp.Regexp
}

// NewMatcher prepares rules for matching. Regex patterns are compiled once;
// an invalid pattern is reported with the rule's file and line.
func NewMatcher(rules []model.Rule, mode MatchMode) (*Matcher, error) {
	if mode != MatchRegex {
		return newExactMatcher(rules), nil
	}
	m := &Matcher{mode: mode, rules: rules}

	m.regexps = make([]map[string]*regexp.Regexp, len(rules))
	for i, rule := range rules {
		compiled := make(map[string]*regexp.Regexp, len(rule.Patterns))
		for col, pattern := range rule.Patterns {
			if pattern == "" {
				continue
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("%s: column %q: %w", rule.Source, col, err)
			}
			compiled[col] = re
		}
		m.regexps[i] = compiled
	}
	return m, nil
}

// newExactMatcher builds a MatchExact matcher. Exact patterns are compared
// as plain strings, so there is nothing to compile and nothing to fail.
func newExactMatcher(rules []model.Rule) *Matcher {
	return &Matcher{mode: MatchExact, rules: rules}
}

// Rules returns the matcher's rules in order.
func (m *Matcher) Rules() []model.Rule {
	return m.rules
}

// Match reports whether rule i matches row. Every non-empty pattern must
// match the row's value for its column; a column the row lacks reads as "".
// A rule whose patterns are all empty matches every row.
func (m *Matcher) Match(i int, row model.RawRow) bool {
	rule := m.rules[i]
	for col, pattern := range rule.Patterns {
		if pattern == "" || col == model.LabelColumn || col == model.CommentColumn {
			continue
		}
		value := row.Get(col)
		switch m.mode {
		case MatchRegex:
			if !m.regexps[i][col].MatchString(value) {
				return false
			}
		default:
			if value != pattern {
				return false
			}
		}
	}
	return true
}

// Apply runs every rule against row in order. With overwrite, the row's
// labels are replaced by the last matching rule; otherwise every matching
// rule is appended. Stub rules never apply. Apply reports whether any rule
// matched.
func (m *Matcher) Apply(row *model.RawRow, overwrite bool) bool {
	matched := false
	for i, rule := range m.rules {
		if rule.IsStub() || !m.Match(i, *row) {
			continue
		}
		hit := model.LabelHit{Label: rule.Label, Comment: rule.Comment, Source: rule.Source}
		if overwrite {
			row.Hits = []model.LabelHit{hit}
		} else {
			row.Hits = append(row.Hits, hit)
		}
		matched = true
	}
	return matched
}

// Apply is the one-shot form of NewMatcher followed by Matcher.Apply.
func Apply(row *model.RawRow, rules []model.Rule, mode MatchMode, overwrite bool) error {
	m, err := NewMatcher(rules, mode)
	if err != nil {
		return err
	}
	m.Apply(row, overwrite)
	return nil
}
