package model

import "strings"

// Rule assigns Label and Comment to rows whose columns match Patterns.
// Columns keeps the pattern columns in file order. An empty pattern
// matches any value.
type Rule struct {
	Columns  []string
	Patterns map[string]string
	Label    string
	Comment  string
	Source   RecordSource
}

// IsStub reports whether the rule is an unfilled candidate: neither a
// label nor a comment has been curated yet. A label field holding only
// commas or blanks counts as unfilled.
func (r Rule) IsStub() bool {
	return len(SplitLabels(r.Label)) == 0 && strings.TrimSpace(r.Comment) == ""
}
