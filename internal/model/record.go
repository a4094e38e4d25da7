package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// LabelColumn and CommentColumn are the synthetic columns carrying a row's
// labels and comments in rule, preview and pre-labeled statement files.
const (
	LabelColumn   = "label"
	CommentColumn = "comment"
)

// RecordSource points at a line in a file. Line is 1-based.
type RecordSource struct {
	Path string
	Line int
}

func (s RecordSource) String() string {
	return fmt.Sprintf("%s:%d", s.Path, s.Line)
}

// LabelHit is one labeling contribution to a row, together with the rule
// (or row) it came from.
type LabelHit struct {
	Label   string
	Comment string
	Source  RecordSource
}

// RawRow is one line of a statement export keyed by column name.
type RawRow struct {
	Fields map[string]string
	Source RecordSource
	Hits   []LabelHit
}

// Get returns the value of a column, or "" if the row does not have it.
func (r RawRow) Get(column string) string {
	return r.Fields[column]
}

// Labeled reports whether any hit carries at least one label once split
// on commas.
func (r RawRow) Labeled() bool {
	for _, h := range r.Hits {
		if len(SplitLabels(h.Label)) > 0 {
			return true
		}
	}
	return false
}

// SplitLabels splits a comma-separated label field into trimmed, non-empty
// labels. "A, B" yields [A B]; "," yields nothing.
func SplitLabels(s string) []string {
	var labels []string
	for _, part := range strings.Split(s, ",") {
		if l := strings.TrimSpace(part); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

// Label renders the label accumulator comma-joined, as written to files.
func (r RawRow) Label() string {
	return joinHits(r.Hits, func(h LabelHit) string { return h.Label })
}

// Comment renders the comment accumulator comma-joined.
func (r RawRow) Comment() string {
	return joinHits(r.Hits, func(h LabelHit) string { return h.Comment })
}

func joinHits(hits []LabelHit, field func(LabelHit) string) string {
	var parts []string
	for _, h := range hits {
		if v := field(h); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ",")
}

// AccountRecord is a normalized transaction. Value is in minor currency
// units (cents), negative for expenses.
type AccountRecord struct {
	Account      string
	Spender      string
	Date         time.Time
	Value        int64
	Receiver     string
	Purpose      string
	Labels       []string
	Comments     []string
	Source       RecordSource
	LabelSources []RecordSource
}

// HasLabel reports whether the record carries label.
func (r AccountRecord) HasLabel(label string) bool {
	return slices.Contains(r.Labels, label)
}
