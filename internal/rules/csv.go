package rules

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fimo-dev/fimo/internal/model"
)

// Separator is the field delimiter of rule and preview files.
const Separator = ';'

// Read reads a rule file. Label and comment come from the label and comment
// columns; every other named column becomes a pattern column. path is
// recorded as each rule's source.
func Read(r io.Reader, path string) ([]model.Rule, error) {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rule header: %w", err)
	}

	var columns []string
	for _, name := range header {
		if name != "" && name != model.LabelColumn && name != model.CommentColumn {
			columns = append(columns, name)
		}
	}

	var rules []model.Rule
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rules: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rules = append(rules, UnmarshalRule(header, columns, rec, model.RecordSource{Path: path, Line: line}))
	}
	return rules, nil
}

// UnmarshalRule converts a rule file record to a Rule.
func UnmarshalRule(header, columns, record []string, src model.RecordSource) model.Rule {
	rule := model.Rule{
		Columns:  columns,
		Patterns: make(map[string]string, len(columns)),
		Source:   src,
	}
	for i, name := range header {
		value := ""
		if i < len(record) {
			value = record[i]
		}
		switch name {
		case "":
		case model.LabelColumn:
			rule.Label = strings.TrimSpace(value)
		case model.CommentColumn:
			rule.Comment = strings.TrimSpace(value)
		default:
			rule.Patterns[name] = value
		}
	}
	return rule
}

// MarshalRule converts a Rule to a record laid out as label, comment,
// columns.
func MarshalRule(rule model.Rule, columns []string) []string {
	rec := make([]string, 0, len(columns)+2)
	rec = append(rec, rule.Label, rule.Comment)
	for _, col := range columns {
		rec = append(rec, rule.Patterns[col])
	}
	return rec
}

// Write writes rules with a label;comment;columns header, every field
// quoted.
func Write(w io.Writer, columns []string, rules []model.Rule) error {
	bw := bufio.NewWriter(w)

	header := append([]string{model.LabelColumn, model.CommentColumn}, columns...)
	if err := writeQuoted(bw, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rule := range rules {
		if err := writeQuoted(bw, MarshalRule(rule, columns)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return bw.Flush()
}

// RowRule turns a labeled or unlabeled row into its rule-file form: every
// column value as pattern, the accumulators as label and comment.
func RowRule(row model.RawRow, columns []string) model.Rule {
	patterns := make(map[string]string, len(row.Fields))
	for col, v := range row.Fields {
		patterns[col] = v
	}
	return model.Rule{
		Columns:  columns,
		Patterns: patterns,
		Label:    row.Label(),
		Comment:  row.Comment(),
	}
}

// ColumnOrder returns columns reordered for rule and preview files: the
// configured date, value, receiver and purpose columns that exist first,
// then the remaining columns in their original order.
func ColumnOrder(configured model.Columns, columns []string) []string {
	ordered := make([]string, 0, len(columns))
	for _, col := range configured.Ordered() {
		if slices.Contains(columns, col) && !slices.Contains(ordered, col) {
			ordered = append(ordered, col)
		}
	}
	for _, col := range columns {
		if col == model.LabelColumn || col == model.CommentColumn {
			continue
		}
		if !slices.Contains(ordered, col) {
			ordered = append(ordered, col)
		}
	}
	return ordered
}

// writeQuoted writes one record with every field quoted. encoding/csv only
// quotes fields that need it.
func writeQuoted(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := w.WriteRune(Separator); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}
