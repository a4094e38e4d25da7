package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/fimo-dev/fimo/internal/model"
)

// Reconcile computes the next content of a rule file. Curated rules (those
// with a label or comment) are kept in file order, and unlabeled rows they
// match exactly are considered covered. Old stubs are dropped; every
// remaining unlabeled row becomes a fresh stub, in row order.
func Reconcile(existing []model.Rule, rows []model.RawRow, columns []string) []model.Rule {
	var curated []model.Rule
	for _, rule := range existing {
		if !rule.IsStub() {
			curated = append(curated, rule)
		}
	}
	m := newExactMatcher(curated)

	result := slices.Clone(curated)
	for _, row := range rows {
		if row.Labeled() {
			continue
		}
		if coveredBy(m, row) {
			continue
		}
		result = append(result, RowRule(model.RawRow{Fields: row.Fields}, columns))
	}
	return result
}

func coveredBy(m *Matcher, row model.RawRow) bool {
	for i := range m.Rules() {
		if m.Match(i, row) {
			return true
		}
	}
	return false
}

// ReadFile reads the rule file at path. A missing file means no rules yet.
func ReadFile(path string) ([]model.Rule, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening rule file %s: %w", path, err)
	}
	defer f.Close()

	rules, err := Read(f, path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file %s: %w", path, err)
	}
	return rules, nil
}

// WriteFile replaces the file at path with rules. Columns used by rules but
// missing from columns are appended so curated patterns are never lost.
// The file is written to a temporary sibling and renamed into place.
func WriteFile(path string, columns []string, rules []model.Rule) error {
	columns = slices.Clone(columns)
	for _, rule := range rules {
		for _, col := range rule.Columns {
			if rule.Patterns[col] != "" && !slices.Contains(columns, col) {
				columns = append(columns, col)
			}
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, columns, rules); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
