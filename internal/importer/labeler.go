package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fimo-dev/fimo/internal/model"
	"github.com/fimo-dev/fimo/internal/rules"
	"github.com/fimo-dev/fimo/internal/statement"
)

const (
	// RulesDir holds the per-file rule files and the regex rule file.
	RulesDir = "rules"
	// PreviewDir holds the preview files, replaced on every successful import.
	PreviewDir = "preview"
	// RegexRulesFile is the account-wide regex rule file inside RulesDir.
	RegexRulesFile = "regexrules.csv"
)

// labeler assigns labels to the rows of one statement file and plans the
// files to write once those rows normalized cleanly.
type labeler interface {
	label(path string, table *statement.Table) (*filePlan, error)
	// requiresLabels reports whether unlabeled rows are an import error.
	requiresLabels() bool
	// reserved reports whether a statement file name collides with a file
	// the labeler maintains itself.
	reserved(name string) bool
	// commit publishes the files staged for the account; discard drops
	// them. Exactly one of the two is called.
	commit() error
	discard()
}

func newLabeler(account model.Account) (labeler, error) {
	switch account.Labeling {
	case model.LabelingInline:
		return inlineLabeler{}, nil
	case model.LabelingRules, "":
		return newRuleLabeler(account)
	default:
		return nil, fmt.Errorf("account %s: unknown labeling %q", account.Name, account.Labeling)
	}
}

// inlineLabeler trusts the label and comment columns of pre-labeled
// exports. Each label points back at its own statement line.
type inlineLabeler struct{}

func (inlineLabeler) label(_ string, table *statement.Table) (*filePlan, error) {
	for i := range table.Rows {
		row := &table.Rows[i]
		label, comment := row.Get(model.LabelColumn), row.Get(model.CommentColumn)
		if label == "" && comment == "" {
			continue
		}
		row.Hits = []model.LabelHit{{Label: label, Comment: comment, Source: row.Source}}
	}
	return &filePlan{}, nil
}

func (inlineLabeler) requiresLabels() bool { return false }

func (inlineLabeler) reserved(string) bool { return false }

func (inlineLabeler) commit() error { return nil }

func (inlineLabeler) discard() {}

// ruleLabeler runs the regex pass and the exact pass and reconciles the
// per-file rule files. It is the account's rule context: regex rules are
// loaded once and shared by every file.
//
// Previews are written to a staging directory next to preview/ and only
// replace it once every file of the account imported cleanly.
type ruleLabeler struct {
	columns    model.Columns
	rulesDir   string
	previewDir string
	stagingDir string
	regex      *rules.Matcher
}

func newRuleLabeler(account model.Account) (*ruleLabeler, error) {
	l := &ruleLabeler{
		columns:    account.Columns,
		rulesDir:   filepath.Join(account.Path, RulesDir),
		previewDir: filepath.Join(account.Path, PreviewDir),
	}

	if err := os.MkdirAll(l.rulesDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating rules dir: %w", err)
	}

	regex, err := rules.ReadFile(filepath.Join(l.rulesDir, RegexRulesFile))
	if err != nil {
		return nil, err
	}
	l.regex, err = rules.NewMatcher(regex, rules.MatchRegex)
	if err != nil {
		return nil, fmt.Errorf("regex rules: %w", err)
	}

	l.stagingDir, err = os.MkdirTemp(account.Path, "."+PreviewDir+"-*")
	if err != nil {
		return nil, fmt.Errorf("creating preview staging dir: %w", err)
	}
	if err := os.Chmod(l.stagingDir, 0o755); err != nil {
		l.discard()
		return nil, fmt.Errorf("creating preview staging dir: %w", err)
	}
	return l, nil
}

func (l *ruleLabeler) label(path string, table *statement.Table) (*filePlan, error) {
	name := filepath.Base(path)
	rulePath := filepath.Join(l.rulesDir, name)

	existing, err := rules.ReadFile(rulePath)
	if err != nil {
		return nil, err
	}
	exact, err := rules.NewMatcher(existing, rules.MatchExact)
	if err != nil {
		return nil, err
	}

	for i := range table.Rows {
		l.regex.Apply(&table.Rows[i], true)
		exact.Apply(&table.Rows[i], true)
	}

	columns := rules.ColumnOrder(l.columns, table.Columns)
	plan := &filePlan{
		rulePath:    rulePath,
		previewPath: filepath.Join(l.stagingDir, name),
		columns:     columns,
		rules:       rules.Reconcile(existing, table.Rows, columns),
	}
	for _, row := range table.Rows {
		if row.Labeled() {
			plan.preview = append(plan.preview, rules.RowRule(row, columns))
		}
	}
	return plan, nil
}

func (l *ruleLabeler) requiresLabels() bool { return true }

// A statement named like the regex rule file would overwrite it.
func (l *ruleLabeler) reserved(name string) bool {
	return strings.EqualFold(name, RegexRulesFile)
}

func (l *ruleLabeler) commit() error {
	if err := os.RemoveAll(l.previewDir); err != nil {
		return fmt.Errorf("clearing preview dir: %w", err)
	}
	if err := os.Rename(l.stagingDir, l.previewDir); err != nil {
		return fmt.Errorf("replacing preview dir: %w", err)
	}
	return nil
}

func (l *ruleLabeler) discard() {
	_ = os.RemoveAll(l.stagingDir)
}

// filePlan is what a labeler writes for one statement file. Empty paths
// mean nothing is written.
type filePlan struct {
	columns     []string
	rulePath    string
	rules       []model.Rule
	previewPath string
	preview     []model.Rule
}

func (p *filePlan) write() error {
	if p.rulePath != "" {
		if err := rules.WriteFile(p.rulePath, p.columns, p.rules); err != nil {
			return fmt.Errorf("writing rule file: %w", err)
		}
	}
	if p.previewPath != "" {
		if err := rules.WriteFile(p.previewPath, p.columns, p.preview); err != nil {
			return fmt.Errorf("writing preview file: %w", err)
		}
	}
	return nil
}
