// Package importer turns an account's statement exports into labeled,
// normalized records.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/fimo-dev/fimo/internal/model"
	"github.com/fimo-dev/fimo/internal/statement"
)

// FileInfo describes a statement export in an account directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// FileReport summarizes the import of one statement file.
type FileReport struct {
	Name      string
	Rows      int
	Labeled   int
	Unlabeled int
}

// Scan returns the CSV files directly inside dir, in directory listing
// order. Subdirectories such as rules/ and preview/ are skipped.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading account dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// AccountImporter imports every statement export of one account.
type AccountImporter struct {
	account model.Account
	logger  *log.Logger

	records []model.AccountRecord
	errs    []string
	reports []FileReport
}

// New creates an AccountImporter. A nil logger discards log output.
func New(account model.Account, logger *log.Logger) *AccountImporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &AccountImporter{account: account, logger: logger}
}

// Run imports account and returns its records and non-fatal import errors.
func Run(account model.Account, logger *log.Logger) ([]model.AccountRecord, []string, error) {
	imp := New(account, logger)
	if err := imp.Import(); err != nil {
		return nil, nil, err
	}
	return imp.Records(), imp.ImportErrors(), nil
}

// Account returns the account being imported.
func (i *AccountImporter) Account() model.Account {
	return i.account
}

// Records returns the records of the last Import.
func (i *AccountImporter) Records() []model.AccountRecord {
	return i.records
}

// ImportErrors returns the non-fatal problems found by the last Import,
// such as rows no rule labeled.
func (i *AccountImporter) ImportErrors() []string {
	return i.errs
}

// Reports returns one summary per imported file.
func (i *AccountImporter) Reports() []FileReport {
	return i.reports
}

// Import reads every CSV file of the account. A duplicate row, a malformed
// date or value, or an unreadable rule file stops the import; files already
// imported keep their rule files and the previous previews stay in place.
func (i *AccountImporter) Import() error {
	i.records, i.errs, i.reports = nil, nil, nil

	lab, err := newLabeler(i.account)
	if err != nil {
		return err
	}

	files, err := Scan(i.account.Path)
	if err != nil {
		lab.discard()
		return fmt.Errorf("account %s: %w", i.account.Name, err)
	}

	for _, f := range files {
		if lab.reserved(f.Name) {
			msg := fmt.Sprintf("%s: file name is reserved for regex rules, skipped", f.Path)
			i.errs = append(i.errs, msg)
			i.logger.Warn("skipping reserved file", "file", f.Path)
			continue
		}
		if err := i.importFile(lab, f); err != nil {
			lab.discard()
			return fmt.Errorf("account %s: importing %s: %w", i.account.Name, f.Name, err)
		}
	}

	if err := lab.commit(); err != nil {
		lab.discard()
		return fmt.Errorf("account %s: %w", i.account.Name, err)
	}

	i.logger.Info("imported account", "account", i.account.Name, "files", len(files), "records", len(i.records), "errors", len(i.errs))
	return nil
}

func (i *AccountImporter) importFile(lab labeler, f FileInfo) error {
	i.logger.Debug("importing file", "account", i.account.Name, "file", f.Path)

	table, err := statement.ReadFile(f.Path, statement.Options{
		Delimiter: i.account.Delimiter,
		Encoding:  i.account.Encoding,
	})
	if err != nil {
		return err
	}

	plan, err := lab.label(f.Path, table)
	if err != nil {
		return err
	}

	records, err := NormalizeAll(i.account, table.Rows)
	if err != nil {
		return err
	}

	if err := plan.write(); err != nil {
		return err
	}

	unlabeled := Unlabeled(records)
	report := FileReport{
		Name:      f.Name,
		Rows:      len(records),
		Labeled:   len(records) - len(unlabeled),
		Unlabeled: len(unlabeled),
	}
	if lab.requiresLabels() && len(unlabeled) > 0 {
		msg := fmt.Sprintf("%s: %d of %d rows without label, first at line %d (see %s)",
			f.Path, len(unlabeled), len(records), unlabeled[0].Source.Line, plan.rulePath)
		i.errs = append(i.errs, msg)
		i.logger.Warn("unlabeled rows", "file", f.Path, "count", len(unlabeled))
	}

	i.records = append(i.records, records...)
	i.reports = append(i.reports, report)
	return nil
}
