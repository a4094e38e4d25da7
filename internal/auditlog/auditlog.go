// Package auditlog keeps an append-only CSV trail of import runs.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fimo-dev/fimo/internal/importer"
)

// Status of an imported file.
const (
	StatusOK        = "ok"
	StatusUnlabeled = "unlabeled"
	StatusFailed    = "failed"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp time.Time
	Account   string
	File      string
	Rows      int
	Labeled   int
	Unlabeled int
	Status    string
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,account,file,rows,labeled,unlabeled,status"

// FileName is the log file inside the log directory.
const FileName = "import-log.csv"

const (
	numFields    = 7
	colTimestamp = 0
	colAccount   = 1
	colFile      = 2
	colRows      = 3
	colLabeled   = 4
	colUnlabeled = 5
	colStatus    = 6
)

// FromReports builds one entry per imported file of an account.
func FromReports(ts time.Time, account string, reports []importer.FileReport) []Entry {
	entries := make([]Entry, 0, len(reports))
	for _, r := range reports {
		status := StatusOK
		if r.Unlabeled > 0 {
			status = StatusUnlabeled
		}
		entries = append(entries, Entry{
			Timestamp: ts,
			Account:   account,
			File:      r.Name,
			Rows:      r.Rows,
			Labeled:   r.Labeled,
			Unlabeled: r.Unlabeled,
			Status:    status,
		})
	}
	return entries
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colAccount] = e.Account
	row[colFile] = e.File
	row[colRows] = strconv.Itoa(e.Rows)
	row[colLabeled] = strconv.Itoa(e.Labeled)
	row[colUnlabeled] = strconv.Itoa(e.Unlabeled)
	row[colStatus] = e.Status
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	e := Entry{
		Timestamp: ts,
		Account:   record[colAccount],
		File:      record[colFile],
		Status:    record[colStatus],
	}
	counts := []struct {
		col int
		dst *int
	}{
		{colRows, &e.Rows},
		{colLabeled, &e.Labeled},
		{colUnlabeled, &e.Unlabeled},
	}
	for _, c := range counts {
		n, err := strconv.Atoi(record[c.col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[c.col], err)
		}
		*c.dst = n
	}
	return e, nil
}

// Append writes entries to <dir>/import-log.csv, creating the directory,
// file and header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/import-log.csv.
// Returns nil if the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
