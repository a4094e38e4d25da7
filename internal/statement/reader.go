package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/fimo-dev/fimo/internal/model"
)

// Options configures how a statement export is parsed.
type Options struct {
	Delimiter rune
	Encoding  string // IANA name; empty means UTF-8
}

// Table is a parsed statement export.
type Table struct {
	Columns []string // header columns in file order
	Rows    []model.RawRow
	Offset  int // header-trim offset, see LocateHeader
}

// DuplicateRowError reports two byte-identical lines in one export, which
// usually means the export was concatenated twice.
type DuplicateRowError struct {
	Path  string
	First int
	Line  int
}

func (e *DuplicateRowError) Error() string {
	return fmt.Sprintf("%s: line %d duplicates line %d", e.Path, e.Line, e.First)
}

// ReadFile reads and parses the statement export at path.
func ReadFile(path string, opts Options) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	return Read(data, path, opts)
}

// Read parses a raw statement export. path is only used for provenance.
func Read(data []byte, path string, opts Options) (*Table, error) {
	lines, offset := LocateHeader(splitLines(data))

	if err := checkDuplicates(lines, path, offset); err != nil {
		return nil, err
	}

	dec, err := decoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	raw, err := dec.Bytes(bytes.Join(lines, nil))
	if err != nil {
		return nil, fmt.Errorf("decoding %s as %q: %w", path, opts.Encoding, err)
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")

	cr := csv.NewReader(strings.NewReader(text))
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	table := &Table{Offset: offset}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	// Columns without a name (trailing delimiters) are dropped.
	index := make(map[int]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		index[i] = name
		if !seen[name] {
			seen[name] = true
			table.Columns = append(table.Columns, name)
		}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		pos, _ := cr.FieldPos(0)

		fields := make(map[string]string, len(table.Columns))
		for _, name := range table.Columns {
			fields[name] = ""
		}
		for i, v := range rec {
			if name, ok := index[i]; ok {
				fields[name] = v
			}
		}

		table.Rows = append(table.Rows, model.RawRow{
			Fields: fields,
			Source: model.RecordSource{Path: path, Line: offset - 1 + pos},
		})
	}
	return table, nil
}

// checkDuplicates fails on byte-identical non-blank lines. Line
// terminators are ignored so a missing final newline does not hide a
// duplicate.
func checkDuplicates(lines [][]byte, path string, offset int) error {
	seen := make(map[string]int, len(lines))
	for i, line := range lines {
		key := string(trimEOL(line))
		if key == "" {
			continue
		}
		lineNo := offset + i
		if first, ok := seen[key]; ok {
			return &DuplicateRowError{Path: path, First: first, Line: lineNo}
		}
		seen[key] = lineNo
	}
	return nil
}

func decoder(name string) (*encoding.Decoder, error) {
	if name == "" {
		return unicode.UTF8.NewDecoder(), nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc.NewDecoder(), nil
}
