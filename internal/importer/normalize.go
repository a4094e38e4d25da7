package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"

	"github.com/fimo-dev/fimo/internal/model"
)

// ParseValue converts a locale-formatted amount to minor units by dropping
// every '.' and ',' and reading the rest as an integer. Amounts must carry
// exactly two fractional digits: "1.234,56" is 123456.
func ParseValue(text string) (int64, error) {
	digits := strings.NewReplacer(".", "", ",", "").Replace(strings.TrimSpace(text))
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing value %q: %w", text, err)
	}
	return v, nil
}

// ParseDate parses text with a strftime format such as "%d.%m.%Y".
func ParseDate(text, format string) (time.Time, error) {
	t, err := timefmt.Parse(strings.TrimSpace(text), format)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q with %q: %w", text, format, err)
	}
	return t, nil
}

// Normalize converts a labeled raw row into an AccountRecord.
func Normalize(account model.Account, row model.RawRow) (model.AccountRecord, error) {
	dateText, ok := row.Fields[account.Columns.Date]
	if !ok {
		return model.AccountRecord{}, fmt.Errorf("%s: missing date column %q", row.Source, account.Columns.Date)
	}
	valueText, ok := row.Fields[account.Columns.Value]
	if !ok {
		return model.AccountRecord{}, fmt.Errorf("%s: missing value column %q", row.Source, account.Columns.Value)
	}

	date, err := ParseDate(dateText, account.DateFormat)
	if err != nil {
		return model.AccountRecord{}, fmt.Errorf("%s: %w", row.Source, err)
	}
	value, err := ParseValue(valueText)
	if err != nil {
		return model.AccountRecord{}, fmt.Errorf("%s: %w", row.Source, err)
	}

	rec := model.AccountRecord{
		Account:  account.Name,
		Spender:  account.Spender,
		Date:     date,
		Value:    value,
		Receiver: optional(row, account.Columns.Receiver),
		Purpose:  optional(row, account.Columns.Purpose),
		Source:   row.Source,
	}
	for _, hit := range row.Hits {
		labels := model.SplitLabels(hit.Label)
		if len(labels) == 0 && hit.Comment == "" {
			continue
		}
		rec.Labels = append(rec.Labels, labels...)
		if hit.Comment != "" {
			rec.Comments = append(rec.Comments, hit.Comment)
		}
		rec.LabelSources = append(rec.LabelSources, hit.Source)
	}
	return rec, nil
}

// NormalizeAll normalizes rows in order and stops at the first malformed one.
func NormalizeAll(account model.Account, rows []model.RawRow) ([]model.AccountRecord, error) {
	records := make([]model.AccountRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := Normalize(account, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Unlabeled returns the records without any label.
func Unlabeled(records []model.AccountRecord) []model.AccountRecord {
	var out []model.AccountRecord
	for _, r := range records {
		if len(r.Labels) == 0 {
			out = append(out, r)
		}
	}
	return out
}

func optional(row model.RawRow, column string) string {
	if column == "" {
		return ""
	}
	return row.Get(column)
}
