// Package report filters imported records and renders them for review.
package report

import (
	"slices"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fimo-dev/fimo/internal/model"
)

// Query selects records. Empty fields match everything.
type Query struct {
	Label   string
	Spender string
}

// LabelTotal is the sum of all records carrying a label.
type LabelTotal struct {
	Label string
	Count int
	Value int64 // minor units
}

// Row is one rendered record: spender, ISO date, value in major units,
// receiver, purpose.
type Row [5]string

// Filter returns the records matching q, in input order.
func Filter(records []model.AccountRecord, q Query) []model.AccountRecord {
	var out []model.AccountRecord
	for _, r := range records {
		if q.Label != "" && !r.HasLabel(q.Label) {
			continue
		}
		if q.Spender != "" && r.Spender != q.Spender {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Totals sums record values per label, sorted by label. A record with
// several labels counts towards each of them; a label repeated on one
// record counts once.
func Totals(records []model.AccountRecord) []LabelTotal {
	byLabel := make(map[string]*LabelTotal)
	for _, r := range records {
		var seen []string
		for _, l := range r.Labels {
			if slices.Contains(seen, l) {
				continue
			}
			seen = append(seen, l)
			t, ok := byLabel[l]
			if !ok {
				t = &LabelTotal{Label: l}
				byLabel[l] = t
			}
			t.Count++
			t.Value += r.Value
		}
	}

	totals := make([]LabelTotal, 0, len(byLabel))
	for _, t := range byLabel {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Label < totals[j].Label })
	return totals
}

// Rows renders records for tabular output.
func Rows(records []model.AccountRecord) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			r.Spender,
			r.Date.Format("2006-01-02"),
			FormatValue(r.Value),
			r.Receiver,
			r.Purpose,
		})
	}
	return rows
}

// FormatValue renders minor units as a major-unit amount with two
// decimals, e.g. -123456 as "-1234.56".
func FormatValue(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Sum returns the total value of records in minor units.
func Sum(records []model.AccountRecord) int64 {
	var total int64
	for _, r := range records {
		total += r.Value
	}
	return total
}
