package model

// Labeling selects how an account's rows receive their labels.
type Labeling string

const (
	// LabelingRules infers labels from regex rules and curated rule files.
	LabelingRules Labeling = "rules"
	// LabelingInline trusts labels already present in the statement export.
	LabelingInline Labeling = "inline"
)

// Columns maps the semantic fields of a record to the column names of an
// account's statement export. Receiver and Purpose may be empty.
type Columns struct {
	Date     string
	Value    string
	Receiver string
	Purpose  string
}

// Ordered returns the configured column names in canonical order,
// skipping unset ones.
func (c Columns) Ordered() []string {
	var cols []string
	for _, name := range []string{c.Date, c.Value, c.Receiver, c.Purpose} {
		if name != "" {
			cols = append(cols, name)
		}
	}
	return cols
}

// Account describes one statement source.
type Account struct {
	Name       string
	Path       string // directory holding the statement exports
	Delimiter  rune
	Encoding   string // IANA name, e.g. "iso-8859-1"
	DateFormat string // strftime, e.g. "%d.%m.%Y"
	Spender    string
	Columns    Columns
	Labeling   Labeling
}

// Prelabeled reports whether the account skips rule inference.
func (a Account) Prelabeled() bool {
	return a.Labeling == LabelingInline
}
