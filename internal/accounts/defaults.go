package accounts

import "github.com/fimo-dev/fimo/internal/model"

// Spenders known to the default presets.
const (
	SpenderMartin = "MARTIN"
	SpenderLiane  = "LIANE"
)

const (
	bankDelimiter  = ';'
	bankEncoding   = "iso-8859-1"
	bankDateFormat = "%d.%m.%Y"
)

// Presets returns the statement layouts of the supported banks. Paths are
// relative and resolved against the project directory.
func Presets() []model.Account {
	return []model.Account{
		dkbKonto(),
		dkbVisa(),
		ingDiBa(),
	}
}

// Preset returns the preset with the given name.
func Preset(name string) (model.Account, bool) {
	for _, a := range Presets() {
		if a.Name == name {
			return a, true
		}
	}
	return model.Account{}, false
}

func dkbKonto() model.Account {
	return model.Account{
		Name:       "dkb-konto",
		Path:       "dkb/konto",
		Delimiter:  bankDelimiter,
		Encoding:   bankEncoding,
		DateFormat: bankDateFormat,
		Spender:    SpenderMartin,
		Columns: model.Columns{
			Date:     "Buchungstag",
			Value:    "Betrag (EUR)",
			Receiver: "Auftraggeber / Begünstigter",
			Purpose:  "Verwendungszweck",
		},
		Labeling: model.LabelingRules,
	}
}

// The Visa export has no receiver column.
func dkbVisa() model.Account {
	return model.Account{
		Name:       "dkb-visa",
		Path:       "dkb/visa",
		Delimiter:  bankDelimiter,
		Encoding:   bankEncoding,
		DateFormat: bankDateFormat,
		Spender:    SpenderMartin,
		Columns: model.Columns{
			Date:    "Belegdatum",
			Value:   "Betrag (EUR)",
			Purpose: "Beschreibung",
		},
		Labeling: model.LabelingRules,
	}
}

func ingDiBa() model.Account {
	return model.Account{
		Name:       "ing-diba",
		Path:       "ing-diba",
		Delimiter:  bankDelimiter,
		Encoding:   bankEncoding,
		DateFormat: bankDateFormat,
		Spender:    SpenderLiane,
		Columns: model.Columns{
			Date:     "Buchung",
			Value:    "Betrag",
			Receiver: "Auftraggeber/Empfänger",
			Purpose:  "Verwendungszweck",
		},
		Labeling: model.LabelingRules,
	}
}
