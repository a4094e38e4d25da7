package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fimo-dev/fimo/internal/model"
)

var reconcileColumns = []string{colValue, colReceiver, colPurpose}

func TestReconcile_NoExistingRules(t *testing.T) {
	labeled := row("REWE", "REWE MARKT", "-1,00")
	labeled.Hits = []model.LabelHit{{Label: "DAILY"}}
	rows := []model.RawRow{labeled, row("DREWAG", "Abschlag", "-80,00"), row("ACME", "Gehalt", "3.000,00")}

	got := Reconcile(nil, rows, reconcileColumns)

	require.Len(t, got, 2, "only unlabeled rows become stubs")
	assert.True(t, got[0].IsStub())
	assert.Equal(t, "DREWAG", got[0].Patterns[colReceiver])
	assert.Equal(t, "-80,00", got[0].Patterns[colValue])
	assert.Equal(t, "ACME", got[1].Patterns[colReceiver])
	assert.Equal(t, reconcileColumns, got[1].Columns)
}

func TestReconcile_KeepsCuratedDropsStubs(t *testing.T) {
	existing := []model.Rule{
		{Patterns: map[string]string{colReceiver: "Oma"}, Label: "GIFT", Source: model.RecordSource{Line: 2}},
		{Patterns: map[string]string{colReceiver: "GONE", colPurpose: "x", colValue: "1"}, Source: model.RecordSource{Line: 3}},
		{Patterns: map[string]string{colReceiver: "PayPal"}, Comment: "check", Source: model.RecordSource{Line: 4}},
	}
	rows := []model.RawRow{
		row("PayPal", "PP.1", "-9,99"), // comment-only rule covers it
		row("DREWAG", "Abschlag", "-80,00"),
	}

	got := Reconcile(existing, rows, reconcileColumns)

	require.Len(t, got, 3)
	assert.Equal(t, "GIFT", got[0].Label, "curated rules are kept even when nothing matches")
	assert.Equal(t, "check", got[1].Comment)
	assert.Equal(t, "DREWAG", got[2].Patterns[colReceiver])
	assert.True(t, got[2].IsStub())
}

func TestReconcile_StubBecomesRuleOnce(t *testing.T) {
	r := row("DREWAG", "Abschlag", "-80,00")

	first := Reconcile(nil, []model.RawRow{r}, reconcileColumns)
	require.Len(t, first, 1)

	// Rerun with the same unlabeled row: the stub is regenerated, not doubled.
	second := Reconcile(first, []model.RawRow{r}, reconcileColumns)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Patterns, second[0].Patterns)

	// Human fills in the stub: no new stub is generated for the row.
	curated := second[0]
	curated.Label = "WOHNEN"
	third := Reconcile([]model.Rule{curated}, []model.RawRow{r}, reconcileColumns)
	require.Len(t, third, 1)
	assert.Equal(t, "WOHNEN", third[0].Label)
}

func TestReconcile_StubIgnoresCommentOnlyHits(t *testing.T) {
	r := row("PayPal", "PP.1", "-9,99")
	r.Hits = []model.LabelHit{{Comment: "regex note"}}

	got := Reconcile(nil, []model.RawRow{r}, reconcileColumns)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsStub())
}

func TestReconcile_CuratedPatternsAreLiteral(t *testing.T) {
	r := row("Shop (Online", "[Bestellung", "-5,00")
	curated := model.Rule{Patterns: map[string]string{colReceiver: "Shop (Online"}, Label: "DAILY"}

	_, err := NewMatcher([]model.Rule{curated}, MatchRegex)
	require.Error(t, err, "not a valid regex")

	got := Reconcile([]model.Rule{curated}, []model.RawRow{r}, reconcileColumns)
	require.Len(t, got, 1, "row is covered by the curated rule")
	assert.Equal(t, "DAILY", got[0].Label)
}

func TestReconcile_CommaOnlyLabelIsStub(t *testing.T) {
	r := row("DREWAG", "Abschlag", "-80,00")
	unfilled := model.Rule{Patterns: map[string]string{colReceiver: "DREWAG"}, Label: ","}

	got := Reconcile([]model.Rule{unfilled}, []model.RawRow{r}, reconcileColumns)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsStub())
	assert.Equal(t, "Abschlag", got[0].Patterns[colPurpose], "replaced by a fresh stub")
}

func TestReadFile_Missing(t *testing.T) {
	rules, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.Nil(t, rules)
}

func TestWriteFile_ReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2023-03.csv")
	rules := Reconcile(nil, []model.RawRow{row("DREWAG", "Abschlag", "-80,00")}, reconcileColumns)

	require.NoError(t, WriteFile(path, reconcileColumns, rules))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "DREWAG", got[0].Patterns[colReceiver])
	assert.Equal(t, model.RecordSource{Path: path, Line: 2}, got[0].Source)

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFile_Deterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	rows := []model.RawRow{row("DREWAG", "Abschlag", "-80,00"), row("ACME", "Gehalt", "3.000,00")}

	require.NoError(t, WriteFile(a, reconcileColumns, Reconcile(nil, rows, reconcileColumns)))
	existing, err := ReadFile(a)
	require.NoError(t, err)
	require.NoError(t, WriteFile(b, reconcileColumns, Reconcile(existing, rows, reconcileColumns)))

	dataA, err := os.ReadFile(a)
	require.NoError(t, err)
	dataB, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, string(dataA), string(dataB))
}

func TestWriteFile_KeepsExtraRuleColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.csv")
	rules := []model.Rule{{
		Columns:  []string{colReceiver, "Kundenreferenz"},
		Patterns: map[string]string{colReceiver: "ACME", "Kundenreferenz": "K-1"},
		Label:    "INCOME",
	}}

	require.NoError(t, WriteFile(path, []string{colReceiver}, rules))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "K-1", got[0].Patterns["Kundenreferenz"])
}

func TestWriteFile_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.csv")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	require.NoError(t, WriteFile(path, reconcileColumns, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\"label\";\"comment\";\"Betrag (EUR)\";\"Auftraggeber / Begünstigter\";\"Verwendungszweck\"\n", string(data))
}
