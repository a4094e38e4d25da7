package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fimo-dev/fimo/internal/model"
)

const (
	colReceiver = "Auftraggeber / Begünstigter"
	colPurpose  = "Verwendungszweck"
	colValue    = "Betrag (EUR)"
)

func row(receiver, purpose, value string) model.RawRow {
	return model.RawRow{
		Fields: map[string]string{colReceiver: receiver, colPurpose: purpose, colValue: value},
		Source: model.RecordSource{Path: "konto/2023-03.csv", Line: 5},
	}
}

func rule(label string, line int, patterns map[string]string) model.Rule {
	return model.Rule{
		Columns:  []string{colReceiver, colPurpose, colValue},
		Patterns: patterns,
		Label:    label,
		Source:   model.RecordSource{Path: "rules/regexrules.csv", Line: line},
	}
}

func TestRegexRule_SubstringSearch(t *testing.T) {
	r := row("REWE Markt GmbH", "REWE MARKT SAGT DANKE 1234", "-12,34")
	rules := []model.Rule{rule("DAILY", 2, map[string]string{colPurpose: "REWE"})}

	require.NoError(t, Apply(&r, rules, MatchRegex, true))

	require.Len(t, r.Hits, 1)
	assert.Equal(t, "DAILY", r.Hits[0].Label)
	assert.Equal(t, model.RecordSource{Path: "rules/regexrules.csv", Line: 2}, r.Hits[0].Source)
}

func TestRegexRule_AllColumnsMustMatch(t *testing.T) {
	r := row("DREWAG", "Abschlag", "-80,00")
	rules := []model.Rule{rule("WOHNEN", 2, map[string]string{colReceiver: "DREWAG", colPurpose: "^Strom"})}

	require.NoError(t, Apply(&r, rules, MatchRegex, true))
	assert.Empty(t, r.Hits)
}

func TestRegexRule_Pattern(t *testing.T) {
	r := row("Telefonica Germany", "Rechnung 04/2023", "-19,99")
	rules := []model.Rule{rule("WOHNEN", 2, map[string]string{colReceiver: "(?i)telef[oó]nica"})}

	require.NoError(t, Apply(&r, rules, MatchRegex, true))
	require.Len(t, r.Hits, 1)
	assert.Equal(t, "WOHNEN", r.Hits[0].Label)
}

func TestOverwrite_LastMatchWins(t *testing.T) {
	// Several matching rules under overwrite keep only the last one. This is
	// the current precedence; first-match-wins would change this test.
	r := row("REWE Markt GmbH", "REWE MARKT", "-5,00")
	rules := []model.Rule{
		rule("DAILY", 2, map[string]string{colPurpose: "REWE"}),
		rule("NOPE", 3, map[string]string{colPurpose: "LIDL"}),
		rule("COMMON_ONETIME", 4, map[string]string{colReceiver: "Markt"}),
	}

	require.NoError(t, Apply(&r, rules, MatchRegex, true))

	require.Len(t, r.Hits, 1)
	assert.Equal(t, "COMMON_ONETIME", r.Hits[0].Label)
	assert.Equal(t, 4, r.Hits[0].Source.Line)
}

func TestOverwrite_ReplacesEarlierPass(t *testing.T) {
	r := row("REWE", "REWE MARKT", "-5,00")
	r.Hits = []model.LabelHit{{Label: "OLD"}}

	require.NoError(t, Apply(&r, []model.Rule{rule("DAILY", 2, map[string]string{colPurpose: "REWE"})}, MatchRegex, true))
	require.Len(t, r.Hits, 1)
	assert.Equal(t, "DAILY", r.Hits[0].Label)
}

func TestAppend_AccumulatesAllMatches(t *testing.T) {
	r := row("REWE", "REWE MARKT", "-5,00")
	rules := []model.Rule{
		rule("DAILY", 2, map[string]string{colPurpose: "REWE"}),
		rule("COMMON_ONETIME", 3, map[string]string{colReceiver: "REWE"}),
	}

	require.NoError(t, Apply(&r, rules, MatchRegex, false))

	require.Len(t, r.Hits, 2)
	assert.Equal(t, "DAILY,COMMON_ONETIME", r.Label())
}

func TestNoMatchKeepsExistingHits(t *testing.T) {
	r := row("LIDL", "LIDL SAGT DANKE", "-5,00")
	r.Hits = []model.LabelHit{{Label: "DAILY"}}

	require.NoError(t, Apply(&r, []model.Rule{rule("WOHNEN", 2, map[string]string{colReceiver: "DREWAG"})}, MatchRegex, true))
	assert.Equal(t, "DAILY", r.Label())
}

func TestEmptyPatternMatchesEveryRow(t *testing.T) {
	// Hazard: a rule with only empty patterns labels everything.
	catchAll := rule("EVERYTHING", 2, map[string]string{colReceiver: "", colPurpose: "", colValue: ""})

	for _, mode := range []MatchMode{MatchRegex, MatchExact} {
		for _, r := range []model.RawRow{row("A", "B", "1"), row("", "", ""), {Fields: map[string]string{}}} {
			require.NoError(t, Apply(&r, []model.Rule{catchAll}, mode, true))
			assert.Equal(t, "EVERYTHING", r.Label(), "mode %s", mode)
		}
	}
}

func TestEmptyPatternColumnIsWildcard(t *testing.T) {
	exact := rule("WOHNEN", 7, map[string]string{colReceiver: "DREWAG", colPurpose: "", colValue: ""})

	a := row("DREWAG", "Abschlag Jan", "-80,00")
	b := row("DREWAG", "Abschlag Feb", "-82,00")
	c := row("DREWAG AG", "Abschlag Feb", "-82,00")
	for _, r := range []*model.RawRow{&a, &b, &c} {
		require.NoError(t, Apply(r, []model.Rule{exact}, MatchExact, true))
	}
	assert.Equal(t, "WOHNEN", a.Label())
	assert.Equal(t, "WOHNEN", b.Label())
	assert.Empty(t, c.Label(), "exact mode does not search substrings")
}

func TestExactRule_OverridesRegexRule(t *testing.T) {
	// Curated exact rules run after regex rules, so they win.
	r := row("REWE Markt GmbH", "REWE MARKT", "-250,00")

	regex := []model.Rule{rule("DAILY", 2, map[string]string{colPurpose: "REWE"})}
	exact := []model.Rule{{
		Columns:  []string{colReceiver, colPurpose, colValue},
		Patterns: map[string]string{colReceiver: "REWE Markt GmbH", colPurpose: "REWE MARKT", colValue: "-250,00"},
		Label:    "COMMON_ONETIME",
		Comment:  "party",
		Source:   model.RecordSource{Path: "rules/2023-03.csv", Line: 3},
	}}

	require.NoError(t, Apply(&r, regex, MatchRegex, true))
	require.NoError(t, Apply(&r, exact, MatchExact, true))

	require.Len(t, r.Hits, 1)
	assert.Equal(t, "COMMON_ONETIME", r.Hits[0].Label)
	assert.Equal(t, "party", r.Hits[0].Comment)
	assert.Equal(t, "rules/2023-03.csv", r.Hits[0].Source.Path)
}

func TestStubRulesNeverApply(t *testing.T) {
	r := row("REWE", "REWE", "-1,00")
	stub := rule("", 2, map[string]string{colPurpose: "REWE"})

	m, err := NewMatcher([]model.Rule{stub}, MatchExact)
	require.NoError(t, err)
	assert.False(t, m.Apply(&r, true))
	assert.Empty(t, r.Hits)
}

func TestCommentOnlyRuleApplies(t *testing.T) {
	r := row("PayPal", "PP.1234", "-9,99")
	note := model.Rule{Patterns: map[string]string{colReceiver: "PayPal"}, Comment: "check receipt"}

	require.NoError(t, Apply(&r, []model.Rule{note}, MatchExact, true))
	assert.False(t, r.Labeled())
	assert.Equal(t, "check receipt", r.Comment())
}

func TestInvalidRegex(t *testing.T) {
	_, err := NewMatcher([]model.Rule{rule("X", 9, map[string]string{colPurpose: "(unclosed"})}, MatchRegex)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules/regexrules.csv:9")
}

func TestExactModeDoesNotCompile(t *testing.T) {
	// Patterns that are invalid regexps are fine as exact values.
	r := row("(unclosed", "", "")
	require.NoError(t, Apply(&r, []model.Rule{rule("X", 2, map[string]string{colReceiver: "(unclosed"})}, MatchExact, true))
	assert.Equal(t, "X", r.Label())
}

func TestMatchModeString(t *testing.T) {
	assert.Equal(t, "regex", MatchRegex.String())
	assert.Equal(t, "exact", MatchExact.String())
	assert.Equal(t, "MatchMode(7)", MatchMode(7).String())
}
