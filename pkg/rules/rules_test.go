package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KimHands/clasp/pkg/store"
)

func TestClassifyManualOverrideShortCircuits(t *testing.T) {
	e := &Engine{
		rules: []store.Rule{{Priority: 1, Type: store.RuleTypeExtension, Value: "pdf", FolderName: "PDFs"}},
		extMap: map[string]string{"pdf": "문서"},
	}
	got := e.Classify(Input{Filename: "a.pdf", Extension: "pdf", ManualCategory: "스프레드시트"})
	assert.Equal(t, Result{Category: "스프레드시트", Confidence: ManualConfidence}, got)
}

func TestClassifyRulePrecedenceOverExtensionMap(t *testing.T) {
	e := &Engine{
		rules:  []store.Rule{{Priority: 1, Type: store.RuleTypeExtension, Value: "pdf", FolderName: "PDFs"}},
		extMap: map[string]string{"pdf": "문서"},
	}
	got := e.Classify(Input{Filename: "report.pdf", Extension: "pdf"})
	require.Equal(t, "PDFs", got.Category)
	assert.InDelta(t, RuleConfidence, got.Confidence, 1e-9)
	assert.Empty(t, got.Tag)
}

func TestClassifyExtensionFallbackWithYearTag(t *testing.T) {
	e := &Engine{extMap: map[string]string{"pdf": "문서"}}
	got := e.Classify(Input{Filename: "report_2024.pdf", Extension: "pdf"})
	assert.Equal(t, "문서", got.Category)
	assert.Equal(t, "문서_2024", got.Tag)
	assert.InDelta(t, ExtensionConfidence, got.Confidence, 1e-9)
}

func TestClassifyExtensionFallbackNoYear(t *testing.T) {
	e := &Engine{extMap: map[string]string{"pdf": "문서"}}
	got := e.Classify(Input{Filename: "report.pdf", Extension: "pdf"})
	assert.Equal(t, "문서", got.Category)
	assert.Empty(t, got.Tag)
}

func TestClassifyUnknownExtensionReturnsZeroResult(t *testing.T) {
	e := &Engine{extMap: map[string]string{}}
	got := e.Classify(Input{Filename: "weird.xyz", Extension: "xyz"})
	assert.Equal(t, Result{}, got)
}

func TestMatchRuleDateType(t *testing.T) {
	r := store.Rule{Type: store.RuleTypeDate, Value: "2025"}
	assert.True(t, matchRule(r, "/a/b.txt", "report_2025.txt", "txt", ""))
	assert.False(t, matchRule(r, "/a/b.txt", "report_2024.txt", "txt", ""))
}

func TestMatchRuleContentPrefersExtractedText(t *testing.T) {
	r := store.Rule{Type: store.RuleTypeContent, Value: "invoice"}
	assert.True(t, matchRule(r, "/a/b.txt", "plain.txt", "txt", "This is an INVOICE for services rendered."))
	assert.False(t, matchRule(r, "/a/b.txt", "plain.txt", "txt", "no match here"))
	assert.True(t, matchRule(r, "/a/b.txt", "invoice_plain.txt", "txt", ""))
}

func TestMatchRuleExtensionCaseInsensitive(t *testing.T) {
	r := store.Rule{Type: store.RuleTypeExtension, Value: "PDF"}
	assert.True(t, matchRule(r, "/a/b.PDF", "b.PDF", "pdf", ""))
}

func TestClassifyEvaluatesRulesInListOrder(t *testing.T) {
	e := &Engine{
		rules: []store.Rule{
			{Priority: 1, Type: store.RuleTypeExtension, Value: "pdf", FolderName: "First"},
			{Priority: 2, Type: store.RuleTypeExtension, Value: "pdf", FolderName: "Second"},
		},
	}
	got := e.Classify(Input{Filename: "a.pdf", Extension: "pdf"})
	assert.Equal(t, "First", got.Category)
}
