package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KimHands/clasp/pkg/rules"
	"github.com/KimHands/clasp/pkg/store"
)

func TestClassifyManualOverrideShortCircuitsEnsemble(t *testing.T) {
	p := &Pipeline{rulesEngine: newRulesEngine(nil, nil)}
	got := p.Classify(context.Background(), Input{
		Filename:       "a.pdf",
		Extension:      "pdf",
		ManualCategory: "문서",
	})
	require.Equal(t, "문서", got.Category)
	assert.InDelta(t, 1.0, got.Confidence, 1e-9)
	assert.Equal(t, TierRules, got.TierUsed)
}

func TestClassifyNonTextualExtensionStopsAtTier1(t *testing.T) {
	p := &Pipeline{rulesEngine: newRulesEngine(nil, map[string]string{"jpg": "데이터"})}
	got := p.Classify(context.Background(), Input{
		Filename:  "photo.jpg",
		Extension: "jpg",
	})
	assert.Equal(t, "데이터", got.Category)
	assert.Equal(t, TierRules, got.TierUsed)
}

func TestClassifyNoTextAvailableStopsAtTier1(t *testing.T) {
	p := &Pipeline{rulesEngine: newRulesEngine(nil, map[string]string{"pdf": "문서"})}
	got := p.Classify(context.Background(), Input{
		Filename:  "report.pdf",
		Extension: "pdf",
	})
	assert.Equal(t, "문서", got.Category)
	assert.Equal(t, TierRules, got.TierUsed)
}

func TestClassifyUnclassifiedThresholdConstant(t *testing.T) {
	assert.InDelta(t, 0.31, UnclassifiedThreshold, 1e-9)
}

func newRulesEngine(rs []store.Rule, extMap map[string]string) *rules.Engine {
	return rules.New(rs, extMap)
}
