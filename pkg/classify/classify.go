// Package classify runs the three-tier classification ensemble: rules
// always run, the embedding tier runs whenever any text is available,
// and the LLM tier runs whenever a provider is configured — every tier
// that can run, does, and the best-scoring result wins.
package classify

import (
	"context"
	"strings"

	"github.com/KimHands/clasp/pkg/builtin"
	"github.com/KimHands/clasp/pkg/embed"
	"github.com/KimHands/clasp/pkg/llm"
	"github.com/KimHands/clasp/pkg/rules"
)

// UnclassifiedThreshold is the floor a final confidence score must clear
// before a scan reports the file as classified rather than unclassified.
const UnclassifiedThreshold = 0.31

// TierUsed records which tier ultimately supplied the winning result.
type TierUsed int

const (
	TierRules TierUsed = 1 + iota
	TierEmbedding
	TierLLM
)

// Input bundles everything the ensemble needs about one file.
type Input struct {
	FilePath            string
	Filename            string
	Extension           string
	ExtractedText       string
	CoverText           string
	ManualCategory      string
	CustomCategoryNames []string
}

// Result is the ensemble's final verdict.
type Result struct {
	Category   string
	Tag        string
	Confidence float32
	TierUsed   TierUsed
}

// Pipeline wires the three tiers together for one scan pass.
type Pipeline struct {
	rulesEngine *rules.Engine
	embedder    *embed.Provider
	llmClient   *llm.Classifier
}

// New builds a Pipeline from already-constructed tier engines.
func New(rulesEngine *rules.Engine, embedder *embed.Provider, llmClient *llm.Classifier) *Pipeline {
	return &Pipeline{rulesEngine: rulesEngine, embedder: embedder, llmClient: llmClient}
}

// Classify runs every applicable tier and returns the best result,
// matching pipeline.py's classify() precedence exactly.
func (p *Pipeline) Classify(ctx context.Context, in Input) Result {
	t1 := p.rulesEngine.Classify(rules.Input{
		FilePath:       in.FilePath,
		Filename:       in.Filename,
		Extension:      in.Extension,
		ManualCategory: in.ManualCategory,
		ExtractedText:  in.ExtractedText,
	})
	best := Result{Category: t1.Category, Tag: t1.Tag, Confidence: t1.Confidence, TierUsed: TierRules}

	if in.ManualCategory != "" {
		return best
	}

	t2Input := in.ExtractedText
	if t2Input == "" {
		t2Input = in.CoverText
	}

	ext := extLower(in.Extension)
	if t2Input == "" || (builtin.NonTextExtensions[ext] && in.ExtractedText == "") {
		return best
	}

	t2Category, t2Score, _, err := p.embedder.ClassifyText(ctx, t2Input)
	if err != nil {
		return best
	}

	switch {
	case t1.Category != "" && t2Category != "" && t1.Category == t2Category:
		boosted := t1.Confidence + t2Score
		boosted = boosted/2 + 0.10
		if boosted > 1 {
			boosted = 1
		}
		tag, ok, _ := p.embedder.InferTag(ctx, t2Input, t1.Category, embed.DefaultTagThreshold)
		if !ok {
			tag = t1.Tag
		}
		best = Result{Category: t1.Category, Tag: tag, Confidence: boosted, TierUsed: TierEmbedding}

	case t2Category != "" && t2Score > t1.Confidence:
		tag, ok, _ := p.embedder.InferTag(ctx, t2Input, t2Category, embed.DefaultTagThreshold)
		if !ok {
			tag = t1.Tag
		}
		best = Result{Category: t2Category, Tag: tag, Confidence: t2Score, TierUsed: TierEmbedding}

	default:
		tagCategory := t1.Category
		if tagCategory == "" {
			tagCategory = t2Category
		}
		tag := t1.Tag
		if tagCategory != "" {
			if inferred, ok, _ := p.embedder.InferTag(ctx, t2Input, tagCategory, embed.DefaultTagThreshold); ok {
				tag = inferred
			}
		}
		if tag == t1.Tag && t2Category != "" && t2Category != tagCategory {
			if inferred, ok, _ := p.embedder.InferTag(ctx, t2Input, t2Category, embed.DefaultTagThreshold); ok {
				tag = inferred
			}
		}
		best = Result{Category: t1.Category, Tag: tag, Confidence: t1.Confidence, TierUsed: TierRules}
	}

	if p.llmClient != nil && p.llmClient.IsAvailable() {
		t3 := p.llmClient.Classify(ctx, t2Input, in.Filename, in.CustomCategoryNames)
		if t3.Category != "" && t3.Confidence > best.Confidence {
			tag := t3.Tag
			if tag == "" {
				if inferred, ok, _ := p.embedder.InferTag(ctx, t2Input, t3.Category, embed.DefaultTagThreshold); ok {
					tag = inferred
				}
			}
			best = Result{Category: t3.Category, Tag: tag, Confidence: t3.Confidence, TierUsed: TierLLM}
		}
	}

	return best
}

func extLower(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return ext
}
