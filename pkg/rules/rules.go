// Package rules implements Tier-1 classification: manual override, then
// user-defined rules in priority order, then the built-in/custom
// extension map, then a best-effort year tag.
package rules

import (
	"context"
	"regexp"
	"strings"

	"github.com/KimHands/clasp/pkg/store"
)

// ManualConfidence, RuleConfidence, ExtensionConfidence are the fixed
// confidence scores Tier-1 reports per match kind (tier1_rule.py's run).
const (
	ManualConfidence    = 1.0
	RuleConfidence      = 0.85
	ExtensionConfidence = 0.70
)

// yearPattern pulls a plausible four-digit year out of a filename for
// the extension-map tag (e.g. "보고서_2023.pdf" → tag "문서_2023").
var yearPattern = regexp.MustCompile(`(20\d{2}|19\d{2})`)

// Result is Tier-1's classification for a single file.
type Result struct {
	Category   string
	Tag        string
	Confidence float32
}

// Input bundles what Tier-1 needs about one file.
type Input struct {
	FilePath       string
	Filename       string
	Extension      string // dotless, e.g. "pdf"
	ManualCategory string // non-empty short-circuits everything else
	ExtractedText  string // may be empty
}

// Engine holds the rule set and extension map snapshot for one pass; the
// scan orchestrator builds one per scan so every file in the batch sees
// a consistent rule/extension view.
type Engine struct {
	rules  []store.Rule
	extMap map[string]string // merged builtin+custom, builtin wins
}

// New builds an Engine directly from an already-loaded rule list and
// extension map, for callers that assemble these from something other
// than the store (tests, or a future non-SQLite rule source).
func New(rules []store.Rule, extMap map[string]string) *Engine {
	return &Engine{rules: rules, extMap: extMap}
}

// Load fetches the current rule list (priority ascending) and the merged
// extension map from the store.
func Load(ctx context.Context, s *store.Store) (*Engine, error) {
	ruleRows, err := s.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	extMap, err := s.MergedExtensionMap(ctx)
	if err != nil {
		return nil, err
	}
	return New(ruleRows, extMap), nil
}

// Classify applies manual override, then rules, then the extension map,
// in that order, returning the first match.
func (e *Engine) Classify(in Input) Result {
	if in.ManualCategory != "" {
		return Result{Category: in.ManualCategory, Confidence: ManualConfidence}
	}

	ext := strings.ToLower(strings.TrimPrefix(in.Extension, "."))
	for _, r := range e.rules {
		if matchRule(r, in.FilePath, in.Filename, ext, in.ExtractedText) {
			return Result{Category: r.FolderName, Confidence: RuleConfidence}
		}
	}

	if category, ok := e.extMap[ext]; ok {
		tag := ""
		if year := yearPattern.FindString(in.Filename); year != "" {
			tag = category + "_" + year
		}
		return Result{Category: category, Tag: tag, Confidence: ExtensionConfidence}
	}

	return Result{}
}

func matchRule(r store.Rule, filePath, filename, ext, extractedText string) bool {
	value := strings.ToLower(r.Value)
	switch r.Type {
	case store.RuleTypeExtension:
		return ext == value
	case store.RuleTypeDate:
		year := yearPattern.FindString(filename)
		return year != "" && year == r.Value
	case store.RuleTypeContent:
		if extractedText != "" {
			return strings.Contains(strings.ToLower(extractedText), value)
		}
		return strings.Contains(strings.ToLower(filename), value)
	default:
		return false
	}
}
