package embed

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// loadFeedbackLocked overlays any persisted prototype corrections onto
// the in-memory map; a missing or unreadable file is silently ignored,
// matching tier2_embedding.py's _load_feedback_to_embeddings.
func (p *Provider) loadFeedbackLocked() {
	data, err := os.ReadFile(p.feedbackPath)
	if err != nil {
		return
	}
	var saved map[string][]float32
	if err := json.Unmarshal(data, &saved); err != nil {
		p.log.Warn().Err(err).Msg("feedback embeddings file is corrupt, ignoring")
		return
	}
	applied := 0
	for category, vec := range saved {
		if _, ok := p.prototypes[category]; ok {
			p.prototypes[category] = vec
			applied++
		}
	}
	p.log.Info().Int("categories", applied).Msg("loaded feedback embeddings")
}

// saveFeedbackLocked persists the full prototype set so a correction
// survives a restart.
func (p *Provider) saveFeedbackLocked() error {
	if err := os.MkdirAll(filepath.Dir(p.feedbackPath), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(p.prototypes)
	if err != nil {
		return err
	}
	return os.WriteFile(p.feedbackPath, data, 0o644)
}
