package main

import (
	"testing"

	"github.com/sereno/sereno/internal/config"
	"github.com/sereno/sereno/internal/domain/screening"
)

func TestNewScorerAppliesThresholds(t *testing.T) {
	cfg := &config.Config{ScoreSevereAt: 20, ScoreModerateAt: 12}

	scorer := newScorer(cfg)
	if scorer.SevereAt != 20 || scorer.ModerateAt != 12 {
		t.Errorf("thresholds = %d/%d, want 20/12", scorer.SevereAt, scorer.ModerateAt)
	}

	// Weights and recommendations stay at their defaults.
	if scorer.Weights["often"] != 3 || scorer.Weights["sometimes"] != 1 {
		t.Errorf("weights = %v", scorer.Weights)
	}
	if scorer.Classify(19) != screening.SeverityModerate {
		t.Errorf("Classify(19) = %q, want %q", scorer.Classify(19), screening.SeverityModerate)
	}
	if scorer.Classify(20) != screening.SeveritySevere {
		t.Errorf("Classify(20) = %q, want %q", scorer.Classify(20), screening.SeveritySevere)
	}
}
