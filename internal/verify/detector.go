// Package verify implements the fact-checking pipeline: claim detection, evidence
// retrieval, semantic scoring, credibility assessment, verdict classification and
// explanation, plus the auxiliary bias and temporal assessors.
package verify

import (
	"sort"
	"unicode/utf8"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/models"
)

// ClaimDetector selects checkworthy sentences from text.
type ClaimDetector struct {
	maxClaims         int
	minSentenceLength int
	sampler           Sampler
}

// NewClaimDetector creates a new claim detector.
func NewClaimDetector(cfg config.PipelineConfig, sampler Sampler) *ClaimDetector {
	return &ClaimDetector{
		maxClaims:         cfg.MaxClaims,
		minSentenceLength: cfg.MinSentenceLength,
		sampler:           sampler,
	}
}

// Detect returns up to maxClaims checkworthy claims ordered by descending priority.
// Sentences with equal priority keep their order in the text.
func (d *ClaimDetector) Detect(text string) []models.Claim {
	claims := []models.Claim{}

	for _, sentence := range splitSentences(text) {
		if !d.IsCheckworthy(sentence) {
			continue
		}
		claims = append(claims, models.Claim{
			Text:       sentence,
			Confidence: sampleRange(d.sampler, "confidence:"+sentence, 0.7, 1.0),
			Category:   Categorize(sentence),
			Priority:   Priority(sentence),
		})
	}

	sort.SliceStable(claims, func(i, j int) bool {
		return claims[i].Priority > claims[j].Priority
	})

	if len(claims) > d.maxClaims {
		claims = claims[:d.maxClaims]
	}
	return claims
}

// IsCheckworthy reports whether a sentence is long enough and uses a factual or reporting register.
func (d *ClaimDetector) IsCheckworthy(sentence string) bool {
	if utf8.RuneCountInString(sentence) <= d.minSentenceLength {
		return false
	}
	return factualKeywords.Matches(sentence) || reportingKeywords.Matches(sentence)
}

// Priority scores a sentence from urgency, evidentiary and risk cues, capped at 1.
func Priority(sentence string) float64 {
	p := basePriority
	for _, rule := range priorityRules {
		if rule.Keywords.Matches(sentence) {
			p += rule.Boost
		}
	}
	return min(p, 1.0)
}
