package verify

import (
	"regexp"

	"github.com/factchecker/veracity/internal/models"
)

var timeReference = regexp.MustCompile(`(?i)\b(?:20\d{2}|\d{1,2}/\d{1,2}/\d{4}|today|yesterday|recently)\b`)

const noTimeReferenceRecency = 0.3

// BiasAssessor produces bias proxies. Political and cultural bias and
// perspective balance are sampled stand-ins for a classifier.
type BiasAssessor struct {
	sampler Sampler
}

// NewBiasAssessor creates a new bias assessor.
func NewBiasAssessor(sampler Sampler) *BiasAssessor {
	return &BiasAssessor{sampler: sampler}
}

// Assess scores text and its evidence groups.
func (b *BiasAssessor) Assess(text string, groups []models.EvidenceGroup) models.BiasMetrics {
	return models.BiasMetrics{
		PoliticalBias:      sampleRange(b.sampler, "bias.political:"+text, 0, 0.3),
		CulturalBias:       sampleRange(b.sampler, "bias.cultural:"+text, 0, 0.2),
		SourceDiversity:    min(float64(len(groups))/3, 1.0),
		PerspectiveBalance: sampleRange(b.sampler, "bias.balance:"+text, 0.6, 1.0),
	}
}

// TemporalAssessor extracts time references from text.
type TemporalAssessor struct {
	sampler Sampler
}

// NewTemporalAssessor creates a new temporal assessor.
func NewTemporalAssessor(sampler Sampler) *TemporalAssessor {
	return &TemporalAssessor{sampler: sampler}
}

// Assess finds years, numeric dates and relative day words. Recency is sampled
// from [0.6,1.0) when references exist and fixed at 0.3 otherwise.
func (t *TemporalAssessor) Assess(text string) models.TemporalAwareness {
	refs := timeReference.FindAllString(text, -1)
	if len(refs) == 0 {
		return models.TemporalAwareness{
			TimeReferences: []string{},
			RecencyScore:   noTimeReferenceRecency,
		}
	}
	return models.TemporalAwareness{
		HasTimeReferences: true,
		TimeReferences:    refs,
		RecencyScore:      sampleRange(t.sampler, "recency:"+text, 0.6, 1.0),
	}
}
