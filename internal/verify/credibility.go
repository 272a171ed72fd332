package verify

import "github.com/factchecker/veracity/internal/models"

// CredibilityAssessor aggregates source credibility and assigns authority tiers.
type CredibilityAssessor struct{}

// NewCredibilityAssessor creates a new credibility assessor.
func NewCredibilityAssessor() *CredibilityAssessor {
	return &CredibilityAssessor{}
}

// Assess walks every source across all groups. SourceTypes and AuthorityScores
// are aligned with the flattened source order.
func (c *CredibilityAssessor) Assess(groups []models.EvidenceGroup) models.CredibilityAssessment {
	result := models.CredibilityAssessment{
		SourceTypes:     []models.SourceTier{},
		AuthorityScores: []float64{},
	}

	for _, group := range groups {
		for _, src := range group.Sources {
			result.AuthorityScores = append(result.AuthorityScores, src.Credibility)
			result.SourceTypes = append(result.SourceTypes, ClassifyTier(src.Title))
		}
	}

	result.AverageCredibility = mean(result.AuthorityScores)
	return result
}
