package verify

import (
	"fmt"
	"sort"

	"github.com/factchecker/veracity/internal/models"
)

var summaries = map[models.Classification]string{
	models.VerifiedTrue:         "This claim is strongly supported by high-quality evidence from authoritative sources with high confidence.",
	models.LikelyTrue:           "This claim appears to be accurate based on available evidence, though some uncertainty remains.",
	models.LikelyFalse:          "This claim contradicts reliable evidence and appears to be false or misleading.",
	models.VerifiedFalse:        "This claim is definitively contradicted by authoritative evidence and is false.",
	models.InsufficientEvidence: "There is not enough reliable evidence to determine the accuracy of this claim.",
}

const topSourceCount = 2

// ExplanationGenerator renders a verdict as text.
type ExplanationGenerator struct {
	reviewThreshold float64
}

// NewExplanationGenerator creates a new explanation generator. reviewThreshold
// is the uncertainty above which a review caveat is added.
func NewExplanationGenerator(reviewThreshold float64) *ExplanationGenerator {
	return &ExplanationGenerator{reviewThreshold: reviewThreshold}
}

// Generate builds the explanation. The groups are not modified.
func (g *ExplanationGenerator) Generate(verdict models.Verdict, groups []models.EvidenceGroup, sem models.SemanticAnalysis) models.Explanation {
	return models.Explanation{
		Summary:           Summary(verdict.Classification),
		EvidenceBreakdown: Breakdown(groups),
		ReasoningSteps:    reasoningSteps(sem, verdict),
		Limitations:       g.limitations(verdict),
		NextSteps:         nextSteps(verdict),
	}
}

// Summary returns the templated summary for a classification.
func Summary(c models.Classification) string {
	if s, ok := summaries[c]; ok {
		return s
	}
	return "Unable to classify this claim."
}

// Breakdown summarizes each evidence group with its two most credible sources.
func Breakdown(groups []models.EvidenceGroup) []models.GroupBreakdown {
	out := make([]models.GroupBreakdown, 0, len(groups))
	for _, group := range groups {
		b := models.GroupBreakdown{ClaimText: group.ClaimID}

		credibility := make([]float64, 0, len(group.Sources))
		for _, src := range group.Sources {
			if src.Supports {
				b.SupportingSources++
			} else {
				b.ContradictingSources++
			}
			credibility = append(credibility, src.Credibility)
		}
		b.AverageCredibility = mean(credibility)

		ranked := make([]models.EvidenceSource, len(group.Sources))
		copy(ranked, group.Sources)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Credibility > ranked[j].Credibility
		})
		b.TopSources = ranked[:min(topSourceCount, len(ranked))]

		out = append(out, b)
	}
	return out
}

func reasoningSteps(sem models.SemanticAnalysis, verdict models.Verdict) []string {
	steps := []string{
		fmt.Sprintf("Semantic similarity analysis: %.1f%%", sem.SemanticSimilarity*100),
		fmt.Sprintf("Logical consistency check: %.1f%%", sem.LogicalConsistency*100),
	}
	if sem.RequiresMultiHop {
		steps = append(steps, "Multi-hop reasoning required - analyzed complex logical chains")
	}
	return append(steps,
		fmt.Sprintf("Final confidence score: %.1f%%", verdict.Score*100),
		fmt.Sprintf("Uncertainty measure: %.1f%%", verdict.UncertaintyScore*100),
	)
}

func (g *ExplanationGenerator) limitations(verdict models.Verdict) []string {
	limitations := []string{
		"Analysis based on available evidence databases",
		"AI interpretation may not capture all nuances",
	}
	if verdict.UncertaintyScore > g.reviewThreshold {
		limitations = append(limitations, "High uncertainty detected - human expert review recommended")
	}
	if verdict.ConflictingEvidence {
		limitations = append(limitations, "Conflicting evidence found across sources")
	}
	return limitations
}

func nextSteps(verdict models.Verdict) []string {
	switch {
	case verdict.RequiresHumanReview:
		return []string{"Submit for human expert review", "Seek additional authoritative sources"}
	case verdict.Classification == models.InsufficientEvidence:
		return []string{"Search for more recent evidence", "Consult domain-specific experts"}
	default:
		return []string{"Monitor for new contradicting evidence", "Periodic re-evaluation recommended"}
	}
}
