package verify

import (
	"math"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/models"
)

// VerdictClassifier fuses semantic and credibility scores into a verdict.
type VerdictClassifier struct {
	cfg config.ScoringConfig
}

// NewVerdictClassifier creates a new verdict classifier.
func NewVerdictClassifier(cfg config.ScoringConfig) *VerdictClassifier {
	return &VerdictClassifier{cfg: cfg}
}

// Classify computes the fused score, uncertainty, bucket and review flag.
func (v *VerdictClassifier) Classify(groups []models.EvidenceGroup, sem models.SemanticAnalysis, cred models.CredibilityAssessment) models.Verdict {
	w := v.cfg.Weights
	score := clamp01(w.Semantic*sem.SemanticSimilarity +
		w.Credibility*cred.AverageCredibility +
		w.Consistency*sem.LogicalConsistency)

	variance := EvidenceVariance(groups)
	semanticUncertainty := 1 - 2*math.Abs(sem.SemanticSimilarity-0.5)
	uncertainty := clamp01((variance + semanticUncertainty) / 2)

	conflicting := false
	count := 0
	for _, group := range groups {
		for _, src := range group.Sources {
			count++
			if !src.Supports {
				conflicting = true
			}
		}
	}

	classification, interval := v.Bucket(score, uncertainty)

	return models.Verdict{
		Classification:      classification,
		Score:               score,
		UncertaintyScore:    uncertainty,
		EvidenceVariance:    variance,
		ConfidenceInterval:  interval,
		ConflictingEvidence: conflicting,
		EvidenceCount:       count,
		RequiresHumanReview: v.RequiresHumanReview(uncertainty, conflicting),
	}
}

// Bucket applies the decision table in order; the first matching row wins and
// the final row catches everything else.
func (v *VerdictClassifier) Bucket(score, uncertainty float64) (models.Classification, models.ConfidenceInterval) {
	t, u, iv := v.cfg.Thresholds, v.cfg.Uncertainty, v.cfg.Intervals

	var class models.Classification
	var width float64
	switch {
	case score >= t.VerifiedTrue && uncertainty < u.Strict:
		class, width = models.VerifiedTrue, iv.Narrow
	case score >= t.LikelyTrue && uncertainty < u.Moderate:
		class, width = models.LikelyTrue, iv.Medium
	case score <= t.LikelyFalse && uncertainty < u.Moderate:
		class, width = models.LikelyFalse, iv.Medium
	case score <= t.VerifiedFalse && uncertainty < u.Strict:
		class, width = models.VerifiedFalse, iv.Narrow
	default:
		class, width = models.InsufficientEvidence, iv.Wide
	}

	return class, models.ConfidenceInterval{
		Low:  clamp01(score - width),
		High: clamp01(score + width),
	}
}

// RequiresHumanReview gates review on uncertainty above the review threshold or any conflicting source.
func (v *VerdictClassifier) RequiresHumanReview(uncertainty float64, conflicting bool) bool {
	return uncertainty > v.cfg.Uncertainty.Review || conflicting
}

// EvidenceVariance is the population standard deviation of source credibility,
// or 1 when there are no sources at all.
func EvidenceVariance(groups []models.EvidenceGroup) float64 {
	var scores []float64
	for _, group := range groups {
		for _, src := range group.Sources {
			scores = append(scores, src.Credibility)
		}
	}
	if len(scores) == 0 {
		return 1.0
	}

	m := mean(scores)
	var sum float64
	for _, s := range scores {
		sum += (s - m) * (s - m)
	}
	return math.Sqrt(sum / float64(len(scores)))
}
