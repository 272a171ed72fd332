package verify

import (
	"context"

	"github.com/factchecker/veracity/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	assertiveBoost        = 0.2
	consistencyBase       = 0.7
	consistencySingle     = 0.8
	consistencyPenalty    = 0.2
	consistencyFloor      = 0.1
	consistencyOverlapMin = 0.5
)

// SemanticAnalyzer scores (claim, excerpt) pairs with lexical heuristics.
type SemanticAnalyzer struct {
	sampler Sampler
	workers int
}

// NewSemanticAnalyzer creates a new semantic analyzer.
func NewSemanticAnalyzer(sampler Sampler, workers int) *SemanticAnalyzer {
	return &SemanticAnalyzer{sampler: sampler, workers: workers}
}

type pairScores struct {
	entailment    []float64
	contradiction []float64
	neutral       []float64
}

// Analyze scores every source in every group against its claim and computes the
// text-level multi-hop flag and logical consistency.
func (a *SemanticAnalyzer) Analyze(ctx context.Context, text string, groups []models.EvidenceGroup) (models.SemanticAnalysis, error) {
	perGroup := make([]pairScores, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, group := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ps := pairScores{
				entailment:    make([]float64, len(group.Sources)),
				contradiction: make([]float64, len(group.Sources)),
				neutral:       make([]float64, len(group.Sources)),
			}
			for j, src := range group.Sources {
				e := Entailment(group.ClaimText, src.Excerpt)
				c := a.Contradiction(group.ClaimText, src.Excerpt)
				ps.entailment[j] = e
				ps.contradiction[j] = c
				ps.neutral[j] = 1 - e - c
			}
			perGroup[i] = ps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.SemanticAnalysis{}, err
	}

	result := models.SemanticAnalysis{
		EntailmentScores:    []float64{},
		ContradictionScores: []float64{},
		NeutralScores:       []float64{},
	}
	for _, ps := range perGroup {
		result.EntailmentScores = append(result.EntailmentScores, ps.entailment...)
		result.ContradictionScores = append(result.ContradictionScores, ps.contradiction...)
		result.NeutralScores = append(result.NeutralScores, ps.neutral...)
	}

	sentences := splitSentences(text)
	result.RequiresMultiHop = len(sentences) > 2 && causalKeywords.Matches(text)
	result.SemanticSimilarity = mean(result.EntailmentScores)
	result.LogicalConsistency = LogicalConsistency(sentences)

	return result, nil
}

// Entailment is the token overlap between claim and excerpt, boosted when the
// excerpt uses an assertive verb, capped at 1.
func Entailment(claim, excerpt string) float64 {
	base := overlapRatio(tokenize(claim), tokenize(excerpt))
	if assertiveKeywords.Matches(excerpt) {
		base += assertiveBoost
	}
	return min(base, 1.0)
}

// Contradiction draws from [0.3,0.7) when the excerpt contains a negation or
// denial, otherwise from [0,0.2).
func (a *SemanticAnalyzer) Contradiction(claim, excerpt string) float64 {
	key := "contradiction:" + claim + "\x00" + excerpt
	if contradictionKeywords.Matches(excerpt) {
		return sampleRange(a.sampler, key, 0.3, 0.7)
	}
	return sampleRange(a.sampler, key, 0, 0.2)
}

// LogicalConsistency penalizes adjacent sentences that overlap heavily while
// only one of them is negated.
func LogicalConsistency(sentences []string) float64 {
	if len(sentences) < 2 {
		return consistencySingle
	}

	score := consistencyBase
	for i := 0; i < len(sentences)-1; i++ {
		a, b := sentences[i], sentences[i+1]
		if negationKeywords.Matches(a) == negationKeywords.Matches(b) {
			continue
		}
		if overlapRatio(tokenize(a), tokenize(b)) > consistencyOverlapMin {
			score -= consistencyPenalty
		}
	}
	return max(consistencyFloor, score)
}
