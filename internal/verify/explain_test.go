package verify

import (
	"testing"

	"github.com/factchecker/veracity/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	assert.Equal(t, summaries[models.LikelyTrue], Summary(models.LikelyTrue))
	assert.Equal(t, "Unable to classify this claim.", Summary(models.Classification("mystery")))
	for c := range summaries {
		assert.NotEmpty(t, Summary(c))
	}
}

func TestBreakdown_TopSourcesDoNotMutateInput(t *testing.T) {
	group := models.EvidenceGroup{
		ClaimID: "Vaccines are safe...",
		Sources: []models.EvidenceSource{
			{Title: "Low", Credibility: 0.5, Supports: true},
			{Title: "High", Credibility: 0.9, Supports: false},
			{Title: "Mid", Credibility: 0.7, Supports: true},
		},
	}

	out := Breakdown([]models.EvidenceGroup{group})

	require.Len(t, out, 1)
	b := out[0]
	assert.Equal(t, "Vaccines are safe...", b.ClaimText)
	assert.Equal(t, 2, b.SupportingSources)
	assert.Equal(t, 1, b.ContradictingSources)
	assert.InDelta(t, 0.7, b.AverageCredibility, 1e-9)
	require.Len(t, b.TopSources, 2)
	assert.Equal(t, "High", b.TopSources[0].Title)
	assert.Equal(t, "Mid", b.TopSources[1].Title)

	assert.Equal(t, "Low", group.Sources[0].Title)
	assert.Equal(t, "High", group.Sources[1].Title)
}

func TestBreakdown_SmallAndEmptyGroups(t *testing.T) {
	out := Breakdown([]models.EvidenceGroup{
		{ClaimID: "a...", Sources: []models.EvidenceSource{{Title: "Only", Credibility: 0.6, Supports: true}}},
		{ClaimID: "b..."},
	})

	require.Len(t, out, 2)
	assert.Len(t, out[0].TopSources, 1)
	assert.Empty(t, out[1].TopSources)
	assert.Equal(t, 0.0, out[1].AverageCredibility)

	assert.NotNil(t, Breakdown(nil))
}

func TestGenerate_ReasoningAndCaveats(t *testing.T) {
	g := NewExplanationGenerator(0.3)
	sem := models.SemanticAnalysis{SemanticSimilarity: 0.2083, LogicalConsistency: 0.8, RequiresMultiHop: true}
	verdict := models.Verdict{
		Classification:      models.LikelyFalse,
		Score:               0.35,
		UncertaintyScore:    0.31,
		ConflictingEvidence: true,
		RequiresHumanReview: true,
	}

	exp := g.Generate(verdict, nil, sem)

	assert.Equal(t, summaries[models.LikelyFalse], exp.Summary)
	assert.Equal(t, []string{
		"Semantic similarity analysis: 20.8%",
		"Logical consistency check: 80.0%",
		"Multi-hop reasoning required - analyzed complex logical chains",
		"Final confidence score: 35.0%",
		"Uncertainty measure: 31.0%",
	}, exp.ReasoningSteps)
	assert.Equal(t, []string{
		"Analysis based on available evidence databases",
		"AI interpretation may not capture all nuances",
		"High uncertainty detected - human expert review recommended",
		"Conflicting evidence found across sources",
	}, exp.Limitations)
	assert.Equal(t, []string{"Submit for human expert review", "Seek additional authoritative sources"}, exp.NextSteps)
	assert.NotNil(t, exp.EvidenceBreakdown)
}

func TestGenerate_NextSteps(t *testing.T) {
	g := NewExplanationGenerator(0.3)

	exp := g.Generate(models.Verdict{Classification: models.InsufficientEvidence, UncertaintyScore: 0.25}, nil, models.SemanticAnalysis{})
	assert.Equal(t, []string{"Search for more recent evidence", "Consult domain-specific experts"}, exp.NextSteps)
	assert.Len(t, exp.Limitations, 2)
	assert.Len(t, exp.ReasoningSteps, 4)

	exp = g.Generate(models.Verdict{Classification: models.VerifiedTrue, UncertaintyScore: 0.1}, nil, models.SemanticAnalysis{})
	assert.Equal(t, []string{"Monitor for new contradicting evidence", "Periodic re-evaluation recommended"}, exp.NextSteps)
}
