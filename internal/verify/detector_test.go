package verify

import (
	"testing"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const climateClaim = "Global temperatures have risen 1.1 degrees since pre-industrial times according to a new study."

func newTestDetector() *ClaimDetector {
	return NewClaimDetector(config.DefaultPipeline(), HashSampler{})
}

func TestDetect_ClimateClaim(t *testing.T) {
	claims := newTestDetector().Detect(climateClaim)

	require.Len(t, claims, 1)
	c := claims[0]
	assert.Equal(t, "Global temperatures have risen 1.1 degrees since pre-industrial times according to a new study", c.Text)
	assert.Equal(t, models.CategoryClimate, c.Category)
	assert.Equal(t, 1.0, c.Priority)
	assert.GreaterOrEqual(t, c.Confidence, 0.7)
	assert.Less(t, c.Confidence, 1.0)
}

func TestDetect_SortsAndTruncates(t *testing.T) {
	text := "According to the mayor the bridge will reopen in May. " +
		"A new study found that smoking is a harmful risk factor. " +
		"Research data shows the economy grew last quarter. " +
		"The statistics show unemployment fell sharply."

	claims := newTestDetector().Detect(text)

	require.Len(t, claims, 3)
	assert.Equal(t, "A new study found that smoking is a harmful risk factor", claims[0].Text)
	assert.Equal(t, 1.0, claims[0].Priority)
	assert.Equal(t, "Research data shows the economy grew last quarter", claims[1].Text)
	assert.InDelta(t, 0.7, claims[1].Priority, 1e-9)
	assert.Equal(t, models.CategoryEconomics, claims[1].Category)
	// equal priority keeps text order
	assert.Equal(t, "According to the mayor the bridge will reopen in May", claims[2].Text)

	for i := 1; i < len(claims); i++ {
		assert.GreaterOrEqual(t, claims[i-1].Priority, claims[i].Priority)
	}
}

func TestDetect_NoCheckworthySentences(t *testing.T) {
	d := newTestDetector()

	for _, text := range []string{"", "I like blue skies and quiet mornings.", "Data found. Study it."} {
		claims := d.Detect(text)
		assert.NotNil(t, claims, text)
		assert.Empty(t, claims, text)
	}
}

func TestIsCheckworthy(t *testing.T) {
	d := newTestDetector()

	assert.True(t, d.IsCheckworthy("The report states that costs doubled"))
	assert.False(t, d.IsCheckworthy("Research is fun")) // too short
	assert.False(t, d.IsCheckworthy("The weather was pleasant all week long"))
	assert.False(t, d.IsCheckworthy("The study is on now!")) // exactly at the limit
}

func TestPriority(t *testing.T) {
	tests := []struct {
		sentence string
		want     float64
	}{
		{"Plain sentence", 0.5},
		{"Breaking update", 0.8},
		{"Research shows", 0.7},
		{"A harmful side effect", 0.75},
		{"Latest research on death rates", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.sentence, func(t *testing.T) {
			assert.InDelta(t, tt.want, Priority(tt.sentence), 1e-9)
		})
	}
}

func TestDetect_ConfidenceIsReproducible(t *testing.T) {
	a := newTestDetector().Detect(climateClaim)
	b := newTestDetector().Detect(climateClaim)
	assert.Equal(t, a, b)
}

func TestDetect_ConfidenceUsesSampler(t *testing.T) {
	d := NewClaimDetector(config.DefaultPipeline(), SamplerFunc(func(string) float64 { return 0.5 }))
	claims := d.Detect(climateClaim)
	require.Len(t, claims, 1)
	assert.InDelta(t, 0.85, claims[0].Confidence, 1e-9)
}
