package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace", "   \n\t", nil},
		{"single without terminator", "Hello world", []string{"Hello world"}},
		{"runs of punctuation", "Really?! Yes... Fine.", []string{"Really", "Yes", "Fine"}},
		{"decimal point kept", "Temperatures rose 1.1 degrees. Then fell.", []string{"Temperatures rose 1.1 degrees", "Then fell"}},
		{"trailing number period", "The count was 42. Done", []string{"The count was 42", "Done"}},
		{"blank fragments dropped", "One. . Two!", []string{"One", "Two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSentences(tt.text))
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"global", "temperatures", "have", "risen", "1", "1", "c"}, tokenize("Global temperatures have risen 1.1°C"))
	assert.Equal(t, []string{"pre", "industrial"}, tokenize("  pre-industrial!! "))
	assert.Empty(t, tokenize("...!?"))
}

func TestOverlapRatio(t *testing.T) {
	assert.InDelta(t, 0.8, overlapRatio(tokenize("the vaccine is safe"), tokenize("the vaccine is not safe")), 1e-9)
	assert.Equal(t, 0.0, overlapRatio(nil, nil))
	assert.Equal(t, 0.0, overlapRatio([]string{"a"}, nil))
}

func TestSharedCount_CountsDuplicates(t *testing.T) {
	assert.Equal(t, 3, sharedCount([]string{"1", "1", "x", "y"}, []string{"1", "y"}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "°C", truncate("°C is a unit", 2))
}

func TestClampAndMean(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.25, clamp01(0.25))
	assert.Equal(t, 0.0, mean(nil))
	assert.InDelta(t, 2.0, mean([]float64{1, 2, 3}), 1e-9)
}
