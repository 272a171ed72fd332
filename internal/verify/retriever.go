package verify

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/knowledge"
	"github.com/factchecker/veracity/internal/models"
	"golang.org/x/sync/errgroup"
)

var titleYear = regexp.MustCompile(`\b(20\d{2})\b`)

// EvidenceRetriever links claims to knowledge base topics and scores each source.
type EvidenceRetriever struct {
	kb             *knowledge.Base
	categoryTopics map[models.ClaimCategory]string
	referenceYear  int
	claimIDLength  int
	workers        int
}

// NewEvidenceRetriever creates a new evidence retriever. categoryTopics maps a
// claim category to the topic it falls back to when the claim text names no topic.
func NewEvidenceRetriever(kb *knowledge.Base, categoryTopics map[string]string, cfg config.PipelineConfig) *EvidenceRetriever {
	mapping := make(map[models.ClaimCategory]string, len(categoryTopics))
	for category, topic := range categoryTopics {
		mapping[models.ClaimCategory(category)] = strings.ToLower(topic)
	}
	return &EvidenceRetriever{
		kb:             kb,
		categoryTopics: mapping,
		referenceYear:  cfg.ReferenceYear,
		claimIDLength:  cfg.ClaimIDLength,
		workers:        cfg.Workers,
	}
}

// Retrieve returns one evidence group per claim that matches a topic, in claim order.
// Claims are processed concurrently; the knowledge base is only read.
func (r *EvidenceRetriever) Retrieve(ctx context.Context, claims []models.Claim) ([]models.EvidenceGroup, error) {
	found := make([]*models.EvidenceGroup, len(claims))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, claim := range claims {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if group, ok := r.retrieveOne(claim); ok {
				found[i] = &group
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	groups := []models.EvidenceGroup{}
	for _, group := range found {
		if group != nil {
			groups = append(groups, *group)
		}
	}
	return groups, nil
}

func (r *EvidenceRetriever) retrieveOne(claim models.Claim) (models.EvidenceGroup, bool) {
	topic, ok := r.MatchTopic(claim)
	if !ok {
		return models.EvidenceGroup{}, false
	}

	records, _ := r.kb.Sources(topic)
	sources := make([]models.EvidenceSource, len(records))
	for i, rec := range records {
		sources[i] = models.EvidenceSource{
			Title:          rec.Title,
			Credibility:    rec.Credibility,
			Supports:       rec.Supports,
			Excerpt:        rec.Excerpt,
			RelevanceScore: RelevanceScore(claim.Text, rec.Excerpt),
			TemporalScore:  TemporalScore(rec.Title, r.referenceYear),
		}
	}

	return models.EvidenceGroup{
		ClaimID:   truncate(claim.Text, r.claimIDLength) + "...",
		ClaimText: claim.Text,
		Topic:     topic,
		Sources:   sources,
	}, true
}

// MatchTopic scans topics in knowledge base order and returns the first one the
// claim names, or the one its category maps to.
func (r *EvidenceRetriever) MatchTopic(claim models.Claim) (string, bool) {
	text := strings.ToLower(claim.Text)
	mapped := r.categoryTopics[claim.Category]
	for _, topic := range r.kb.Topics() {
		if strings.Contains(text, topic) || topic == mapped {
			return topic, true
		}
	}
	return "", false
}

// RelevanceScore is the share of claim tokens that also occur in the excerpt.
func RelevanceScore(claim, excerpt string) float64 {
	claimTokens := tokenize(claim)
	if len(claimTokens) == 0 {
		return 0
	}
	return min(float64(sharedCount(claimTokens, tokenize(excerpt)))/float64(len(claimTokens)), 1.0)
}

// TemporalScore decays by 0.1 per year between the year in the title and
// referenceYear, floored at 0.1. Titles without a year score 0.5.
func TemporalScore(title string, referenceYear int) float64 {
	m := titleYear.FindStringSubmatch(title)
	if m == nil {
		return 0.5
	}
	year, _ := strconv.Atoi(m[1])
	return min(max(0.1, 1-0.1*float64(referenceYear-year)), 1.0)
}
