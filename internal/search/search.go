// Package search harvests knowledge base sources from public reference APIs.
// It runs offline, from the CLI; the analysis pipeline never calls it.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/knowledge"
	"github.com/factchecker/veracity/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Client defines the interface for harvest providers.
type Client interface {
	// Search returns knowledge base sources related to the query.
	Search(ctx context.Context, query string, maxResults int) ([]knowledge.Source, error)

	// Name returns the source name.
	Name() string

	// Available returns whether this client is enabled.
	Available() bool
}

// Store persists harvested topics.
type Store interface {
	SaveTopic(ctx context.Context, topic knowledge.Topic) error
}

// Harvester queries every available client for a topic and merges the results.
type Harvester struct {
	clients    []Client
	limiter    *rate.Limiter
	maxResults int
	timeout    time.Duration
}

// NewHarvester creates a harvester. Requests across all clients share one
// limiter allowing requestsPerSecond.
func NewHarvester(requestsPerSecond float64, maxResults int, clients ...Client) *Harvester {
	// Filter to only available clients
	available := make([]Client, 0, len(clients))
	for _, c := range clients {
		if c.Available() {
			available = append(available, c)
		}
	}
	return &Harvester{
		clients:    available,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		maxResults: maxResults,
		timeout:    30 * time.Second,
	}
}

// NewHarvesterFromConfig wires the Wikipedia and PubMed clients from configuration.
func NewHarvesterFromConfig(cfg config.HarvestConfig) *Harvester {
	return NewHarvester(cfg.RequestsPerSecond, cfg.MaxResults,
		NewWikipediaClient(cfg.Wikipedia),
		NewPubMedClient(cfg.PubMed),
	)
}

// Result contains results from a single client.
type Result struct {
	Source  string
	Sources []knowledge.Source
	Error   error
}

// HasClients returns whether any clients are available.
func (h *Harvester) HasClients() bool {
	return len(h.clients) > 0
}

// Harvest searches all clients concurrently for topic. Client failures become
// warnings; sources are returned in client order with duplicate titles removed.
func (h *Harvester) Harvest(ctx context.Context, topic string) (knowledge.Topic, []models.Warning) {
	name := strings.ToLower(strings.TrimSpace(topic))
	result := knowledge.Topic{Name: name, Sources: []knowledge.Source{}}

	if len(h.clients) == 0 {
		return result, []models.Warning{{Source: "harvest", Message: "No harvest sources configured"}}
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make(chan Result, len(h.clients))
	for _, client := range h.clients {
		go func(c Client) {
			res := Result{Source: c.Name()}
			if err := h.limiter.Wait(ctx); err != nil {
				res.Error = fmt.Errorf("rate limiter: %w", err)
			} else {
				res.Sources, res.Error = c.Search(ctx, name, h.maxResults)
			}
			results <- res
		}(client)
	}

	byClient := make(map[string][]knowledge.Source, len(h.clients))
	var warnings []models.Warning
	for range h.clients {
		res := <-results
		if res.Error != nil {
			log.Warn().Str("source", res.Source).Err(res.Error).Msg("Harvest source failed")
			warnings = append(warnings, models.Warning{Source: res.Source, Message: res.Error.Error()})
			continue
		}
		byClient[res.Source] = res.Sources
	}

	seen := make(map[string]bool)
	for _, c := range h.clients {
		for _, src := range byClient[c.Name()] {
			if seen[src.Title] {
				continue
			}
			seen[src.Title] = true
			result.Sources = append(result.Sources, src)
		}
	}

	log.Info().Str("topic", name).Int("sources", len(result.Sources)).Int("warnings", len(warnings)).Msg("Harvest completed")
	return result, warnings
}

// HarvestInto harvests topic and saves it to store. A topic with no sources is
// not saved and is reported as an error.
func (h *Harvester) HarvestInto(ctx context.Context, store Store, topic string) (knowledge.Topic, []models.Warning, error) {
	t, warnings := h.Harvest(ctx, topic)
	if t.Name == "" {
		return t, warnings, fmt.Errorf("topic name is empty")
	}
	if len(t.Sources) == 0 {
		return t, warnings, fmt.Errorf("no sources found for topic %q", t.Name)
	}
	if err := store.SaveTopic(ctx, t); err != nil {
		return t, warnings, fmt.Errorf("failed to save topic: %w", err)
	}
	return t, warnings, nil
}
