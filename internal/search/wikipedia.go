package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/knowledge"
	"github.com/rs/zerolog/log"
)

const userAgent = "Veracity/1.0 (Knowledge base harvester)"

// WikipediaClient harvests article introductions from the MediaWiki API.
type WikipediaClient struct {
	httpClient  *http.Client
	baseURL     string
	credibility float64
	enabled     bool
}

// NewWikipediaClient creates a new Wikipedia client.
func NewWikipediaClient(cfg config.SourceConfig) *WikipediaClient {
	return &WikipediaClient{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     cfg.URL,
		credibility: cfg.Credibility,
		enabled:     cfg.Enabled,
	}
}

// Name returns the source name.
func (c *WikipediaClient) Name() string {
	return "Wikipedia"
}

// Available returns whether the client is enabled. Wikipedia requires no API key.
func (c *WikipediaClient) Available() bool {
	return c.enabled && c.baseURL != ""
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			PageID  int    `json:"pageid"`
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

type wikiExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Search finds pages for query and returns one source per page, using the
// page introduction as the excerpt and falling back to the search snippet.
func (c *WikipediaClient) Search(ctx context.Context, query string, maxResults int) ([]knowledge.Source, error) {
	log.Debug().Str("query", query).Msg("Wikipedia: Searching")

	searchURL := fmt.Sprintf("%s?action=query&list=search&srsearch=%s&format=json&srlimit=%d",
		c.baseURL, url.QueryEscape(query), maxResults)

	var searchData wikiSearchResponse
	if err := c.getJSON(ctx, searchURL, &searchData); err != nil {
		return nil, fmt.Errorf("Wikipedia search failed: %w", err)
	}

	if len(searchData.Query.Search) == 0 {
		return nil, nil
	}

	pageIDs := make([]string, 0, len(searchData.Query.Search))
	for _, result := range searchData.Query.Search {
		pageIDs = append(pageIDs, strconv.Itoa(result.PageID))
	}

	extractURL := fmt.Sprintf("%s?action=query&prop=extracts&exintro=true&explaintext=true&pageids=%s&format=json",
		c.baseURL, url.QueryEscape(strings.Join(pageIDs, "|")))

	var extractData wikiExtractResponse
	if err := c.getJSON(ctx, extractURL, &extractData); err != nil {
		return nil, fmt.Errorf("Wikipedia extract failed: %w", err)
	}

	// Keep search ranking order; the extract response is keyed by page ID.
	sources := make([]knowledge.Source, 0, len(searchData.Query.Search))
	for _, result := range searchData.Query.Search {
		text := extractData.Query.Pages[strconv.Itoa(result.PageID)].Extract
		if text == "" {
			text = result.Snippet
		}
		text = excerpt(text)
		if text == "" {
			continue
		}
		sources = append(sources, knowledge.Source{
			Title:       fmt.Sprintf("Wikipedia: %s", plainText(result.Title)),
			Credibility: c.credibility,
			Supports:    true,
			Excerpt:     text,
		})
	}

	log.Debug().Int("count", len(sources)).Msg("Wikipedia: Search completed")
	return sources, nil
}

func (c *WikipediaClient) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
