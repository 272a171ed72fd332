package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/knowledge"
)

var pubYear = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// PubMedClient harvests article summaries from the NCBI E-utilities API.
type PubMedClient struct {
	httpClient  *http.Client
	baseURL     string
	credibility float64
	enabled     bool
}

// NewPubMedClient creates a new PubMed client.
func NewPubMedClient(cfg config.SourceConfig) *PubMedClient {
	return &PubMedClient{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     strings.TrimSuffix(cfg.URL, "/"),
		credibility: cfg.Credibility,
		enabled:     cfg.Enabled,
	}
}

// Name returns the source name.
func (c *PubMedClient) Name() string {
	return "PubMed"
}

// Available returns whether the client is enabled. Basic usage needs no API key.
func (c *PubMedClient) Available() bool {
	return c.enabled && c.baseURL != ""
}

type pubmedSearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedSummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type pubmedArticle struct {
	Title   string `json:"title"`
	PubDate string `json:"pubdate"`
	Source  string `json:"source"`
}

// Search returns one source per article. Titles carry the journal and year so
// the retriever can score recency.
func (c *PubMedClient) Search(ctx context.Context, query string, maxResults int) ([]knowledge.Source, error) {
	searchURL := fmt.Sprintf("%s/esearch.fcgi?db=pubmed&term=%s&retmax=%d&retmode=json",
		c.baseURL, url.QueryEscape(query), maxResults)

	var searchData pubmedSearchResponse
	if err := c.getJSON(ctx, searchURL, &searchData); err != nil {
		return nil, fmt.Errorf("PubMed search failed: %w", err)
	}

	if len(searchData.ESearchResult.IDList) == 0 {
		return nil, nil
	}

	summaryURL := fmt.Sprintf("%s/esummary.fcgi?db=pubmed&id=%s&retmode=json",
		c.baseURL, url.QueryEscape(strings.Join(searchData.ESearchResult.IDList, ",")))

	var summaryData pubmedSummaryResponse
	if err := c.getJSON(ctx, summaryURL, &summaryData); err != nil {
		return nil, fmt.Errorf("PubMed summary failed: %w", err)
	}

	var sources []knowledge.Source
	for _, pmid := range searchData.ESearchResult.IDList {
		raw, ok := summaryData.Result[pmid]
		if !ok {
			continue
		}
		// "result" also holds a "uids" array; only objects decode as articles.
		var article pubmedArticle
		if err := json.Unmarshal(raw, &article); err != nil {
			continue
		}
		title := plainText(article.Title)
		if title == "" {
			continue
		}

		sources = append(sources, knowledge.Source{
			Title:       articleTitle(title, article.Source, article.PubDate),
			Credibility: c.credibility,
			Supports:    true,
			Excerpt:     excerpt(title),
		})
	}

	return sources, nil
}

// articleTitle formats "Title (Journal, 2023)", omitting missing parts.
func articleTitle(title, journal, pubDate string) string {
	title = strings.TrimSuffix(title, ".")
	var meta []string
	if journal != "" {
		meta = append(meta, journal)
	}
	if year := pubYear.FindString(pubDate); year != "" {
		meta = append(meta, year)
	}
	if len(meta) == 0 {
		return title
	}
	return fmt.Sprintf("%s (%s)", title, strings.Join(meta, ", "))
}

func (c *PubMedClient) getJSON(ctx context.Context, rawURL string, v any) error {
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
