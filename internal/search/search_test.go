package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

func newWikipediaServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		switch {
		case q.Get("list") == "search":
			assert.Equal(t, "climate change", q.Get("srsearch"))
			fmt.Fprint(w, `{"query":{"search":[
				{"pageid":2,"title":"Global warming","snippet":"<span class=\"searchmatch\">Climate</span> change &amp; warming"},
				{"pageid":1,"title":"Climate change","snippet":"ignored"},
				{"pageid":3,"title":"Empty page","snippet":""}
			]}}`)
		case q.Get("prop") == "extracts":
			assert.Equal(t, "2|1|3", q.Get("pageids"))
			fmt.Fprint(w, `{"query":{"pages":{
				"1":{"title":"Climate change","extract":"Climate change is the long-term shift in temperatures."},
				"2":{"title":"Global warming","extract":""},
				"3":{"title":"Empty page","extract":""}
			}}}`)
		default:
			http.Error(w, "unexpected request", http.StatusBadRequest)
		}
	}))
}

func TestWikipediaClient_Search(t *testing.T) {
	srv := newWikipediaServer(t)
	defer srv.Close()

	c := NewWikipediaClient(config.SourceConfig{Enabled: true, Credibility: 0.7, URL: srv.URL})
	sources, err := c.Search(context.Background(), "climate change", 3)
	require.NoError(t, err)

	assert.Equal(t, []knowledge.Source{
		{Title: "Wikipedia: Global warming", Credibility: 0.7, Supports: true, Excerpt: "Climate change & warming"},
		{Title: "Wikipedia: Climate change", Credibility: 0.7, Supports: true, Excerpt: "Climate change is the long-term shift in temperatures."},
	}, sources)
}

func TestWikipediaClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewWikipediaClient(config.SourceConfig{Enabled: true, Credibility: 0.7, URL: srv.URL})
	_, err := c.Search(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func newPubMedServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/esearch.fcgi":
			assert.Equal(t, "vaccine", r.URL.Query().Get("term"))
			assert.Equal(t, "2", r.URL.Query().Get("retmax"))
			fmt.Fprint(w, `{"esearchresult":{"idlist":["111","222","333"]}}`)
		case "/esummary.fcgi":
			assert.Equal(t, "111,222,333", r.URL.Query().Get("id"))
			fmt.Fprint(w, `{"result":{
				"uids":["111","222","333"],
				"111":{"title":"mRNA vaccine efficacy in adults.","pubdate":"2023 Mar 4","source":"Lancet"},
				"222":{"title":"Safety of <i>COVID-19</i> vaccines","pubdate":"","source":""},
				"333":{"title":"","pubdate":"2020","source":"BMJ"}
			}}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestPubMedClient_Search(t *testing.T) {
	srv := newPubMedServer(t)
	defer srv.Close()

	c := NewPubMedClient(config.SourceConfig{Enabled: true, Credibility: 0.85, URL: srv.URL + "/"})
	sources, err := c.Search(context.Background(), "vaccine", 2)
	require.NoError(t, err)

	require.Len(t, sources, 2)
	assert.Equal(t, "mRNA vaccine efficacy in adults (Lancet, 2023)", sources[0].Title)
	assert.Equal(t, "mRNA vaccine efficacy in adults.", sources[0].Excerpt)
	assert.Equal(t, 0.85, sources[0].Credibility)
	assert.True(t, sources[0].Supports)
	assert.Equal(t, "Safety of COVID-19 vaccines", sources[1].Title)
}

func TestArticleTitle(t *testing.T) {
	assert.Equal(t, "T (J, 2021)", articleTitle("T.", "J", "2021 Jan"))
	assert.Equal(t, "T (2021)", articleTitle("T", "", "Winter 2021"))
	assert.Equal(t, "T (J)", articleTitle("T", "J", "n.d."))
	assert.Equal(t, "T", articleTitle("T", "", ""))
}

func TestPlainTextAndExcerpt(t *testing.T) {
	assert.Equal(t, "a & b", plainText("  a &amp; <b>b</b> "))
	assert.Equal(t, "", plainText(""))

	long := strings.Repeat("word ", 50) + ". " + strings.Repeat("tail ", 40)
	got := excerpt(long)
	assert.True(t, strings.HasSuffix(got, "."), got)
	assert.LessOrEqual(t, len([]rune(got)), maxExcerptLength)

	noBreak := strings.Repeat("x", 400)
	assert.Equal(t, strings.Repeat("x", maxExcerptLength)+"...", excerpt(noBreak))
}

type fakeClient struct {
	name    string
	sources []knowledge.Source
	err     error
	enabled bool
}

func (f *fakeClient) Search(ctx context.Context, query string, maxResults int) ([]knowledge.Source, error) {
	return f.sources, f.err
}
func (f *fakeClient) Name() string    { return f.name }
func (f *fakeClient) Available() bool { return f.enabled }

type memoryStore struct {
	mu     sync.Mutex
	topics []knowledge.Topic
	err    error
}

func (m *memoryStore) SaveTopic(ctx context.Context, topic knowledge.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.topics = append(m.topics, topic)
	return nil
}

func TestHarvester_MergesInClientOrderAndWarns(t *testing.T) {
	a := &fakeClient{name: "A", enabled: true, sources: []knowledge.Source{
		{Title: "Shared", Credibility: 0.7, Supports: true, Excerpt: "from a"},
		{Title: "A only", Credibility: 0.7, Supports: true, Excerpt: "a"},
	}}
	b := &fakeClient{name: "B", enabled: true, sources: []knowledge.Source{
		{Title: "Shared", Credibility: 0.9, Supports: true, Excerpt: "from b"},
		{Title: "B only", Credibility: 0.9, Supports: true, Excerpt: "b"},
	}}
	broken := &fakeClient{name: "Broken", enabled: true, err: errors.New("boom")}
	disabled := &fakeClient{name: "Off", enabled: false, sources: []knowledge.Source{{Title: "never"}}}

	h := NewHarvester(1000, 5, a, broken, disabled, b)
	topic, warnings := h.Harvest(context.Background(), "  Climate Change ")

	assert.Equal(t, "climate change", topic.Name)
	titles := make([]string, len(topic.Sources))
	for i, s := range topic.Sources {
		titles[i] = s.Title
	}
	assert.Equal(t, []string{"Shared", "A only", "B only"}, titles)
	assert.Equal(t, "from a", topic.Sources[0].Excerpt)

	require.Len(t, warnings, 1)
	assert.Equal(t, "Broken", warnings[0].Source)
	assert.Equal(t, "boom", warnings[0].Message)
}

func TestHarvester_NoClients(t *testing.T) {
	h := NewHarvester(1, 1, &fakeClient{name: "Off"})
	assert.False(t, h.HasClients())

	topic, warnings := h.Harvest(context.Background(), "x")
	assert.Empty(t, topic.Sources)
	require.Len(t, warnings, 1)
	assert.Equal(t, "harvest", warnings[0].Source)
}

func TestHarvester_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := NewHarvester(1, 5, &fakeClient{name: "A", enabled: true, sources: []knowledge.Source{{Title: "t"}}})
	topic, warnings := h.Harvest(ctx, "x")
	assert.Empty(t, topic.Sources)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "rate limiter")
}

func TestHarvestInto(t *testing.T) {
	src := knowledge.Source{Title: "T", Credibility: 0.8, Supports: true, Excerpt: "e"}
	h := NewHarvester(1000, 5, &fakeClient{name: "A", enabled: true, sources: []knowledge.Source{src}})

	store := &memoryStore{}
	topic, _, err := h.HarvestInto(context.Background(), store, "Inflation")
	require.NoError(t, err)
	assert.Equal(t, []knowledge.Topic{topic}, store.topics)

	_, _, err = h.HarvestInto(context.Background(), store, "   ")
	assert.Error(t, err)

	empty := NewHarvester(1000, 5, &fakeClient{name: "A", enabled: true})
	_, _, err = empty.HarvestInto(context.Background(), store, "nothing")
	assert.ErrorContains(t, err, "no sources found")

	failing := &memoryStore{err: errors.New("disk full")}
	_, _, err = h.HarvestInto(context.Background(), failing, "inflation")
	assert.ErrorContains(t, err, "disk full")
}

func TestNewHarvesterFromConfig_EndToEnd(t *testing.T) {
	wiki := newWikipediaServer(t)
	defer wiki.Close()

	cfg := config.DefaultConfig().Harvest
	cfg.Wikipedia.URL = wiki.URL
	cfg.PubMed.Enabled = false
	cfg.RequestsPerSecond = 100

	h := NewHarvesterFromConfig(cfg)
	topic, warnings := h.Harvest(context.Background(), "climate change")
	assert.Empty(t, warnings)
	assert.Len(t, topic.Sources, 2)

	kb, err := knowledge.New([]knowledge.Topic{topic})
	require.NoError(t, err)
	assert.Equal(t, []string{"climate change"}, kb.Topics())
}
