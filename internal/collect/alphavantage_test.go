package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const alphaVantageFixture = `{
	"feed": [
		{
			"title": "Tech earnings beat expectations",
			"url": "http://example.com/tech",
			"time_published": "20260830T093000",
			"authors": ["Alex Smith", "Sam Lee"],
			"summary": "Quarterly results came in above estimates.",
			"banner_image": "http://example.com/tech.jpg",
			"source": "Benzinga",
			"overall_sentiment_score": 0.5
		},
		{
			"title": "Bank shares slide on loan losses",
			"url": "http://example.com/bank",
			"time_published": "20260830T094500",
			"authors": [],
			"summary": "Provisions for bad loans weighed on the sector.",
			"source": "Reuters",
			"overall_sentiment_score": -0.5
		},
		{
			"title": "Oil trades flat ahead of data",
			"url": "http://example.com/oil",
			"time_published": "20260830T100000",
			"summary": "Crude held in a narrow range.",
			"source": "MarketWatch",
			"overall_sentiment_score": 0.1
		},
		{
			"title": "Unscored briefing",
			"url": "http://example.com/briefing",
			"time_published": "20260830T101500",
			"summary": "A short market note.",
			"source": ""
		}
	]
}`

func newTestAlphaVantageClient(srv *httptest.Server) *AlphaVantageClient {
	return &AlphaVantageClient{
		apiKey:  "test-key",
		topics:  "financial_markets",
		baseURL: srv.URL,
		client:  srv.Client(),
	}
}

func TestAlphaVantageFetchAttachesProviderSentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "NEWS_SENTIMENT" {
			t.Errorf("expected function=NEWS_SENTIMENT, got %q", got)
		}
		if got := r.URL.Query().Get("topics"); got != "financial_markets" {
			t.Errorf("expected configured topics, got %q", got)
		}
		if got := r.URL.Query().Get("sort"); got != "LATEST" {
			t.Errorf("expected sort=LATEST, got %q", got)
		}
		w.Write([]byte(alphaVantageFixture))
	}))
	defer srv.Close()

	articles := newTestAlphaVantageClient(srv).Fetch(context.Background())
	if len(articles) != 4 {
		t.Fatalf("expected 4 articles, got %d", len(articles))
	}

	cases := []struct {
		url   string
		label string
	}{
		{"http://example.com/tech", "positive"},
		{"http://example.com/bank", "negative"},
		{"http://example.com/oil", "neutral"},
	}
	for i, c := range cases {
		a := articles[i]
		if a.URL != c.url {
			t.Fatalf("position %d: expected %q, got %q", i, c.url, a.URL)
		}
		if a.Sentiment == nil {
			t.Fatalf("%s: expected sentiment attached", c.url)
		}
		if a.Sentiment.Label != c.label {
			t.Errorf("%s: expected label %q, got %q", c.url, c.label, a.Sentiment.Label)
		}
	}

	if articles[3].Sentiment != nil {
		t.Error("expected nil sentiment when the provider omits the score")
	}
}

func TestAlphaVantageFieldMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(alphaVantageFixture))
	}))
	defer srv.Close()

	articles := newTestAlphaVantageClient(srv).Fetch(context.Background())
	first := articles[0]
	if first.Author != "Alex Smith, Sam Lee" {
		t.Errorf("expected joined authors, got %q", first.Author)
	}
	if first.PublishedAt != "20260830T093000" {
		t.Errorf("expected provider timestamp preserved, got %q", first.PublishedAt)
	}
	if first.Source.ID != "alphavantage" || first.Source.Name != "Benzinga" {
		t.Errorf("unexpected source %+v", first.Source)
	}
	if first.Content != first.Description {
		t.Error("expected summary used for both content and description")
	}

	if articles[3].Source.Name != "Alpha Vantage" {
		t.Errorf("expected default source name, got %q", articles[3].Source.Name)
	}
}

func TestClassifyProviderScore(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.26, "positive"},
		{0.25, "neutral"},
		{0.0, "neutral"},
		{-0.25, "neutral"},
		{-0.26, "negative"},
	}
	for _, c := range cases {
		if got := classifyProviderScore(c.score); got != c.want {
			t.Errorf("classifyProviderScore(%v) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestAlphaVantageMissingKeySkips(t *testing.T) {
	c := &AlphaVantageClient{apiKey: "", baseURL: "http://unused", client: http.DefaultClient}
	if articles := c.Fetch(context.Background()); articles != nil {
		t.Errorf("expected nil without an API key, got %d articles", len(articles))
	}
}

func TestAlphaVantageHTTPErrorReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if articles := newTestAlphaVantageClient(srv).Fetch(context.Background()); articles != nil {
		t.Errorf("expected nil on HTTP error, got %d articles", len(articles))
	}
}
