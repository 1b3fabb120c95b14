package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/syncodes/financial-news-aggregator/internal/config"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Business Feed</title>
    <item>
      <title>Stocks climb as inflation cools</title>
      <link>http://example.com/stocks</link>
      <description>&lt;p&gt;Major indices &lt;b&gt;rose&lt;/b&gt; on Friday.&lt;/p&gt;&lt;img src="http://example.com/chart.png"/&gt;</description>
      <pubDate>Sun, 30 Aug 2026 10:00:00 GMT</pubDate>
      <author>reporter@example.com</author>
    </item>
    <item>
      <title>Dollar weakens against the euro</title>
      <link>http://example.com/dollar</link>
      <description>Currency markets shifted overnight.</description>
    </item>
    <item>
      <title></title>
      <link>http://example.com/untitled</link>
    </item>
  </channel>
</rss>`

func newTestFeedFetcher(feeds []config.Feed) *FeedFetcher {
	return &FeedFetcher{
		feeds:   feeds,
		parser:  gofeed.NewParser(),
		limiter: rate.NewLimiter(rate.Inf, 1),
		timeout: 5 * time.Second,
	}
}

func TestFeedFetchMapsEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	f := newTestFeedFetcher([]config.Feed{{Name: "Test Feed", URL: srv.URL}})
	articles := f.Fetch(context.Background())
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles (untitled entry dropped), got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "Stocks climb as inflation cools" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.Source.ID != "test_feed" || first.Source.Name != "Test Feed" {
		t.Errorf("unexpected source %+v", first.Source)
	}
	if first.Content != "Major indices rose on Friday." {
		t.Errorf("expected markup stripped from content, got %q", first.Content)
	}
	if first.URLToImage != "http://example.com/chart.png" {
		t.Errorf("expected embedded image extracted, got %q", first.URLToImage)
	}
	if first.PublishedAt != "Sun, 30 Aug 2026 10:00:00 GMT" {
		t.Errorf("expected feed date preserved, got %q", first.PublishedAt)
	}
	if first.Category != "business" {
		t.Errorf("unexpected category %q", first.Category)
	}
}

func TestFeedFetchCapsEntriesPerFeed(t *testing.T) {
	var items strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&items, `<item><title>Entry %d</title><link>http://example.com/%d</link></item>`, i, i)
	}
	fixture := `<?xml version="1.0"?><rss version="2.0"><channel><title>Big Feed</title>` + items.String() + `</channel></rss>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	f := newTestFeedFetcher([]config.Feed{{Name: "Big Feed", URL: srv.URL}})
	articles := f.Fetch(context.Background())
	if len(articles) != maxPerFeed {
		t.Errorf("expected %d articles, got %d", maxPerFeed, len(articles))
	}
}

func TestFeedFetchContinuesPastFailingFeed(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssFixture))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	f := newTestFeedFetcher([]config.Feed{
		{Name: "Broken Feed", URL: bad.URL},
		{Name: "Working Feed", URL: good.URL},
	})
	articles := f.Fetch(context.Background())
	if len(articles) != 2 {
		t.Errorf("expected the working feed's 2 articles, got %d", len(articles))
	}
}

func TestMapFeedItemPrefersFeedSuppliedImage(t *testing.T) {
	item := &gofeed.Item{
		Title:       "Stocks climb",
		Link:        "http://example.com/stocks",
		Description: `<img src="http://example.com/embedded.png">Markets rose.`,
		Image:       &gofeed.Image{URL: "http://example.com/supplied.png"},
	}

	a := mapFeedItem(item, config.Feed{Name: "Test Feed"})
	if a == nil {
		t.Fatal("expected an article")
	}
	if a.URLToImage != "http://example.com/supplied.png" {
		t.Errorf("expected the feed-supplied image, got %q", a.URLToImage)
	}

	item.Image = nil
	a = mapFeedItem(item, config.Feed{Name: "Test Feed"})
	if a.URLToImage != "http://example.com/embedded.png" {
		t.Errorf("expected the embedded image fallback, got %q", a.URLToImage)
	}
}

func TestStripHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"  spaced\n\nout  ", "spaced out"},
	}
	for _, c := range cases {
		if got := stripHTML(c.in); got != c.want {
			t.Errorf("stripHTML(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFirstImageURL(t *testing.T) {
	html := `<p>text</p><img src="http://a/1.png"><img src="http://a/2.png">`
	if got := firstImageURL(html); got != "http://a/1.png" {
		t.Errorf("expected first image, got %q", got)
	}
	if got := firstImageURL("<p>no image</p>"); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 200); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	long := strings.Repeat("a", 250)
	if got := truncate(long, 200); len([]rune(got)) != 200 {
		t.Errorf("expected 200 runes, got %d", len([]rune(got)))
	}
}
