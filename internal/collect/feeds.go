package collect

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/syncodes/financial-news-aggregator/internal/config"
	"github.com/syncodes/financial-news-aggregator/internal/store"
)

const (
	maxPerFeed       = 20
	feedTimeout      = 20 * time.Second
	descriptionRunes = 200 // runes of content kept for a derived description
)

// FeedFetcher pulls articles from the configured RSS/Atom registry. Feeds
// are fetched in registry order behind a shared politeness limiter; one
// feed's failure never stops the rest.
type FeedFetcher struct {
	feeds   []config.Feed
	parser  *gofeed.Parser
	limiter *rate.Limiter
	timeout time.Duration
}

// NewFeedFetcher creates a fetcher over the given feed registry.
func NewFeedFetcher(feeds []config.Feed) *FeedFetcher {
	return &FeedFetcher{
		feeds:   feeds,
		parser:  gofeed.NewParser(),
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		timeout: feedTimeout,
	}
}

// Fetch returns the merged entries of every configured feed.
func (f *FeedFetcher) Fetch(ctx context.Context) []store.Article {
	var all []store.Article
	for _, fc := range f.feeds {
		if err := f.limiter.Wait(ctx); err != nil {
			return all
		}

		entries, err := f.fetchFeed(ctx, fc)
		if err != nil {
			log.Printf("Error fetching from %s: %v", fc.Name, err)
			continue
		}
		all = append(all, entries...)
		log.Printf("Fetched %d articles from %s", len(entries), fc.Name)
	}
	return all
}

func (f *FeedFetcher) fetchFeed(ctx context.Context, fc config.Feed) ([]store.Article, error) {
	feedCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(fc.URL, feedCtx)
	if err != nil {
		return nil, err
	}

	var articles []store.Article
	for _, item := range feed.Items {
		if len(articles) >= maxPerFeed {
			break
		}
		if a := mapFeedItem(item, fc); a != nil {
			articles = append(articles, *a)
		}
	}
	return articles, nil
}

// mapFeedItem normalizes one feed entry, or returns nil for entries
// missing their identity fields. Feeds disagree on which optional fields
// they populate: the body comes from content else summary/description,
// the date from published/pubDate else updated, first available wins.
func mapFeedItem(item *gofeed.Item, fc config.Feed) *store.Article {
	title := strings.TrimSpace(item.Title)
	if title == "" || item.Link == "" {
		return nil
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}
	content := stripHTML(body)

	publishedAt := item.Published
	if publishedAt == "" {
		publishedAt = item.Updated
	}

	description := stripHTML(item.Description)
	if description == "" && content != "" {
		description = truncate(content, descriptionRunes) + "..."
	}

	// Feeds rarely carry an explicit image; when one is missing, scan the
	// body markup for the first embedded one.
	image := ""
	if item.Image != nil {
		image = item.Image.URL
	}
	if image == "" {
		image = firstImageURL(body)
	}

	return &store.Article{
		Title:       title,
		Source:      store.Source{ID: sourceID(fc.Name), Name: fc.Name},
		Author:      itemAuthor(item),
		URL:         item.Link,
		URLToImage:  image,
		PublishedAt: publishedAt,
		Content:     content,
		Description: description,
		FetchedAt:   nowRFC3339(),
		Category:    categoryBusiness,
	}
}

func itemAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return item.Authors[0].Name
	}
	return ""
}

func sourceID(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// stripHTML reduces markup to whitespace-normalized plain text.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// firstImageURL returns the src of the first <img> in the markup, if any.
func firstImageURL(s string) string {
	if !strings.Contains(s, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return src
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
