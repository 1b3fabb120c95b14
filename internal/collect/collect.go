package collect

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/syncodes/financial-news-aggregator/internal/config"
	"github.com/syncodes/financial-news-aggregator/internal/store"
)

const categoryBusiness = "business"

// Collector fans the configured source adapters out and merges their
// output into one deduplicated candidate set. An adapter that fails
// returns an empty batch; it never aborts the others.
type Collector struct {
	newsAPI *NewsAPIClient
	alpha   *AlphaVantageClient
	feeds   *FeedFetcher
}

// New creates a collector from the configured sources. Sources without
// credentials stay constructed and skip themselves at fetch time, so a key
// exported later is picked up on restart without config changes.
func New(cfg *config.Config) *Collector {
	c := &Collector{}

	if cfg.Sources.APIs.NewsAPI.Enabled {
		c.newsAPI = NewNewsAPIClient(cfg.Sources.APIs.NewsAPI.APIKeyEnv)
	}
	if cfg.Sources.APIs.AlphaVantage.Enabled {
		av := cfg.Sources.APIs.AlphaVantage
		c.alpha = NewAlphaVantageClient(av.APIKeyEnv, av.Topics)
	}
	if len(cfg.Sources.Feeds) > 0 {
		c.feeds = NewFeedFetcher(cfg.Sources.Feeds)
	}

	return c
}

// FetchAll runs every adapter concurrently and returns the deduplicated
// result. Duplicate URLs keep their first occurrence in the fixed
// precedence order NewsAPI, Alpha Vantage, then RSS feeds in registry
// order, regardless of which adapter finishes first.
func (c *Collector) FetchAll(ctx context.Context) []store.Article {
	batches := make([][]store.Article, 3)
	var wg sync.WaitGroup

	run := func(slot int, fetch func(context.Context) []store.Article) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batches[slot] = fetch(ctx)
		}()
	}

	if c.newsAPI != nil {
		run(0, c.newsAPI.Fetch)
	}
	if c.alpha != nil {
		run(1, c.alpha.Fetch)
	}
	if c.feeds != nil {
		run(2, c.feeds.Fetch)
	}
	wg.Wait()

	var all []store.Article
	for _, batch := range batches {
		all = append(all, batch...)
	}

	unique := Dedupe(all)
	log.Printf("Fetched a total of %d unique articles (%d before deduplication)", len(unique), len(all))
	return unique
}

// Dedupe keeps the first occurrence of each URL verbatim and drops every
// later one.
func Dedupe(articles []store.Article) []store.Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]store.Article, 0, len(articles))
	for _, a := range articles {
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		unique = append(unique, a)
	}
	return unique
}

func nowRFC3339() string {
	return time.Now().Format(time.RFC3339)
}
