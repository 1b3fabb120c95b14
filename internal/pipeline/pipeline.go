package pipeline

import (
	"context"
	"log"

	"github.com/syncodes/financial-news-aggregator/internal/collect"
	"github.com/syncodes/financial-news-aggregator/internal/config"
	"github.com/syncodes/financial-news-aggregator/internal/sentiment"
	"github.com/syncodes/financial-news-aggregator/internal/store"
)

// Result summarizes one ingestion cycle.
type Result struct {
	Fetched int // unique articles the adapters produced
	Scored  int // articles run through the sentiment engine
	Saved   int
	Failed  int
}

// Pipeline runs one ingestion cycle: collect from all sources, score
// sentiment, persist. Articles that arrive with a provider-computed
// sentiment keep it; everything else is scored here.
type Pipeline struct {
	collector *collect.Collector
	analyzer  *sentiment.Analyzer
	store     *store.Store
}

// New creates a pipeline over the configured sources and the given store.
func New(cfg *config.Config, st *store.Store) (*Pipeline, error) {
	analyzer, err := sentiment.NewAnalyzer()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		collector: collect.New(cfg),
		analyzer:  analyzer,
		store:     st,
	}, nil
}

// Run executes one cycle. Source and storage failures degrade per
// operation; Run itself never fails the hosting process.
func (p *Pipeline) Run(ctx context.Context) *Result {
	log.Println("Updating news data...")
	return p.ingest(ctx, p.collector.FetchAll(ctx))
}

func (p *Pipeline) ingest(ctx context.Context, articles []store.Article) *Result {
	r := &Result{Fetched: len(articles)}

	for i := range articles {
		if articles[i].Sentiment != nil {
			continue
		}
		score, label := p.analyzer.Analyze(articles[i].Content)
		articles[i].Sentiment = &store.Sentiment{Score: score, Label: label}
		r.Scored++
	}

	for _, a := range articles {
		if err := p.store.Save(ctx, a); err != nil {
			log.Printf("Error saving article %s: %v", a.URL, err)
			r.Failed++
			continue
		}
		r.Saved++
	}

	log.Printf("Updated %d news articles (%d scored, %d failed)", r.Saved, r.Scored, r.Failed)
	return r
}
