package collect

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/syncodes/financial-news-aggregator/internal/store"
)

const (
	alphaVantageBaseURL = "https://www.alphavantage.co/query"

	// Provider scores classify on a wider band than our own engine.
	providerPositiveThreshold = 0.25
	providerNegativeThreshold = -0.25
)

// AlphaVantageClient fetches the NEWS_SENTIMENT feed from Alpha Vantage.
// Feed items carry a provider-computed sentiment score, which is attached
// as-is and never recomputed downstream.
type AlphaVantageClient struct {
	apiKey  string
	topics  string
	baseURL string
	client  *http.Client
}

// NewAlphaVantageClient creates an Alpha Vantage client, reading the key
// from the named environment variable.
func NewAlphaVantageClient(apiKeyEnv, topics string) *AlphaVantageClient {
	return &AlphaVantageClient{
		apiKey:  os.Getenv(apiKeyEnv),
		topics:  topics,
		baseURL: alphaVantageBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured returns whether the API key is available.
func (c *AlphaVantageClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Fetch returns the latest sentiment-feed articles, or nil on any failure.
func (c *AlphaVantageClient) Fetch(ctx context.Context) []store.Article {
	if c.apiKey == "" {
		log.Println("Alpha Vantage API key not found. Skipping Alpha Vantage source.")
		return nil
	}

	params := url.Values{
		"function":  {"NEWS_SENTIMENT"},
		"apikey":    {c.apiKey},
		"topics":    {c.topics},
		"time_from": {"20230101T0000"},
		"sort":      {"LATEST"},
		"limit":     {"50"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("Alpha Vantage request error: %v", err)
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("Error fetching from Alpha Vantage: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Alpha Vantage HTTP error: %d", resp.StatusCode)
		return nil
	}

	var result struct {
		Feed []struct {
			Title                 string   `json:"title"`
			URL                   string   `json:"url"`
			TimePublished         string   `json:"time_published"`
			Authors               []string `json:"authors"`
			Summary               string   `json:"summary"`
			BannerImage           string   `json:"banner_image"`
			Source                string   `json:"source"`
			OverallSentimentScore *float64 `json:"overall_sentiment_score"`
		} `json:"feed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("Alpha Vantage decode error: %v", err)
		return nil
	}

	var articles []store.Article
	for _, item := range result.Feed {
		if item.Title == "" || item.URL == "" {
			continue
		}

		name := item.Source
		if name == "" {
			name = "Alpha Vantage"
		}

		var sentiment *store.Sentiment
		if item.OverallSentimentScore != nil {
			score := *item.OverallSentimentScore
			sentiment = &store.Sentiment{
				Score: score,
				Label: classifyProviderScore(score),
			}
		}

		articles = append(articles, store.Article{
			Title:       strings.TrimSpace(item.Title),
			Source:      store.Source{ID: "alphavantage", Name: name},
			Author:      strings.Join(item.Authors, ", "),
			URL:         item.URL,
			URLToImage:  item.BannerImage,
			PublishedAt: item.TimePublished,
			Content:     item.Summary,
			Description: item.Summary,
			FetchedAt:   nowRFC3339(),
			Category:    categoryBusiness,
			Sentiment:   sentiment,
		})
	}

	log.Printf("Fetched %d articles from Alpha Vantage", len(articles))
	return articles
}

func classifyProviderScore(score float64) string {
	switch {
	case score > providerPositiveThreshold:
		return "positive"
	case score < providerNegativeThreshold:
		return "negative"
	default:
		return "neutral"
	}
}
