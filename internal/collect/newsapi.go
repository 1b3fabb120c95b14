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

const newsAPIBaseURL = "https://newsapi.org/v2/top-headlines"

// NewsAPIClient fetches business headlines from NewsAPI.
type NewsAPIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewNewsAPIClient creates a NewsAPI client, reading the key from the
// named environment variable.
func NewNewsAPIClient(apiKeyEnv string) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:  os.Getenv(apiKeyEnv),
		baseURL: newsAPIBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured returns whether the API key is available.
func (c *NewsAPIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Fetch returns the current business headlines, or nil on any failure.
func (c *NewsAPIClient) Fetch(ctx context.Context) []store.Article {
	if c.apiKey == "" {
		log.Println("NewsAPI key not found. Skipping NewsAPI source.")
		return nil
	}

	params := url.Values{
		"apiKey":   {c.apiKey},
		"category": {categoryBusiness},
		"language": {"en"},
		"pageSize": {"100"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("NewsAPI request error: %v", err)
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("Error fetching from NewsAPI: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("NewsAPI HTTP error: %d", resp.StatusCode)
		return nil
	}

	var result struct {
		Articles []struct {
			Title  string `json:"title"`
			Source struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"source"`
			Author      string `json:"author"`
			URL         string `json:"url"`
			URLToImage  string `json:"urlToImage"`
			PublishedAt string `json:"publishedAt"`
			Content     string `json:"content"`
			Description string `json:"description"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("NewsAPI decode error: %v", err)
		return nil
	}

	var articles []store.Article
	for _, a := range result.Articles {
		if a.Title == "" || a.URL == "" {
			continue
		}

		// NewsAPI truncates content; fall back to the description.
		content := a.Content
		if content == "" {
			content = a.Description
		}

		name := a.Source.Name
		if name == "" {
			name = "NewsAPI"
		}

		articles = append(articles, store.Article{
			Title:       strings.TrimSpace(a.Title),
			Source:      store.Source{ID: a.Source.ID, Name: name},
			Author:      a.Author,
			URL:         a.URL,
			URLToImage:  a.URLToImage,
			PublishedAt: a.PublishedAt,
			Content:     content,
			Description: a.Description,
			FetchedAt:   nowRFC3339(),
			Category:    categoryBusiness,
		})
	}

	log.Printf("Fetched %d articles from NewsAPI", len(articles))
	return articles
}
