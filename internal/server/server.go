package server

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/syncodes/financial-news-aggregator/internal/store"
)

//go:embed static/index.html
var statusPage []byte

// Server exposes the stored articles as a JSON API, plus a static status
// page at the root. List responses are cached briefly so the read path
// does not reload the whole collection on every request.
type Server struct {
	store *store.Store
	cache *gocache.Cache // nil when caching is disabled
	mux   *http.ServeMux
}

// New creates a server over the given store. A cacheTTL of zero disables
// response caching.
func New(st *store.Store, cacheTTL time.Duration) *Server {
	s := &Server{store: st, mux: http.NewServeMux()}
	if cacheTTL > 0 {
		s.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/api/news", s.handleNews)
	s.mux.HandleFunc("/api/news/sources", s.handleSources)
	s.mux.HandleFunc("/api/news/stats", s.handleStats)
}

type listResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Data   any    `json:"data"`
}

type statsResponse struct {
	Status string `json:"status"`
	Data   stats  `json:"data"`
}

type stats struct {
	TotalArticles         int             `json:"total_articles"`
	SentimentDistribution sentimentCounts `json:"sentiment_distribution"`
	SourceDistribution    map[string]int  `json:"source_distribution"`
}

type sentimentCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(statusPage)
}

// handleNews serves /api/news with optional source= and sentiment=
// filters; source takes precedence when both are given.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	sentiment := r.URL.Query().Get("sentiment")

	key := fmt.Sprintf("news?source=%s&sentiment=%s", source, sentiment)
	if s.serveCached(w, key) {
		return
	}

	var (
		articles []store.Article
		err      error
	)
	switch {
	case source != "":
		articles, err = s.store.GetBySource(r.Context(), source)
	case sentiment != "":
		articles, err = s.store.GetBySentiment(r.Context(), sentiment)
	default:
		articles, err = s.store.GetAll(r.Context())
	}
	if err != nil {
		s.serveError(w, err)
		return
	}
	if articles == nil {
		articles = []store.Article{}
	}

	s.serveJSON(w, key, listResponse{
		Status: "success",
		Count:  len(articles),
		Data:   articles,
	})
}

// handleSources serves the distinct source names across all articles.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	const key = "sources"
	if s.serveCached(w, key) {
		return
	}

	articles, err := s.store.GetAll(r.Context())
	if err != nil {
		s.serveError(w, err)
		return
	}

	seen := make(map[string]struct{})
	names := []string{}
	for _, a := range articles {
		name := a.Source.Name
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)

	s.serveJSON(w, key, listResponse{
		Status: "success",
		Count:  len(names),
		Data:   names,
	})
}

// handleStats serves aggregate counts by sentiment label and source.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	const key = "stats"
	if s.serveCached(w, key) {
		return
	}

	articles, err := s.store.GetAll(r.Context())
	if err != nil {
		s.serveError(w, err)
		return
	}

	st := stats{SourceDistribution: make(map[string]int)}
	st.TotalArticles = len(articles)
	for _, a := range articles {
		if a.Sentiment != nil {
			switch a.Sentiment.Label {
			case "positive":
				st.SentimentDistribution.Positive++
			case "neutral":
				st.SentimentDistribution.Neutral++
			case "negative":
				st.SentimentDistribution.Negative++
			}
		}
		if a.Source.Name != "" {
			st.SourceDistribution[a.Source.Name]++
		}
	}

	s.serveJSON(w, key, statsResponse{Status: "success", Data: st})
}

func (s *Server) serveCached(w http.ResponseWriter, key string) bool {
	if s.cache == nil {
		return false
	}
	cached, found := s.cache.Get(key)
	if !found {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(cached.([]byte))
	return true
}

func (s *Server) serveJSON(w http.ResponseWriter, key string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.serveError(w, err)
		return
	}
	if s.cache != nil {
		s.cache.Set(key, body, gocache.DefaultExpiration)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) serveError(w http.ResponseWriter, err error) {
	log.Printf("Error serving request: %v", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"status": "error"})
}

// Serve starts the HTTP server on the given port.
func Serve(st *store.Store, port int, cacheTTL time.Duration) error {
	srv := New(st, cacheTTL)
	addr := fmt.Sprintf(":%d", port)
	log.Printf("Server listening on http://localhost:%d", port)
	return http.ListenAndServe(addr, srv.Handler())
}
