package store

import (
	"context"
	"log"
	"sort"
	"time"
)

// Config holds the connection settings for both backends.
type Config struct {
	MongoURI   string // empty means the primary is not configured
	Database   string
	Collection string
	DataDir    string
}

// Store is the persistence handle shared by the pipeline and the API. It
// prefers MongoDB when a URI is configured and the startup probe succeeds,
// and otherwise degrades to the local JSON file for the process lifetime.
// A Mongo call that fails later falls back to the file for that one
// operation only.
type Store struct {
	mongo *mongoBackend // nil once fallen back
	file  *fileBackend
}

// New constructs the store handle, probing the primary at most once.
func New(ctx context.Context, cfg Config) (*Store, error) {
	file, err := newFileBackend(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	s := &Store{file: file}
	if cfg.MongoURI == "" {
		log.Println("MongoDB URI not configured, using local JSON storage")
		return s, nil
	}

	mongo, err := newMongoBackend(ctx, cfg)
	if err != nil {
		log.Printf("Could not connect to MongoDB: %v", err)
		log.Println("Falling back to local JSON storage")
		return s, nil
	}

	log.Println("Successfully connected to MongoDB")
	s.mongo = mongo
	return s, nil
}

// Close releases the primary connection if one was established.
func (s *Store) Close(ctx context.Context) error {
	if s.mongo != nil {
		return s.mongo.close(ctx)
	}
	return nil
}

// Backend reports which backend the handle selected at startup.
func (s *Store) Backend() string {
	if s.mongo != nil {
		return "mongodb"
	}
	return "json"
}

// Save upserts an article by its URL-derived identity. The first save sets
// _id and timestamp; later saves for the same URL overwrite in place.
func (s *Store) Save(ctx context.Context, a Article) error {
	if a.ID == "" {
		a.ID = a.URL
	}
	if a.Timestamp == "" {
		a.Timestamp = time.Now().Format(time.RFC3339)
	}

	if s.mongo != nil {
		if err := s.mongo.save(ctx, a); err != nil {
			log.Printf("Error saving to MongoDB: %v", err)
			return s.file.save(a)
		}
		return nil
	}
	return s.file.save(a)
}

// GetAll returns every record, newest first. Records without a publishedAt
// sort by their stored timestamp instead.
func (s *Store) GetAll(ctx context.Context) ([]Article, error) {
	articles, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(articles)
	return articles, nil
}

// GetBySource returns the articles whose source.name matches exactly.
func (s *Store) GetBySource(ctx context.Context, name string) ([]Article, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var filtered []Article
	for _, a := range all {
		if a.Source.Name == name {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// GetBySentiment returns the articles whose sentiment.label matches exactly.
// Unscored articles are excluded.
func (s *Store) GetBySentiment(ctx context.Context, label string) ([]Article, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var filtered []Article
	for _, a := range all {
		if a.Sentiment != nil && a.Sentiment.Label == label {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// DeleteOlderThan removes every record published strictly before today's
// midnight minus the given number of days and returns the count removed.
func (s *Store) DeleteOlderThan(ctx context.Context, days int) (int, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := midnight.AddDate(0, 0, -days)

	if s.mongo != nil {
		n, err := s.mongo.deleteOlderThan(ctx, cutoff)
		if err == nil {
			log.Printf("Deleted %d old articles from MongoDB", n)
			return n, nil
		}
		log.Printf("Error deleting from MongoDB: %v", err)
	}

	n, err := s.file.deleteOlderThan(cutoff)
	if err == nil {
		log.Printf("Deleted %d old articles from JSON file", n)
	}
	return n, err
}

func (s *Store) load(ctx context.Context) ([]Article, error) {
	if s.mongo != nil {
		articles, err := s.mongo.all(ctx)
		if err == nil {
			return articles, nil
		}
		log.Printf("Error retrieving from MongoDB: %v", err)
	}
	return s.file.all()
}

// Both backends share one comparator so their ordering is observably
// identical.
func sortNewestFirst(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return eventTime(articles[i]).After(eventTime(articles[j]))
	})
}

// eventTime resolves the instant a record sorts and expires by. A record
// with an unparseable publishedAt gets the zero time, which sorts last and
// is never considered old.
func eventTime(a Article) time.Time {
	if a.PublishedAt != "" {
		t, _ := parseEventTime(a.PublishedAt)
		return t
	}
	if a.Timestamp != "" {
		t, _ := parseEventTime(a.Timestamp)
		return t
	}
	return time.Time{}
}

func isOlderThan(a Article, cutoff time.Time) bool {
	t := eventTime(a)
	if t.IsZero() {
		return false
	}
	return t.Before(cutoff)
}

// eventTimeLayouts covers the timestamp shapes the sources actually emit:
// RFC 3339 (NewsAPI, our own timestamps), the Alpha Vantage compact form,
// and the RSS/Atom date variants.
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"20060102T150405",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02",
}

func parseEventTime(value string) (time.Time, bool) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
