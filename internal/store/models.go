package store

// Source identifies the outlet an article came from.
type Source struct {
	ID   string `json:"id,omitempty" bson:"id,omitempty"`
	Name string `json:"name" bson:"name"`
}

// Sentiment is a polarity score in [-1, 1] with its classification label
// ("positive", "neutral" or "negative").
type Sentiment struct {
	Score float64 `json:"score" bson:"score"`
	Label string  `json:"label" bson:"label"`
}

// Article is the canonical record every component consumes. Adapters produce
// it, the sentiment engine annotates it, and the store persists it keyed by
// URL. PublishedAt carries the source-native timestamp text as received;
// FetchedAt and Timestamp are RFC 3339.
type Article struct {
	ID          string     `json:"_id,omitempty" bson:"_id,omitempty"`
	Title       string     `json:"title" bson:"title"`
	Source      Source     `json:"source" bson:"source"`
	Author      string     `json:"author,omitempty" bson:"author,omitempty"`
	URL         string     `json:"url" bson:"url"`
	URLToImage  string     `json:"urlToImage,omitempty" bson:"urlToImage,omitempty"`
	PublishedAt string     `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`
	Content     string     `json:"content,omitempty" bson:"content,omitempty"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	FetchedAt   string     `json:"fetched_at" bson:"fetched_at"`
	Category    string     `json:"category" bson:"category"`
	Sentiment   *Sentiment `json:"sentiment,omitempty" bson:"sentiment,omitempty"`
	Timestamp   string     `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
}
