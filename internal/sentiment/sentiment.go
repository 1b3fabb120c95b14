// Package sentiment scores article text with a general-purpose lexical
// polarity model adjusted for financial vocabulary.
package sentiment

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jonreiter/govader"
)

const (
	// Per distinct lexicon match, before clamping.
	adjustmentStep = 0.05
	// The financial adjustment never moves the base score by more than this.
	maxAdjustment = 0.3
	// Scores in [-0.05, 0.05] classify as neutral.
	labelThreshold = 0.05
)

var (
	urlPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern      = regexp.MustCompile(`<[^>]*>`)
	nonAlphaPattern = regexp.MustCompile(`[^a-z\s]`)
	wordPattern     = regexp.MustCompile(`[a-z]+`)
)

// Analyzer scores raw article text. It holds only immutable model state
// and is safe for concurrent use.
type Analyzer struct {
	vader      *govader.SentimentIntensityAnalyzer
	lemmatizer *golem.Lemmatizer
}

// NewAnalyzer loads the polarity model and the English lemma dictionary.
func NewAnalyzer() (*Analyzer, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("loading lemma dictionary: %w", err)
	}
	return &Analyzer{
		vader:      govader.NewSentimentIntensityAnalyzer(),
		lemmatizer: lemmatizer,
	}, nil
}

// Analyze returns a polarity score in [-1, 1], rounded to 4 decimal
// places, and its label. Empty text, and text that is empty once cleaned,
// score exactly {0, neutral}.
func (a *Analyzer) Analyze(text string) (float64, string) {
	if text == "" {
		return 0, "neutral"
	}

	cleaned := a.preprocess(text)
	if cleaned == "" {
		return 0, "neutral"
	}

	base := a.vader.PolarityScores(cleaned).Compound
	score := clamp(base+adjustment(text), -1, 1)
	score = math.Round(score*10000) / 10000
	return score, Label(score)
}

// Label classifies a score against the fixed thresholds.
func Label(score float64) string {
	switch {
	case score > labelThreshold:
		return "positive"
	case score < -labelThreshold:
		return "negative"
	default:
		return "neutral"
	}
}

// preprocess lowercases, strips URLs, markup and non-alphabetic runes,
// drops stopwords and reduces the remaining words to dictionary lemmas.
func (a *Analyzer) preprocess(text string) string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllString(text, "")
	text = nonAlphaPattern.ReplaceAllString(text, "")

	var kept []string
	for _, word := range strings.Fields(text) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		kept = append(kept, a.lemmatizer.Lemma(word))
	}
	return strings.Join(kept, " ")
}

// adjustment computes the financial-context correction from the original,
// pre-cleaning text: each distinct lexicon word present moves the score by
// one step, clamped so domain vocabulary alone cannot dominate the model.
func adjustment(text string) float64 {
	words := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		words[w] = struct{}{}
	}

	var adj float64
	for w := range words {
		if _, ok := financialPositive[w]; ok {
			adj += adjustmentStep
		}
		if _, ok := financialNegative[w]; ok {
			adj -= adjustmentStep
		}
	}
	return clamp(adj, -maxAdjustment, maxAdjustment)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
