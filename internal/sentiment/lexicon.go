package sentiment

// Words with special significance in financial news. Matches against
// either set nudge the base polarity by a small fixed amount per word.
var financialPositive = wordSet(
	"growth", "profit", "profitable", "gain", "surge", "uptrend", "bullish", "rally",
	"outperform", "recovery", "rebound", "robust", "strong", "strengthen", "upgrade",
	"beat", "exceeded", "exceed", "higher", "record", "opportunity", "breakthrough",
)

var financialNegative = wordSet(
	"recession", "crisis", "debt", "deficit", "loss", "decline", "downturn", "bearish",
	"downgrade", "underperform", "weak", "weaken", "plunge", "plummet", "crash", "bankruptcy",
	"default", "risk", "volatile", "miss", "missed", "disappointment", "concern", "threat",
	"inflation", "layoff", "downsize", "cut", "shutdown", "liability",
)

// Standard English stopword set, removed before polarity scoring.
var stopWords = wordSet(
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your",
	"yours", "yourself", "yourselves", "he", "him", "his", "himself", "she", "her",
	"hers", "herself", "it", "its", "itself", "they", "them", "their", "theirs",
	"themselves", "what", "which", "who", "whom", "this", "that", "these", "those",
	"am", "is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"having", "do", "does", "did", "doing", "a", "an", "the", "and", "but", "if",
	"or", "because", "as", "until", "while", "of", "at", "by", "for", "with",
	"about", "against", "between", "into", "through", "during", "before", "after",
	"above", "below", "to", "from", "up", "down", "in", "out", "on", "off", "over",
	"under", "again", "further", "then", "once", "here", "there", "when", "where",
	"why", "how", "all", "any", "both", "each", "few", "more", "most", "other",
	"some", "such", "no", "nor", "not", "only", "own", "same", "so", "than", "too",
	"very", "s", "t", "can", "will", "just", "don", "should", "now",
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
