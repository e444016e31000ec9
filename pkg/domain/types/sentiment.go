package types

// Sentiment is a coarse sentiment label attached to summaries and
// MENTIONS edges. Values outside the known set are normalized to
// SentimentNeutral rather than rejected, since labels originate from
// LLM output.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentMixed    Sentiment = "mixed"
)

// IsValid checks if the sentiment is a known label
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentMixed:
		return true
	default:
		return false
	}
}

// Normalize returns the sentiment, coercing unknown or empty labels to neutral
func (s Sentiment) Normalize() Sentiment {
	if !s.IsValid() {
		return SentimentNeutral
	}
	return s
}

// String returns the string representation of the sentiment
func (s Sentiment) String() string {
	return string(s)
}
