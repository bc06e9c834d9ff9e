package intent

import (
	"context"
	"strings"
)

// Classification is one classifier verdict. Confidence is in [0, 1].
type Classification struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Classifier labels a comment's text. Implementations must be pure
// functions of the text with no side effects; the engine caches the
// result per comment.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

type marker struct {
	word  string
	label string
}

// KeywordClassifier is a deterministic fallback used when no external
// classifier is configured. Markers are checked in a fixed order so a
// text hitting several of them always yields the same verdict.
type KeywordClassifier struct {
	markers []marker
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		markers: []marker{
			{"price", "purchase_inquiry"},
			{"buy", "purchase_inquiry"},
			{"cost", "purchase_inquiry"},
			{"discount", "discount_request"},
			{"promo", "discount_request"},
			{"coupon", "discount_request"},
			{"ship", "shipping_inquiry"},
			{"deliver", "shipping_inquiry"},
			{"refund", "support_request"},
			{"broken", "support_request"},
			{"help", "support_request"},
		},
	}
}

func (c *KeywordClassifier) Classify(_ context.Context, text string) (Classification, error) {
	lowered := strings.ToLower(text)
	for _, m := range c.markers {
		if strings.Contains(lowered, m.word) {
			return Classification{Intent: m.label, Confidence: 0.9}, nil
		}
	}
	return Classification{Intent: "other", Confidence: 0.5}, nil
}

var _ Classifier = (*KeywordClassifier)(nil)
