package service

import (
	"context"
	"strings"
	"sync"

	automationdomain "github.com/commentloop/commentloop/internal/automation/domain"
	"github.com/commentloop/commentloop/internal/engine/domain"
	"github.com/commentloop/commentloop/internal/intent"
)

// classificationCache memoizes one classifier verdict per comment.
// Every intent-triggered candidate in the pipeline shares the same
// verdict, so the classifier is hit at most once per inbound comment
// regardless of how many rules match on intent.
type classificationCache struct {
	once       sync.Once
	classifier intent.Classifier
	text       string

	result intent.Classification
	err    error
}

func newClassificationCache(classifier intent.Classifier, text string) *classificationCache {
	return &classificationCache{classifier: classifier, text: text}
}

func (c *classificationCache) get(ctx context.Context) (intent.Classification, error) {
	c.once.Do(func() {
		c.result, c.err = c.classifier.Classify(ctx, c.text)
	})
	return c.result, c.err
}

// evaluateTrigger reports whether the comment satisfies the rule's
// trigger. A classifier failure is surfaced, never swallowed into a
// non-match: the caller aborts before any claim so a retry re-evaluates.
func (s *Service) evaluateTrigger(ctx context.Context, automation automationdomain.Automation, comment domain.NormalizedComment, cache *classificationCache) (bool, error) {
	switch automation.TriggerType {
	case automationdomain.TriggerKeyword:
		keyword := strings.ToLower(strings.TrimSpace(automation.TriggerValue))
		if keyword == "" {
			return false, nil
		}
		return strings.Contains(strings.ToLower(comment.Text), keyword), nil

	case automationdomain.TriggerIntent:
		classification, err := cache.get(ctx)
		if err != nil {
			return false, err
		}
		if classification.Confidence < s.cfg.IntentConfidenceFloor {
			return false, nil
		}
		return strings.EqualFold(classification.Intent, strings.TrimSpace(automation.TriggerValue)), nil

	default:
		return false, nil
	}
}
