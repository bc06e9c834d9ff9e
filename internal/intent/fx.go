package intent

import (
	"github.com/commentloop/commentloop/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("intent",
	fx.Provide(NewClassifier),
)

func NewClassifier(cfg config.Config, log *zap.Logger) Classifier {
	if cfg.IntentClassifierURL != "" {
		return NewHTTPClassifier(cfg.IntentClassifierURL, cfg.IntentClassifierTimeout)
	}
	log.Named("intent").Info("no classifier endpoint configured, using keyword fallback")
	return NewKeywordClassifier()
}
