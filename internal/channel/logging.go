package channel

import (
	"context"

	"go.uber.org/zap"
)

// LoggingClient records sends without touching the network. It stands
// in for the real platform transport in local and test environments.
type LoggingClient struct {
	log *zap.Logger
}

func NewLoggingClient(log *zap.Logger) *LoggingClient {
	return &LoggingClient{log: log.Named("channel")}
}

func (c *LoggingClient) PostPublicReply(_ context.Context, _, commentID, text string) error {
	c.log.Info("public reply",
		zap.String("comment_id", commentID),
		zap.Int("text_len", len(text)),
	)
	return nil
}

func (c *LoggingClient) SendDirectMessage(_ context.Context, _, commenterID, text string, buttons []Button) error {
	c.log.Info("direct message",
		zap.String("commenter_id", commenterID),
		zap.Int("text_len", len(text)),
		zap.Int("buttons", len(buttons)),
	)
	return nil
}

var _ Client = (*LoggingClient)(nil)
