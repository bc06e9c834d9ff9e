package channel

import (
	"context"
	"errors"
)

// ErrSendFailed wraps outbound delivery failures so the engine can
// classify them without knowing the transport.
var ErrSendFailed = errors.New("channel_send_failed")

// Button is an optional call-to-action attached to a direct message.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Client is the outbound transport contract. Implementations own the
// network details; the engine only sees ok-or-error per send.
type Client interface {
	PostPublicReply(ctx context.Context, accessToken, commentID, text string) error
	SendDirectMessage(ctx context.Context, accessToken, commenterID, text string, buttons []Button) error
}
