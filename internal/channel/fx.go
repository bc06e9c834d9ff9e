package channel

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("channel",
	fx.Provide(func(log *zap.Logger) Client {
		return NewLoggingClient(log)
	}),
)
