package ledger

import (
	"github.com/commentloop/commentloop/internal/ledger/repository"
	"github.com/commentloop/commentloop/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
