package audit

import (
	"github.com/commentloop/commentloop/internal/audit/repository"
	"github.com/commentloop/commentloop/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
