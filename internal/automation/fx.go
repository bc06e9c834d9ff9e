package automation

import (
	"github.com/commentloop/commentloop/internal/automation/repository"
	"github.com/commentloop/commentloop/internal/automation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("automation",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
