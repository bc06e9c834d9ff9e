package discount

import (
	"github.com/commentloop/commentloop/internal/discount/repository"
	"github.com/commentloop/commentloop/internal/discount/service"
	"go.uber.org/fx"
)

var Module = fx.Module("discount",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
