package price

import (
	"github.com/smallbiznis/stripesync/internal/price/repository"
	"github.com/smallbiznis/stripesync/internal/price/service"
	"go.uber.org/fx"
)

var Module = fx.Module("price",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
