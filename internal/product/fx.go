package product

import (
	"github.com/smallbiznis/stripesync/internal/product/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("product",
	fx.Provide(repository.Provide),
)
