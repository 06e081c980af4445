package productfeature

import (
	"github.com/smallbiznis/stripesync/internal/productfeature/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("productfeature",
	fx.Provide(repository.Provide),
)
