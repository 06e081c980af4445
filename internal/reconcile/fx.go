package reconcile

import (
	"github.com/smallbiznis/stripesync/internal/stripeapi"
	"go.uber.org/fx"
)

var Module = fx.Module("reconcile",
	fx.Provide(
		NewEngine,
		func(c stripeapi.Client) CustomerFetcher { return c },
	),
)
