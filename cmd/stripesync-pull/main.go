// Command stripesync-pull runs a one-shot bulk sync against the remote
// billing API and exits. It shares the server's configuration and database.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stripesync/internal/config"
	"github.com/smallbiznis/stripesync/internal/customer"
	"github.com/smallbiznis/stripesync/internal/feature"
	"github.com/smallbiznis/stripesync/internal/logger"
	"github.com/smallbiznis/stripesync/internal/migration"
	"github.com/smallbiznis/stripesync/internal/price"
	"github.com/smallbiznis/stripesync/internal/product"
	"github.com/smallbiznis/stripesync/internal/productfeature"
	"github.com/smallbiznis/stripesync/internal/reconcile"
	"github.com/smallbiznis/stripesync/internal/stripeapi"
	"github.com/smallbiznis/stripesync/internal/subscription"
	"github.com/smallbiznis/stripesync/internal/syncer"
	"github.com/smallbiznis/stripesync/internal/user"
	"github.com/smallbiznis/stripesync/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	entity := flag.String("entity", "all", "what to pull: all, customers, products, subscriptions")
	status := flag.String("status", "all", "subscription status filter for -entity subscriptions")
	limit := flag.Int("limit", 100, "page size for list calls")
	startingAfter := flag.String("starting-after", "", "cursor to resume listing from")
	flag.Parse()

	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		user.Module,
		customer.Module,
		product.Module,
		feature.Module,
		productfeature.Module,
		price.Module,
		subscription.Module,
		reconcile.Module,
		stripeapi.Module,
		syncer.Module,
		fx.Invoke(func(lc fx.Lifecycle, sh fx.Shutdowner, log *zap.Logger, s syncer.Syncer) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						if err := pull(context.Background(), s, *entity, *status, *limit, *startingAfter); err != nil {
							log.Error("pull failed", zap.Error(err))
							_ = sh.Shutdown(fx.ExitCode(1))
							return
						}
						_ = sh.Shutdown()
					}()
					return nil
				},
			})
		}),
	)
	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		os.Exit(1)
	}

	sig := <-app.Wait()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer stopCancel()
	_ = app.Stop(stopCtx)
	os.Exit(sig.ExitCode)
}

func pull(ctx context.Context, s syncer.Syncer, entity, status string, limit int, startingAfter string) error {
	switch entity {
	case "customers":
		_, err := s.UpdateCustomers(ctx, limit, startingAfter)
		return err
	case "products":
		_, err := s.UpdateProductsPrices(ctx)
		return err
	case "subscriptions":
		_, err := s.UpdateSubscriptions(ctx, status, limit, startingAfter)
		return err
	default:
		_, err := s.PullAll(ctx)
		return err
	}
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
