package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	pricedomain "github.com/smallbiznis/stripesync/internal/price/domain"
	pricerepo "github.com/smallbiznis/stripesync/internal/price/repository"
	priceservice "github.com/smallbiznis/stripesync/internal/price/service"
	productdomain "github.com/smallbiznis/stripesync/internal/product/domain"
	productrepo "github.com/smallbiznis/stripesync/internal/product/repository"
	subscriptiondomain "github.com/smallbiznis/stripesync/internal/subscription/domain"
	subscriptionrepo "github.com/smallbiznis/stripesync/internal/subscription/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_price_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&productdomain.Product{},
		&pricedomain.Price{},
		&subscriptiondomain.Subscription{},
		&subscriptiondomain.SubscriptionItem{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, id string, active bool) {
	t.Helper()
	_, err := productrepo.Provide().Upsert(context.Background(), db, &productdomain.Product{
		ID:     id,
		Active: active,
	})
	require.NoError(t, err)
}

func seedPrice(t *testing.T, db *gorm.DB, id, productID string, active bool) {
	t.Helper()
	_, err := pricerepo.Provide().Upsert(context.Background(), db, &pricedomain.Price{
		ID:         id,
		ProductID:  productID,
		UnitAmount: 1000,
		Active:     active,
	})
	require.NoError(t, err)
}

func seedSubscription(t *testing.T, db *gorm.DB, id string, userID int64, status, priceID string) {
	t.Helper()
	ctx := context.Background()
	repo := subscriptionrepo.Provide()
	_, err := repo.Upsert(ctx, db, &subscriptiondomain.Subscription{
		ID:     id,
		UserID: snowflake.ID(userID),
		Status: status,
	})
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceItems(ctx, db, id, []subscriptiondomain.SubscriptionItem{
		{ID: "si_" + id, SubscriptionID: id, PriceID: priceID, Quantity: 1, CreatedAt: time.Now().UTC()},
	}))
}

func TestListPublicFiltersInactive(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := priceservice.NewService(priceservice.Params{DB: db, Log: zap.NewNop(), Repo: pricerepo.Provide()})

	seedProduct(t, db, "prod_live", true)
	seedProduct(t, db, "prod_archived", false)
	seedPrice(t, db, "price_live", "prod_live", true)
	seedPrice(t, db, "price_archived", "prod_live", false)
	seedPrice(t, db, "price_hidden", "prod_archived", true)

	prices, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, "price_live", prices[0].ID)
}

func TestListSubscribableExcludesHeldProducts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := priceservice.NewService(priceservice.Params{DB: db, Log: zap.NewNop(), Repo: pricerepo.Provide()})

	seedProduct(t, db, "prod_held", true)
	seedProduct(t, db, "prod_open", true)
	seedPrice(t, db, "price_held_monthly", "prod_held", true)
	seedPrice(t, db, "price_held_yearly", "prod_held", true)
	seedPrice(t, db, "price_open", "prod_open", true)

	// user 7 holds an access-granting subscription on prod_held, which hides
	// every price of that product, not just the subscribed one
	seedSubscription(t, db, "sub_held", 7, "active", "price_held_monthly")

	prices, err := svc.ListSubscribable(ctx, snowflake.ID(7))
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, "price_open", prices[0].ID)

	// canceled subscriptions do not block re-subscribing
	seedSubscription(t, db, "sub_done", 8, "canceled", "price_held_monthly")
	prices, err = svc.ListSubscribable(ctx, snowflake.ID(8))
	require.NoError(t, err)
	assert.Len(t, prices, 3)

	// another user sees everything
	prices, err = svc.ListSubscribable(ctx, snowflake.ID(9))
	require.NoError(t, err)
	assert.Len(t, prices, 3)
}
