package syncer_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/stripesync/internal/config"
	customerdomain "github.com/smallbiznis/stripesync/internal/customer/domain"
	customerrepo "github.com/smallbiznis/stripesync/internal/customer/repository"
	featuredomain "github.com/smallbiznis/stripesync/internal/feature/domain"
	featurerepo "github.com/smallbiznis/stripesync/internal/feature/repository"
	pricedomain "github.com/smallbiznis/stripesync/internal/price/domain"
	pricerepo "github.com/smallbiznis/stripesync/internal/price/repository"
	productdomain "github.com/smallbiznis/stripesync/internal/product/domain"
	productrepo "github.com/smallbiznis/stripesync/internal/product/repository"
	productfeaturedomain "github.com/smallbiznis/stripesync/internal/productfeature/domain"
	productfeaturerepo "github.com/smallbiznis/stripesync/internal/productfeature/repository"
	"github.com/smallbiznis/stripesync/internal/reconcile"
	"github.com/smallbiznis/stripesync/internal/stripeapi"
	"github.com/smallbiznis/stripesync/internal/stripemodel"
	subscriptiondomain "github.com/smallbiznis/stripesync/internal/subscription/domain"
	subscriptionrepo "github.com/smallbiznis/stripesync/internal/subscription/repository"
	"github.com/smallbiznis/stripesync/internal/syncer"
	userdomain "github.com/smallbiznis/stripesync/internal/user/domain"
	userrepo "github.com/smallbiznis/stripesync/internal/user/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeClient serves canned pages. Lists pop one page per call; an empty queue
// serves an empty page.
type fakeClient struct {
	customerPages     [][]stripemodel.Customer
	productPages      [][]stripemodel.Product
	pricePages        [][]stripemodel.Price
	subscriptionPages [][]stripemodel.Subscription
	remoteCustomers   map[string]*stripemodel.Customer

	listedStatuses []string
}

func (f *fakeClient) ListCustomers(ctx context.Context, params stripeapi.ListParams) ([]stripemodel.Customer, string, error) {
	if len(f.customerPages) == 0 {
		return nil, "", nil
	}
	page := f.customerPages[0]
	f.customerPages = f.customerPages[1:]
	cursor := ""
	if len(f.customerPages) > 0 {
		cursor = page[len(page)-1].ID
	}
	return page, cursor, nil
}

func (f *fakeClient) ListProducts(ctx context.Context, params stripeapi.ListParams) ([]stripemodel.Product, string, error) {
	if len(f.productPages) == 0 {
		return nil, "", nil
	}
	page := f.productPages[0]
	f.productPages = f.productPages[1:]
	cursor := ""
	if len(f.productPages) > 0 {
		cursor = page[len(page)-1].ID
	}
	return page, cursor, nil
}

func (f *fakeClient) ListPrices(ctx context.Context, params stripeapi.ListParams) ([]stripemodel.Price, string, error) {
	if len(f.pricePages) == 0 {
		return nil, "", nil
	}
	page := f.pricePages[0]
	f.pricePages = f.pricePages[1:]
	cursor := ""
	if len(f.pricePages) > 0 {
		cursor = page[len(page)-1].ID
	}
	return page, cursor, nil
}

func (f *fakeClient) ListSubscriptions(ctx context.Context, status string, params stripeapi.ListParams) ([]stripemodel.Subscription, string, error) {
	f.listedStatuses = append(f.listedStatuses, status)
	if len(f.subscriptionPages) == 0 {
		return nil, "", nil
	}
	page := f.subscriptionPages[0]
	f.subscriptionPages = f.subscriptionPages[1:]
	cursor := ""
	if len(f.subscriptionPages) > 0 {
		cursor = page[len(page)-1].ID
	}
	return page, cursor, nil
}

func (f *fakeClient) RetrieveCustomer(ctx context.Context, id string) (*stripemodel.Customer, error) {
	if c, ok := f.remoteCustomers[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("no such customer %q", id)
}

func (f *fakeClient) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (*stripemodel.Customer, error) {
	return nil, nil
}

func (f *fakeClient) CreateCheckoutSession(ctx context.Context, params stripeapi.CheckoutParams) (*stripeapi.CheckoutSession, error) {
	return nil, nil
}

func (f *fakeClient) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*stripeapi.PortalSession, error) {
	return nil, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_sync_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&customerdomain.StripeCustomer{},
		&productdomain.Product{},
		&featuredomain.Feature{},
		&productfeaturedomain.ProductFeature{},
		&pricedomain.Price{},
		&subscriptiondomain.Subscription{},
		&subscriptiondomain.SubscriptionItem{},
	))
	return db
}

func newSyncer(t *testing.T, db *gorm.DB, api stripeapi.Client, settings config.StripeSettings) syncer.Syncer {
	t.Helper()

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	holder := config.NewStaticSettingsHolder(settings)
	engine := reconcile.NewEngine(reconcile.Params{
		Log:             zap.NewNop(),
		Node:            node,
		Settings:        holder,
		Fetcher:         api,
		Users:           userrepo.Provide(),
		Customers:       customerrepo.Provide(),
		Products:        productrepo.Provide(),
		Features:        featurerepo.Provide(),
		ProductFeatures: productfeaturerepo.Provide(),
		Prices:          pricerepo.Provide(),
		Subscriptions:   subscriptionrepo.Provide(),
	})
	return syncer.New(syncer.Params{
		DB:       db,
		Log:      zap.NewNop(),
		Settings: holder,
		API:      api,
		Engine:   engine,
	})
}

func skipSettings() config.StripeSettings {
	return config.StripeSettings{
		UserMatchingField:  "email",
		UserCreationPolicy: config.UserCreationPolicySkip,
		CheckoutMode:       "subscription",
		PaymentMethodTypes: []string{"card"},
	}
}

func seedUser(t *testing.T, db *gorm.DB, id int64, email string) {
	t.Helper()
	require.NoError(t, userrepo.Provide().Insert(context.Background(), db, &userdomain.User{
		ID:         snowflake.ID(id),
		Email:      email,
		DateJoined: time.Now().UTC(),
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}))
}

func strp(s string) *string { return &s }
func timep(t time.Time) *time.Time { return &t }

func TestUpdateCustomersNewestWinsTheLink(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedUser(t, db, 1, "dup@example.com")

	older := time.Now().UTC().Add(-48 * time.Hour)
	newer := time.Now().UTC()
	api := &fakeClient{customerPages: [][]stripemodel.Customer{{
		{ID: "cus_old", Email: strp("dup@example.com"), Created: timep(older)},
		{ID: "cus_new", Email: strp("dup@example.com"), Created: timep(newer)},
	}}}
	s := newSyncer(t, db, api, skipSettings())

	result, err := s.UpdateCustomers(ctx, 100, "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)

	link, err := customerrepo.Provide().FindByUserID(ctx, db, snowflake.ID(1))
	require.NoError(t, err)
	require.NotNil(t, link)
	require.NotNil(t, link.CustomerID)
	assert.Equal(t, "cus_new", *link.CustomerID)
}

func TestUpdateCustomersSkipPolicyCountsUnmatched(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedUser(t, db, 2, "known@example.com")

	api := &fakeClient{customerPages: [][]stripemodel.Customer{{
		{ID: "cus_known", Email: strp("known@example.com")},
		{ID: "cus_ghost_1", Email: strp("ghost1@example.com")},
		{ID: "cus_ghost_2", Email: strp("ghost2@example.com")},
	}}}
	s := newSyncer(t, db, api, skipSettings())

	result, err := s.UpdateCustomers(ctx, 100, "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 2, result.Skipped)
}

func TestUpdateCustomersErrorPolicyAborts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	api := &fakeClient{customerPages: [][]stripemodel.Customer{{
		{ID: "cus_ghost", Email: strp("ghost@example.com")},
	}}}
	settings := skipSettings()
	settings.UserCreationPolicy = config.UserCreationPolicyError
	s := newSyncer(t, db, api, settings)

	_, err := s.UpdateCustomers(ctx, 100, "")
	require.ErrorIs(t, err, reconcile.ErrUserCreationDisabled)
}

func TestUpdateProductsPricesPaginates(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	amount := int64(1200)
	api := &fakeClient{
		productPages: [][]stripemodel.Product{
			{{ID: "prod_1", Active: true}},
			{{ID: "prod_2", Active: true}},
		},
		pricePages: [][]stripemodel.Price{{
			{ID: "price_1", ProductID: "prod_1", Active: true, UnitAmount: &amount,
				Type: stripemodel.PriceTypeRecurring,
				Recurring: &stripemodel.Recurring{Interval: stripemodel.IntervalMonth, IntervalCount: 1}},
			{ID: "price_2", ProductID: "prod_2", Active: true, UnitAmount: &amount,
				Type: stripemodel.PriceTypeOneTime},
		}},
	}
	s := newSyncer(t, db, api, skipSettings())

	result, err := s.UpdateProductsPrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Created)
	assert.Equal(t, 0, result.Skipped)

	price, err := pricerepo.Provide().FindByID(ctx, db, "price_1")
	require.NoError(t, err)
	require.NotNil(t, price)
}

func TestUpdateProductsPricesAbortsOnOrphanPrice(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	amount := int64(1200)
	api := &fakeClient{
		productPages: [][]stripemodel.Product{{
			{ID: "prod_1", Active: true},
		}},
		pricePages: [][]stripemodel.Price{{
			{ID: "price_1", ProductID: "prod_1", Active: true, UnitAmount: &amount,
				Type: stripemodel.PriceTypeOneTime},
			{ID: "price_orphan", ProductID: "prod_gone", Active: true, UnitAmount: &amount,
				Type: stripemodel.PriceTypeOneTime},
		}},
	}
	s := newSyncer(t, db, api, skipSettings())

	result, err := s.UpdateProductsPrices(ctx)
	var reconcileErr *reconcile.ReconciliationError
	require.ErrorAs(t, err, &reconcileErr)
	assert.Equal(t, "price", reconcileErr.Entity)
	assert.Equal(t, 1, result.Created)

	// the whole price page rolls back, including the valid price before
	// the orphan
	price, err := pricerepo.Provide().FindByID(ctx, db, "price_1")
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestPullAllRunsInDependencyOrder(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedUser(t, db, 3, "full@example.com")

	amount := int64(5000)
	api := &fakeClient{
		customerPages: [][]stripemodel.Customer{{
			{ID: "cus_full", Email: strp("full@example.com")},
		}},
		productPages: [][]stripemodel.Product{{
			{ID: "prod_full", Active: true},
		}},
		pricePages: [][]stripemodel.Price{{
			{ID: "price_full", ProductID: "prod_full", Active: true, UnitAmount: &amount,
				Type: stripemodel.PriceTypeRecurring,
				Recurring: &stripemodel.Recurring{Interval: stripemodel.IntervalYear, IntervalCount: 1}},
		}},
		subscriptionPages: [][]stripemodel.Subscription{{
			{ID: "sub_full", CustomerID: "cus_full", Status: stripemodel.StatusActive,
				Items: []stripemodel.SubscriptionItem{{ID: "si_full", PriceID: "price_full", Quantity: 1}}},
		}},
	}
	s := newSyncer(t, db, api, skipSettings())

	result, err := s.PullAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, []string{"all"}, api.listedStatuses)

	stored, err := subscriptionrepo.Provide().FindByID(ctx, db, "sub_full")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, snowflake.ID(3), stored.UserID)

	items, err := subscriptionrepo.Provide().ListItems(ctx, db, "sub_full")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "price_full", items[0].PriceID)
}

func TestUpdateSubscriptionsSkipsCustomersWithNoMatchingUser(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	// the fetched customer matches no local user and auto-creation is off,
	// so under the skip policy the subscription is counted and passed over
	api := &fakeClient{
		subscriptionPages: [][]stripemodel.Subscription{{
			{ID: "sub_orphan", CustomerID: "cus_nobody", Status: stripemodel.StatusActive},
		}},
		remoteCustomers: map[string]*stripemodel.Customer{
			"cus_nobody": {ID: "cus_nobody", Email: strp("nobody@example.com")},
		},
	}
	s := newSyncer(t, db, api, skipSettings())

	result, err := s.UpdateSubscriptions(ctx, "all", 100, "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Created)
}

func TestUpdateSubscriptionsAbortsOnUnknownPrice(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedUser(t, db, 4, "linked@example.com")

	api := &fakeClient{
		customerPages: [][]stripemodel.Customer{{
			{ID: "cus_linked", Email: strp("linked@example.com")},
		}},
		subscriptionPages: [][]stripemodel.Subscription{{
			{ID: "sub_bad", CustomerID: "cus_linked", Status: stripemodel.StatusActive,
				Items: []stripemodel.SubscriptionItem{{ID: "si_bad", PriceID: "price_never_synced", Quantity: 1}}},
		}},
	}
	s := newSyncer(t, db, api, skipSettings())

	_, err := s.UpdateCustomers(ctx, 100, "")
	require.NoError(t, err)

	_, err = s.UpdateSubscriptions(ctx, "all", 100, "")
	var reconcileErr *reconcile.ReconciliationError
	require.ErrorAs(t, err, &reconcileErr)
	assert.Equal(t, "subscription", reconcileErr.Entity)

	stored, err := subscriptionrepo.Provide().FindByID(ctx, db, "sub_bad")
	require.NoError(t, err)
	assert.Nil(t, stored)
}
