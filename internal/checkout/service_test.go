package checkout

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
	"github.com/smallbiznis/stripesync/internal/stripeapi"
	"github.com/smallbiznis/stripesync/internal/stripemodel"
	userdomain "github.com/smallbiznis/stripesync/internal/user/domain"
	userrepo "github.com/smallbiznis/stripesync/internal/user/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeAPI records customer and session creation calls.
type fakeAPI struct {
	stripeapi.Client

	createdCustomers int
	lastCheckout     stripeapi.CheckoutParams
	lastPortalReturn string
}

func (f *fakeAPI) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (*stripemodel.Customer, error) {
	f.createdCustomers++
	id := fmt.Sprintf("cus_fake_%d", f.createdCustomers)
	return &stripemodel.Customer{ID: id, Email: &email, Metadata: metadata}, nil
}

func (f *fakeAPI) CreateCheckoutSession(ctx context.Context, params stripeapi.CheckoutParams) (*stripeapi.CheckoutSession, error) {
	f.lastCheckout = params
	return &stripeapi.CheckoutSession{ID: "cs_fake", URL: "https://pay.example.com/cs_fake"}, nil
}

func (f *fakeAPI) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*stripeapi.PortalSession, error) {
	f.lastPortalReturn = returnURL
	return &stripeapi.PortalSession{ID: "bps_fake", URL: "https://portal.example.com/bps_fake"}, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_checkout_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userdomain.User{}, &customerdomain.StripeCustomer{}))
	return db
}

func testSettings() config.StripeSettings {
	return config.StripeSettings{
		FrontEndBaseURL:      "https://app.example.com",
		CheckoutSuccessPath:  "/payment/?session={CHECKOUT_SESSION_ID}",
		CheckoutCancelPath:   "/manage-subscription/",
		PaymentMethodTypes:   []string{"card"},
		CheckoutMode:         "subscription",
		NewUserFreeTrialDays: 15,
		UserMatchingField:    "email",
		UserCreationPolicy:   config.UserCreationPolicySkip,
	}
}

func newTestService(t *testing.T, db *gorm.DB, api stripeapi.Client) Service {
	t.Helper()
	return NewService(Params{
		DB:        db,
		Log:       zap.NewNop(),
		Settings:  config.NewStaticSettingsHolder(testSettings()),
		API:       api,
		Users:     userrepo.Provide(),
		Customers: customerrepo.Provide(),
	})
}

func seedUser(t *testing.T, db *gorm.DB, id int64, email string, joined time.Time) *userdomain.User {
	t.Helper()
	user := &userdomain.User{
		ID:         snowflake.ID(id),
		Email:      email,
		DateJoined: joined,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, userrepo.Provide().Insert(context.Background(), db, user))
	return user
}

func TestGetOrCreateStripeCustomerProvisionsOnce(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	api := &fakeAPI{}
	svc := newTestService(t, db, api)
	user := seedUser(t, db, 1, "buyer@example.com", time.Now().UTC())

	link, err := svc.GetOrCreateStripeCustomer(ctx, customerdomain.ByUserID(user.ID))
	require.NoError(t, err)
	require.NotNil(t, link.CustomerID)
	assert.Equal(t, "cus_fake_1", *link.CustomerID)
	assert.Equal(t, 1, api.createdCustomers)

	// second call resolves the existing link without another remote create
	link, err = svc.GetOrCreateStripeCustomer(ctx, customerdomain.ByEmail("buyer@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "cus_fake_1", *link.CustomerID)
	assert.Equal(t, 1, api.createdCustomers)
}

func TestGetOrCreateStripeCustomerUnknownUser(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTestService(t, db, &fakeAPI{})

	_, err := svc.GetOrCreateStripeCustomer(ctx, customerdomain.ByEmail("nobody@example.com"))
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateCheckoutSessionWithTrial(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	api := &fakeAPI{}
	svc := newTestService(t, db, api)
	user := seedUser(t, db, 2, "new@example.com", time.Now().UTC())

	session, err := svc.CreateCheckoutSession(ctx, user.ID, "price_1", 0, true)
	require.NoError(t, err)
	assert.Equal(t, "cs_fake", session.ID)

	params := api.lastCheckout
	assert.Equal(t, "cus_fake_1", params.CustomerID)
	assert.Equal(t, "price_1", params.PriceID)
	assert.Equal(t, int64(1), params.Quantity)
	assert.Equal(t, "subscription", params.Mode)
	assert.Equal(t, "https://app.example.com/payment/?session={CHECKOUT_SESSION_ID}", params.SuccessURL)
	assert.Equal(t, "https://app.example.com/manage-subscription/", params.CancelURL)

	// a fresh user gets roughly the full trial window
	expected := user.DateJoined.Add(15 * 24 * time.Hour).Unix()
	assert.InDelta(t, expected, params.TrialEnd, 1)
}

func TestCreateCheckoutSessionTrialExpired(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	api := &fakeAPI{}
	svc := newTestService(t, db, api)
	user := seedUser(t, db, 3, "old@example.com", time.Now().UTC().Add(-30*24*time.Hour))

	_, err := svc.CreateCheckoutSession(ctx, user.ID, "price_1", 2, true)
	require.NoError(t, err)
	assert.Zero(t, api.lastCheckout.TrialEnd)
	assert.Equal(t, int64(2), api.lastCheckout.Quantity)
}

func TestTrialEnd(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// joined today: full window remains
	assert.Equal(t,
		now.Add(15*24*time.Hour).Unix(),
		trialEnd(now, 15, now),
	)

	// window expired long ago
	assert.Zero(t, trialEnd(now.Add(-40*24*time.Hour), 15, now))

	// remaining lead below the remote minimum is ineligible
	joined := now.Add(minTrialLead - 15*24*time.Hour).Add(-time.Minute)
	assert.Zero(t, trialEnd(joined, 15, now))

	// exactly at the minimum lead still qualifies
	joined = now.Add(minTrialLead - 15*24*time.Hour)
	assert.Equal(t, now.Add(minTrialLead).Unix(), trialEnd(joined, 15, now))
}

func TestCreatePortalSession(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	api := &fakeAPI{}
	svc := newTestService(t, db, api)
	user := seedUser(t, db, 4, "portal@example.com", time.Now().UTC())

	session, err := svc.CreatePortalSession(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "bps_fake", session.ID)
	assert.Equal(t, "https://app.example.com/manage-subscription/", api.lastPortalReturn)
}
