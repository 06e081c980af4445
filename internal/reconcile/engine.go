// Package reconcile applies remote billing payloads to local state. Both the
// webhook path and bulk sync converge here, so a payload produces the same
// rows regardless of how it arrived.
package reconcile

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stripesync/internal/config"
	customerdomain "github.com/smallbiznis/stripesync/internal/customer/domain"
	featuredomain "github.com/smallbiznis/stripesync/internal/feature/domain"
	pricedomain "github.com/smallbiznis/stripesync/internal/price/domain"
	productdomain "github.com/smallbiznis/stripesync/internal/product/domain"
	productfeaturedomain "github.com/smallbiznis/stripesync/internal/productfeature/domain"
	"github.com/smallbiznis/stripesync/internal/stripemodel"
	subscriptiondomain "github.com/smallbiznis/stripesync/internal/subscription/domain"
	userdomain "github.com/smallbiznis/stripesync/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Engine reconciles one remote payload at a time. Every method takes the gorm
// handle so the caller controls transaction scope; a webhook event or a sync
// page runs as a single transaction spanning all of its writes.
type Engine interface {
	Customer(ctx context.Context, db *gorm.DB, c *stripemodel.Customer) (Outcome, error)
	Product(ctx context.Context, db *gorm.DB, p *stripemodel.Product) (Outcome, error)
	Price(ctx context.Context, db *gorm.DB, p *stripemodel.Price) (Outcome, error)
	Subscription(ctx context.Context, db *gorm.DB, s *stripemodel.Subscription) (Outcome, error)
}

// CustomerFetcher retrieves a remote customer by id. Subscription payloads
// only carry the customer id, so when a subscription arrives before its
// customer the engine fetches the full customer to run customer
// reconciliation first.
type CustomerFetcher interface {
	RetrieveCustomer(ctx context.Context, id string) (*stripemodel.Customer, error)
}

type Params struct {
	fx.In

	Log             *zap.Logger
	Node            *snowflake.Node
	Settings        *config.SettingsHolder
	Fetcher         CustomerFetcher `optional:"true"`
	Users           userdomain.Repository
	Customers       customerdomain.Repository
	Products        productdomain.Repository
	Features        featuredomain.Repository
	ProductFeatures productfeaturedomain.Repository
	Prices          pricedomain.Repository
	Subscriptions   subscriptiondomain.Repository
}

type engine struct {
	log             *zap.Logger
	node            *snowflake.Node
	settings        *config.SettingsHolder
	fetcher         CustomerFetcher
	users           userdomain.Repository
	customers       customerdomain.Repository
	products        productdomain.Repository
	features        featuredomain.Repository
	productFeatures productfeaturedomain.Repository
	prices          pricedomain.Repository
	subscriptions   subscriptiondomain.Repository
}

func NewEngine(p Params) Engine {
	return &engine{
		log:             p.Log,
		node:            p.Node,
		settings:        p.Settings,
		fetcher:         p.Fetcher,
		users:           p.Users,
		customers:       p.Customers,
		products:        p.Products,
		features:        p.Features,
		productFeatures: p.ProductFeatures,
		prices:          p.Prices,
		subscriptions:   p.Subscriptions,
	}
}

// Customer links a remote customer to a local user. The link's customer id is
// immutable once set; a customer that would overwrite an existing link is
// skipped, so callers processing newest-first get deterministic winners.
func (e *engine) Customer(ctx context.Context, db *gorm.DB, c *stripemodel.Customer) (Outcome, error) {
	if c.Deleted {
		// the link and any mirrored subscriptions stay; deletion upstream
		// does not unlink the user locally
		return OutcomeSkipped, nil
	}

	link, err := e.customers.FindByCustomerID(ctx, db, c.ID)
	if err != nil {
		return 0, err
	}
	if link != nil {
		return OutcomeUpdated, nil
	}

	settings := e.settings.Get()
	user, err := e.matchUser(ctx, db, settings, c)
	if err != nil {
		return 0, err
	}

	if user == nil {
		if !settings.AutoCreateEnabled() {
			return OutcomeSkipped, ErrUserCreationDisabled
		}
		user, err = e.createUser(ctx, db, settings, c)
		if err != nil {
			return 0, err
		}
		if err := e.customers.Insert(ctx, db, &customerdomain.StripeCustomer{
			UserID:     user.ID,
			CustomerID: &c.ID,
		}); err != nil {
			return 0, err
		}
		return OutcomeCreated, nil
	}

	existing, err := e.customers.FindByUserID(ctx, db, user.ID)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		if err := e.customers.Insert(ctx, db, &customerdomain.StripeCustomer{
			UserID:     user.ID,
			CustomerID: &c.ID,
		}); err != nil {
			return 0, err
		}
		return OutcomeCreated, nil
	}
	if existing.CustomerID == nil {
		if err := e.customers.AssignCustomerID(ctx, db, user.ID, c.ID); err != nil {
			return 0, err
		}
		return OutcomeUpdated, nil
	}

	e.log.Warn("user already linked to another customer",
		zap.Int64("user_id", int64(user.ID)),
		zap.String("linked_customer_id", *existing.CustomerID),
		zap.String("customer_id", c.ID),
	)
	return OutcomeSkipped, nil
}

func (e *engine) matchUser(ctx context.Context, db *gorm.DB, settings config.StripeSettings, c *stripemodel.Customer) (*userdomain.User, error) {
	value := customerAttribute(c, settings.UserMatchingField)
	if value == "" {
		return nil, nil
	}
	return e.users.FindByMatchField(ctx, db, userdomain.MatchField(settings.UserMatchingField), value)
}

func (e *engine) createUser(ctx context.Context, db *gorm.DB, settings config.StripeSettings, c *stripemodel.Customer) (*userdomain.User, error) {
	user := &userdomain.User{
		ID:         e.node.Generate(),
		DateJoined: time.Now().UTC(),
	}
	for localField, remoteAttr := range settings.UserCreateAttributeMap {
		value := customerAttribute(c, remoteAttr)
		switch localField {
		case "email":
			user.Email = value
		case "name":
			user.Name = value
		}
	}
	if user.Email == "" {
		return nil, reconcileErr("customer", c.ID, "cannot create user: attribute map yields no email")
	}

	if err := e.users.Insert(ctx, db, user); err != nil {
		return nil, err
	}
	e.log.Info("created user from remote customer",
		zap.Int64("user_id", int64(user.ID)),
		zap.String("customer_id", c.ID),
	)
	return user, nil
}

func customerAttribute(c *stripemodel.Customer, attr string) string {
	switch attr {
	case "id":
		return c.ID
	case "email":
		if c.Email != nil {
			return *c.Email
		}
	case "name":
		if c.Name != nil {
			return *c.Name
		}
	case "description":
		if c.Description != nil {
			return *c.Description
		}
	case "phone":
		if c.Phone != nil {
			return *c.Phone
		}
	}
	return ""
}

// Product upserts the mirrored product and reconciles its feature
// associations to exactly the tags in product metadata.
func (e *engine) Product(ctx context.Context, db *gorm.DB, p *stripemodel.Product) (Outcome, error) {
	if p.Deleted {
		existing, err := e.products.FindByID(ctx, db, p.ID)
		if err != nil {
			return 0, err
		}
		if existing == nil {
			return OutcomeSkipped, nil
		}
		if err := e.products.Deactivate(ctx, db, p.ID); err != nil {
			return 0, err
		}
		return OutcomeUpdated, nil
	}

	created, err := e.products.Upsert(ctx, db, &productdomain.Product{
		ID:          p.ID,
		Active:      p.Active,
		Name:        p.Name,
		Description: p.Description,
	})
	if err != nil {
		return 0, err
	}

	if err := e.reconcileFeatures(ctx, db, p); err != nil {
		return 0, err
	}

	if created {
		return OutcomeCreated, nil
	}
	return OutcomeUpdated, nil
}

func (e *engine) reconcileFeatures(ctx context.Context, db *gorm.DB, p *stripemodel.Product) error {
	tags := p.FeatureTags()

	// drop associations first so a cleared tag list empties the set
	if err := e.productFeatures.DeleteNotIn(ctx, db, p.ID, tags); err != nil {
		return err
	}

	for _, tag := range tags {
		_, createdFeature, err := e.features.GetOrCreate(ctx, db, tag)
		if err != nil {
			return err
		}
		if createdFeature {
			e.log.Warn("auto-created feature with placeholder description",
				zap.String("feature_id", tag),
				zap.String("product_id", p.ID),
			)
		}
		if err := e.productFeatures.Ensure(ctx, db, e.node, p.ID, tag); err != nil {
			return err
		}
	}
	return nil
}

// Price upserts the mirrored price. The referenced product must already be
// mirrored locally.
func (e *engine) Price(ctx context.Context, db *gorm.DB, p *stripemodel.Price) (Outcome, error) {
	if p.Deleted {
		existing, err := e.prices.FindByID(ctx, db, p.ID)
		if err != nil {
			return 0, err
		}
		if existing == nil {
			return OutcomeSkipped, nil
		}
		if err := e.prices.Deactivate(ctx, db, p.ID); err != nil {
			return 0, err
		}
		return OutcomeUpdated, nil
	}

	product, err := e.products.FindByID(ctx, db, p.ProductID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, reconcileErr("price", p.ID, "references unknown product %q", p.ProductID)
	}

	var unitAmount int64
	if p.UnitAmount != nil {
		unitAmount = *p.UnitAmount
	}
	created, err := e.prices.Upsert(ctx, db, &pricedomain.Price{
		ID:         p.ID,
		ProductID:  p.ProductID,
		Nickname:   p.Nickname,
		UnitAmount: unitAmount,
		Freq:       p.Frequency(),
		Active:     p.Active,
	})
	if err != nil {
		return 0, err
	}
	if created {
		return OutcomeCreated, nil
	}
	return OutcomeUpdated, nil
}

// Subscription upserts the mirrored subscription verbatim and fully replaces
// its item set. The customer must already be linked and every item's price
// must already be mirrored.
func (e *engine) Subscription(ctx context.Context, db *gorm.DB, s *stripemodel.Subscription) (Outcome, error) {
	link, err := e.customers.FindByCustomerID(ctx, db, s.CustomerID)
	if err != nil {
		return 0, err
	}
	if link == nil {
		link, err = e.adoptCustomer(ctx, db, s)
		if err != nil {
			return 0, err
		}
	}

	now := time.Now().UTC()
	items := make([]subscriptiondomain.SubscriptionItem, 0, len(s.Items))
	for _, item := range s.Items {
		price, err := e.prices.FindByID(ctx, db, item.PriceID)
		if err != nil {
			return 0, err
		}
		if price == nil {
			return 0, reconcileErr("subscription", s.ID, "item %q references unknown price %q", item.ID, item.PriceID)
		}
		items = append(items, subscriptiondomain.SubscriptionItem{
			ID:             item.ID,
			SubscriptionID: s.ID,
			PriceID:        item.PriceID,
			Quantity:       item.Quantity,
			CreatedAt:      now,
		})
	}

	created, err := e.subscriptions.Upsert(ctx, db, &subscriptiondomain.Subscription{
		ID:                s.ID,
		UserID:            link.UserID,
		Status:            string(s.Status),
		PeriodStart:       s.CurrentPeriodStart,
		PeriodEnd:         s.CurrentPeriodEnd,
		CancelAt:          s.CancelAt,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		EndedAt:           s.EndedAt,
		TrialStart:        s.TrialStart,
		TrialEnd:          s.TrialEnd,
	})
	if err != nil {
		return 0, err
	}
	if err := e.subscriptions.ReplaceItems(ctx, db, s.ID, items); err != nil {
		return 0, err
	}

	if created {
		return OutcomeCreated, nil
	}
	return OutcomeUpdated, nil
}

// adoptCustomer links a customer first seen through one of its subscriptions.
// The subscription payload only carries the customer id, so the full customer
// is fetched remotely and run through customer reconciliation. This is the
// only path where subscription processing can create a user.
func (e *engine) adoptCustomer(ctx context.Context, db *gorm.DB, s *stripemodel.Subscription) (*customerdomain.StripeCustomer, error) {
	if e.fetcher == nil {
		return nil, reconcileErr("subscription", s.ID, "customer %q has no linked user", s.CustomerID)
	}

	c, err := e.fetcher.RetrieveCustomer(ctx, s.CustomerID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.Deleted {
		return nil, reconcileErr("subscription", s.ID, "customer %q no longer exists upstream", s.CustomerID)
	}
	if _, err := e.Customer(ctx, db, c); err != nil {
		return nil, err
	}

	link, err := e.customers.FindByCustomerID(ctx, db, c.ID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, reconcileErr("subscription", s.ID, "customer %q could not be linked to a user", s.CustomerID)
	}
	e.log.Info("linked customer via subscription payload",
		zap.String("subscription_id", s.ID),
		zap.String("customer_id", c.ID),
	)
	return link, nil
}
