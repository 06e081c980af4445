// Package syncer bulk-pulls remote billing state through the list endpoints
// and feeds every object through reconciliation. Each fetched page is applied
// in its own transaction, so a mid-run failure keeps whole pages rather than
// half-applied objects.
package syncer

import (
	"context"
	"errors"
	"sort"

	"github.com/smallbiznis/stripesync/internal/config"
	"github.com/smallbiznis/stripesync/internal/reconcile"
	"github.com/smallbiznis/stripesync/internal/stripeapi"
	"github.com/smallbiznis/stripesync/internal/stripemodel"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultPageSize = 100

// Syncer drives bulk synchronization from the remote API into local state.
type Syncer interface {
	// UpdateCustomers pulls customers and links them to local users. Limit
	// bounds the page size, startingAfter resumes from a cursor. When several
	// customers match the same user, the most recently created one within a
	// page claims the link; across pages whichever customer was linked first
	// keeps it, regardless of creation time.
	UpdateCustomers(ctx context.Context, limit int, startingAfter string) (reconcile.Result, error)
	// UpdateProductsPrices pulls all products and then all prices. Products
	// go first so price reconciliation finds its product rows.
	UpdateProductsPrices(ctx context.Context) (reconcile.Result, error)
	// UpdateSubscriptions pulls subscriptions filtered by remote status;
	// "all" includes ended and canceled ones.
	UpdateSubscriptions(ctx context.Context, status string, limit int, startingAfter string) (reconcile.Result, error)
	// PullAll runs a full sync in dependency order: customers, products,
	// prices, subscriptions.
	PullAll(ctx context.Context) (reconcile.Result, error)
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Settings *config.SettingsHolder
	API      stripeapi.Client
	Engine   reconcile.Engine
}

type syncer struct {
	db       *gorm.DB
	log      *zap.Logger
	settings *config.SettingsHolder
	api      stripeapi.Client
	engine   reconcile.Engine
}

func New(p Params) Syncer {
	return &syncer{
		db:       p.DB,
		log:      p.Log,
		settings: p.Settings,
		api:      p.API,
		engine:   p.Engine,
	}
}

func (s *syncer) UpdateCustomers(ctx context.Context, limit int, startingAfter string) (reconcile.Result, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	policy := s.settings.Get().UserCreationPolicy

	var result reconcile.Result
	cursor := startingAfter
	for {
		customers, next, err := s.api.ListCustomers(ctx, stripeapi.ListParams{Limit: limit, StartingAfter: cursor})
		if err != nil {
			return result, err
		}
		if len(customers) == 0 {
			break
		}

		// newest first, so when several customers match one user the most
		// recently created one claims the link and the rest skip
		sort.SliceStable(customers, func(i, j int) bool {
			a, b := customers[i].Created, customers[j].Created
			if a == nil || b == nil {
				return b == nil && a != nil
			}
			return a.After(*b)
		})

		err = s.db.Transaction(func(tx *gorm.DB) error {
			for i := range customers {
				outcome, err := s.engine.Customer(ctx, tx, &customers[i])
				if errors.Is(err, reconcile.ErrUserCreationDisabled) {
					if policy == config.UserCreationPolicyError {
						return err
					}
					s.log.Warn("skipping customer with no matching user",
						zap.String("customer_id", customers[i].ID))
					result.Add(reconcile.OutcomeSkipped)
					continue
				}
				if err != nil {
					return err
				}
				result.Add(outcome)
			}
			return nil
		})
		if err != nil {
			return result, err
		}

		if next == "" {
			break
		}
		cursor = next
	}

	s.log.Info("customer sync finished",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *syncer) UpdateProductsPrices(ctx context.Context) (reconcile.Result, error) {
	var result reconcile.Result

	cursor := ""
	for {
		products, next, err := s.api.ListProducts(ctx, stripeapi.ListParams{Limit: defaultPageSize, StartingAfter: cursor})
		if err != nil {
			return result, err
		}
		if len(products) == 0 {
			break
		}
		if err := s.applyProducts(ctx, products, &result); err != nil {
			return result, err
		}
		if next == "" {
			break
		}
		cursor = next
	}

	cursor = ""
	for {
		prices, next, err := s.api.ListPrices(ctx, stripeapi.ListParams{Limit: defaultPageSize, StartingAfter: cursor})
		if err != nil {
			return result, err
		}
		if len(prices) == 0 {
			break
		}
		if err := s.applyPrices(ctx, prices, &result); err != nil {
			return result, err
		}
		if next == "" {
			break
		}
		cursor = next
	}

	s.log.Info("product and price sync finished",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *syncer) applyProducts(ctx context.Context, products []stripemodel.Product, result *reconcile.Result) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range products {
			outcome, err := s.engine.Product(ctx, tx, &products[i])
			if err != nil {
				return err
			}
			result.Add(outcome)
		}
		return nil
	})
}

func (s *syncer) applyPrices(ctx context.Context, prices []stripemodel.Price, result *reconcile.Result) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range prices {
			outcome, err := s.engine.Price(ctx, tx, &prices[i])
			if err != nil {
				return err
			}
			result.Add(outcome)
		}
		return nil
	})
}

func (s *syncer) UpdateSubscriptions(ctx context.Context, status string, limit int, startingAfter string) (reconcile.Result, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	var result reconcile.Result
	cursor := startingAfter
	for {
		subscriptions, next, err := s.api.ListSubscriptions(ctx, status, stripeapi.ListParams{Limit: limit, StartingAfter: cursor})
		if err != nil {
			return result, err
		}
		if len(subscriptions) == 0 {
			break
		}

		policy := s.settings.Get().UserCreationPolicy
		err = s.db.Transaction(func(tx *gorm.DB) error {
			for i := range subscriptions {
				outcome, err := s.engine.Subscription(ctx, tx, &subscriptions[i])
				if errors.Is(err, reconcile.ErrUserCreationDisabled) {
					if policy == config.UserCreationPolicyError {
						return err
					}
					s.log.Warn("skipping subscription for customer with no matching user",
						zap.String("subscription_id", subscriptions[i].ID))
					result.Add(reconcile.OutcomeSkipped)
					continue
				}
				if err != nil {
					return err
				}
				result.Add(outcome)
			}
			return nil
		})
		if err != nil {
			return result, err
		}

		if next == "" {
			break
		}
		cursor = next
	}

	s.log.Info("subscription sync finished",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *syncer) PullAll(ctx context.Context) (reconcile.Result, error) {
	var total reconcile.Result

	result, err := s.UpdateCustomers(ctx, defaultPageSize, "")
	total.Created += result.Created
	total.Updated += result.Updated
	total.Skipped += result.Skipped
	if err != nil {
		return total, err
	}

	result, err = s.UpdateProductsPrices(ctx)
	total.Created += result.Created
	total.Updated += result.Updated
	total.Skipped += result.Skipped
	if err != nil {
		return total, err
	}

	result, err = s.UpdateSubscriptions(ctx, "all", defaultPageSize, "")
	total.Created += result.Created
	total.Updated += result.Updated
	total.Skipped += result.Skipped
	return total, err
}
