// Package webhook verifies and dispatches provider event deliveries. Each
// delivery runs in one database transaction, so a failed event leaves no
// partial writes and the provider's retry can reprocess it cleanly.
package webhook

import (
	"context"

	"github.com/smallbiznis/stripesync/internal/reconcile"
	"github.com/smallbiznis/stripesync/internal/stripemodel"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Disposition classifies what a delivery did.
type Disposition string

const (
	// DispositionApplied means local state was written.
	DispositionApplied Disposition = "applied"
	// DispositionIgnored means the event type is outside the handled set.
	DispositionIgnored Disposition = "ignored"
	// DispositionSkipped means the event was understood but intentionally
	// not applied.
	DispositionSkipped Disposition = "skipped"
	// DispositionFailed means processing errored and nothing was written.
	DispositionFailed Disposition = "failed"
)

// Receipt summarizes the handling of one delivery.
type Receipt struct {
	EventID     string      `json:"event_id"`
	EventType   string      `json:"event_type"`
	Disposition Disposition `json:"disposition"`
}

// Dispatcher verifies a raw delivery and routes it to reconciliation.
type Dispatcher interface {
	Handle(ctx context.Context, payload []byte, sigHeader string) (*Receipt, error)
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Verifier Verifier
	Engine   reconcile.Engine
}

type dispatcher struct {
	db       *gorm.DB
	log      *zap.Logger
	verifier Verifier
	engine   reconcile.Engine
	metrics  *Metrics
}

func NewDispatcher(p Params) Dispatcher {
	return &dispatcher{
		db:       p.DB,
		log:      p.Log,
		verifier: p.Verifier,
		engine:   p.Engine,
		metrics:  EventMetrics(),
	}
}

func (d *dispatcher) Handle(ctx context.Context, payload []byte, sigHeader string) (*Receipt, error) {
	event, err := d.verifier.Verify(payload, sigHeader)
	if err != nil {
		d.metrics.IncEvent("unverified", string(DispositionFailed))
		return nil, err
	}

	if event.Type == stripemodel.EventTypeUnknown {
		d.log.Info("ignoring unhandled event type",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.RawType),
		)
		d.metrics.IncEvent("unknown", string(DispositionIgnored))
		return &Receipt{EventID: event.ID, EventType: event.RawType, Disposition: DispositionIgnored}, nil
	}

	if event.Type == stripemodel.EventSubscriptionTrialWillEnd {
		// notification-only; there is no state change to mirror
		d.log.Info("trial ending soon", zap.String("event_id", event.ID))
		d.metrics.IncEvent(event.RawType, string(DispositionIgnored))
		return &Receipt{EventID: event.ID, EventType: event.RawType, Disposition: DispositionIgnored}, nil
	}

	outcome, err := d.apply(ctx, event)
	if err != nil {
		// user-creation-disabled included: on the delivery path every
		// failure is surfaced so the provider redelivers
		d.metrics.IncEvent(event.RawType, string(DispositionFailed))
		return nil, err
	}

	disposition := DispositionApplied
	if outcome == reconcile.OutcomeSkipped {
		disposition = DispositionSkipped
	}
	d.metrics.IncEvent(event.RawType, string(disposition))
	return &Receipt{EventID: event.ID, EventType: event.RawType, Disposition: disposition}, nil
}

// apply parses the event object and reconciles it inside one transaction.
func (d *dispatcher) apply(ctx context.Context, event *stripemodel.Event) (reconcile.Outcome, error) {
	var outcome reconcile.Outcome
	err := d.db.Transaction(func(tx *gorm.DB) error {
		var applyErr error
		switch event.Type {
		case stripemodel.EventCustomerCreated, stripemodel.EventCustomerUpdated, stripemodel.EventCustomerDeleted:
			customer, parseErr := stripemodel.ParseCustomer(event.Object)
			if parseErr != nil {
				return parseErr
			}
			if event.Type == stripemodel.EventCustomerDeleted {
				customer.Deleted = true
			}
			outcome, applyErr = d.engine.Customer(ctx, tx, customer)

		case stripemodel.EventProductCreated, stripemodel.EventProductUpdated, stripemodel.EventProductDeleted:
			product, parseErr := stripemodel.ParseProduct(event.Object)
			if parseErr != nil {
				return parseErr
			}
			if event.Type == stripemodel.EventProductDeleted {
				product.Deleted = true
			}
			outcome, applyErr = d.engine.Product(ctx, tx, product)

		case stripemodel.EventPriceCreated, stripemodel.EventPriceUpdated, stripemodel.EventPriceDeleted:
			price, parseErr := stripemodel.ParsePrice(event.Object)
			if parseErr != nil {
				return parseErr
			}
			if event.Type == stripemodel.EventPriceDeleted {
				price.Deleted = true
			}
			outcome, applyErr = d.engine.Price(ctx, tx, price)

		case stripemodel.EventSubscriptionCreated, stripemodel.EventSubscriptionUpdated, stripemodel.EventSubscriptionDeleted:
			subscription, parseErr := stripemodel.ParseSubscription(event.Object)
			if parseErr != nil {
				return parseErr
			}
			outcome, applyErr = d.engine.Subscription(ctx, tx, subscription)
		}
		return applyErr
	})
	return outcome, err
}
