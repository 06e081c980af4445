// Package stripeapi wraps the remote billing API behind a narrow interface so
// sync and checkout code can be tested against a fake.
package stripeapi

import (
	"context"

	"github.com/smallbiznis/stripesync/internal/stripemodel"
)

// ListParams controls one page of a list call. Limit caps the page size; the
// remote API caps it at 100. StartingAfter is the cursor from the previous
// page's last object.
type ListParams struct {
	Limit         int
	StartingAfter string
}

// CheckoutParams describes a checkout session to create.
type CheckoutParams struct {
	CustomerID          string
	PriceID             string
	Quantity            int64
	SuccessURL          string
	CancelURL           string
	PaymentMethodTypes  []string
	Mode                string
	AllowPromotionCodes bool
	// TrialEnd is the unix timestamp the trial runs until, zero for none.
	TrialEnd int64
}

// CheckoutSession is the created session the front end redirects to.
type CheckoutSession struct {
	ID  string
	URL string
}

// PortalSession is a billing portal session for self-service management.
type PortalSession struct {
	ID  string
	URL string
}

// Client is the remote billing API surface this service consumes. List calls
// return one page plus the cursor for the next one; an empty cursor means the
// listing is exhausted.
type Client interface {
	ListCustomers(ctx context.Context, params ListParams) ([]stripemodel.Customer, string, error)
	ListProducts(ctx context.Context, params ListParams) ([]stripemodel.Product, string, error)
	ListPrices(ctx context.Context, params ListParams) ([]stripemodel.Price, string, error)
	// ListSubscriptions lists subscriptions filtered by status; "all" includes
	// ended and canceled ones.
	ListSubscriptions(ctx context.Context, status string, params ListParams) ([]stripemodel.Subscription, string, error)

	RetrieveCustomer(ctx context.Context, id string) (*stripemodel.Customer, error)
	CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (*stripemodel.Customer, error)

	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error)
}
