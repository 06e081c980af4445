package stripeapi

import (
	"context"

	"github.com/smallbiznis/stripesync/internal/config"
	"github.com/smallbiznis/stripesync/internal/stripemodel"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Settings *config.SettingsHolder
}

type client struct {
	sc  *stripe.Client
	log *zap.Logger
}

// New builds the real API client from the configured secret key.
func New(p Params) Client {
	return &client{
		sc:  stripe.NewClient(p.Settings.Get().APISecret, nil),
		log: p.Log,
	}
}

func (c *client) ListCustomers(ctx context.Context, params ListParams) ([]stripemodel.Customer, string, error) {
	listParams := &stripe.CustomerListParams{}
	if params.Limit > 0 {
		listParams.Limit = stripe.Int64(int64(params.Limit))
	}
	if params.StartingAfter != "" {
		listParams.StartingAfter = stripe.String(params.StartingAfter)
	}

	var out []stripemodel.Customer
	var lastID string
	for cust, err := range c.sc.V1Customers.List(ctx, listParams) {
		if err != nil {
			return nil, "", err
		}
		if cust == nil {
			continue
		}
		out = append(out, mapCustomer(cust))
		lastID = cust.ID
		if params.Limit > 0 && len(out) == params.Limit {
			break
		}
	}
	return out, nextCursor(len(out), params.Limit, lastID), nil
}

func (c *client) ListProducts(ctx context.Context, params ListParams) ([]stripemodel.Product, string, error) {
	listParams := &stripe.ProductListParams{}
	if params.Limit > 0 {
		listParams.Limit = stripe.Int64(int64(params.Limit))
	}
	if params.StartingAfter != "" {
		listParams.StartingAfter = stripe.String(params.StartingAfter)
	}

	var out []stripemodel.Product
	var lastID string
	for prod, err := range c.sc.V1Products.List(ctx, listParams) {
		if err != nil {
			return nil, "", err
		}
		if prod == nil {
			continue
		}
		out = append(out, mapProduct(prod))
		lastID = prod.ID
		if params.Limit > 0 && len(out) == params.Limit {
			break
		}
	}
	return out, nextCursor(len(out), params.Limit, lastID), nil
}

func (c *client) ListPrices(ctx context.Context, params ListParams) ([]stripemodel.Price, string, error) {
	listParams := &stripe.PriceListParams{}
	if params.Limit > 0 {
		listParams.Limit = stripe.Int64(int64(params.Limit))
	}
	if params.StartingAfter != "" {
		listParams.StartingAfter = stripe.String(params.StartingAfter)
	}

	var out []stripemodel.Price
	var lastID string
	for price, err := range c.sc.V1Prices.List(ctx, listParams) {
		if err != nil {
			return nil, "", err
		}
		if price == nil {
			continue
		}
		mapped, err := mapPrice(price)
		if err != nil {
			return nil, "", err
		}
		out = append(out, mapped)
		lastID = price.ID
		if params.Limit > 0 && len(out) == params.Limit {
			break
		}
	}
	return out, nextCursor(len(out), params.Limit, lastID), nil
}

func (c *client) ListSubscriptions(ctx context.Context, status string, params ListParams) ([]stripemodel.Subscription, string, error) {
	listParams := &stripe.SubscriptionListParams{}
	if status != "" {
		listParams.Status = stripe.String(status)
	}
	if params.Limit > 0 {
		listParams.Limit = stripe.Int64(int64(params.Limit))
	}
	if params.StartingAfter != "" {
		listParams.StartingAfter = stripe.String(params.StartingAfter)
	}

	var out []stripemodel.Subscription
	var lastID string
	for sub, err := range c.sc.V1Subscriptions.List(ctx, listParams) {
		if err != nil {
			return nil, "", err
		}
		if sub == nil {
			continue
		}
		mapped, err := mapSubscription(sub)
		if err != nil {
			return nil, "", err
		}
		out = append(out, mapped)
		lastID = sub.ID
		if params.Limit > 0 && len(out) == params.Limit {
			break
		}
	}
	return out, nextCursor(len(out), params.Limit, lastID), nil
}

func (c *client) RetrieveCustomer(ctx context.Context, id string) (*stripemodel.Customer, error) {
	cust, err := c.sc.V1Customers.Retrieve(ctx, id, &stripe.CustomerRetrieveParams{})
	if err != nil {
		return nil, err
	}
	mapped := mapCustomer(cust)
	return &mapped, nil
}

func (c *client) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (*stripemodel.Customer, error) {
	params := &stripe.CustomerCreateParams{Metadata: metadata}
	if email != "" {
		params.Email = stripe.String(email)
	}
	if name != "" {
		params.Name = stripe.String(name)
	}

	cust, err := c.sc.V1Customers.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	c.log.Info("created remote customer", zap.String("customer_id", cust.ID))
	mapped := mapCustomer(cust)
	return &mapped, nil
}

func (c *client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	createParams := &stripe.CheckoutSessionCreateParams{
		Customer:           stripe.String(params.CustomerID),
		Mode:               stripe.String(params.Mode),
		SuccessURL:         stripe.String(params.SuccessURL),
		CancelURL:          stripe.String(params.CancelURL),
		PaymentMethodTypes: stripe.StringSlice(params.PaymentMethodTypes),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(params.PriceID),
				Quantity: stripe.Int64(params.Quantity),
			},
		},
	}
	if params.AllowPromotionCodes {
		createParams.AllowPromotionCodes = stripe.Bool(true)
	}
	if params.TrialEnd > 0 {
		createParams.SubscriptionData = &stripe.CheckoutSessionCreateSubscriptionDataParams{
			TrialEnd: stripe.Int64(params.TrialEnd),
		}
	}

	session, err := c.sc.V1CheckoutSessions.Create(ctx, createParams)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (c *client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	session, err := c.sc.V1BillingPortalSessions.Create(ctx, &stripe.BillingPortalSessionCreateParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		return nil, err
	}
	return &PortalSession{ID: session.ID, URL: session.URL}, nil
}

func nextCursor(count, limit int, lastID string) string {
	if limit > 0 && count == limit {
		return lastID
	}
	return ""
}
