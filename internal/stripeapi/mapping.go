package stripeapi

import (
	"time"

	"github.com/smallbiznis/stripesync/internal/stripemodel"
	"github.com/stripe/stripe-go/v82"
)

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func tsPtr(v int64) *time.Time {
	if v == 0 {
		return nil
	}
	t := time.Unix(v, 0).UTC()
	return &t
}

func mapCustomer(c *stripe.Customer) stripemodel.Customer {
	if c == nil {
		return stripemodel.Customer{}
	}
	return stripemodel.Customer{
		ID:          c.ID,
		Email:       strPtr(c.Email),
		Name:        strPtr(c.Name),
		Description: strPtr(c.Description),
		Phone:       strPtr(c.Phone),
		Created:     tsPtr(c.Created),
		Deleted:     c.Deleted,
		Metadata:    c.Metadata,
	}
}

func mapProduct(p *stripe.Product) stripemodel.Product {
	if p == nil {
		return stripemodel.Product{}
	}
	return stripemodel.Product{
		ID:          p.ID,
		Active:      p.Active,
		Name:        strPtr(p.Name),
		Description: strPtr(p.Description),
		Deleted:     p.Deleted,
		Metadata:    p.Metadata,
	}
}

// mapPrice runs SDK values through the same closed-set validation as payload
// parsing, so list results cannot smuggle in enum values the webhook path
// would reject.
func mapPrice(p *stripe.Price) (stripemodel.Price, error) {
	if p == nil {
		return stripemodel.Price{}, nil
	}
	if p.Deleted {
		return stripemodel.Price{ID: p.ID, Deleted: true}, nil
	}

	priceType, err := stripemodel.ParsePriceType(string(p.Type))
	if err != nil {
		return stripemodel.Price{}, err
	}
	out := stripemodel.Price{
		ID:       p.ID,
		Active:   p.Active,
		Nickname: strPtr(p.Nickname),
		Currency: string(p.Currency),
		Type:     priceType,
		Metadata: p.Metadata,
	}
	if p.Product != nil {
		out.ProductID = p.Product.ID
	}
	if p.UnitAmount != 0 {
		amount := p.UnitAmount
		out.UnitAmount = &amount
	}
	if p.Recurring != nil {
		interval, err := stripemodel.ParseRecurringInterval(string(p.Recurring.Interval))
		if err != nil {
			return stripemodel.Price{}, err
		}
		usage := stripemodel.UsageTypeLicensed
		if p.Recurring.UsageType != "" {
			usage, err = stripemodel.ParseUsageType(string(p.Recurring.UsageType))
			if err != nil {
				return stripemodel.Price{}, err
			}
		}
		out.Recurring = &stripemodel.Recurring{
			Interval:      interval,
			IntervalCount: p.Recurring.IntervalCount,
			UsageType:     usage,
		}
	}
	return out, nil
}

func mapSubscription(s *stripe.Subscription) (stripemodel.Subscription, error) {
	if s == nil {
		return stripemodel.Subscription{}, nil
	}

	status, err := stripemodel.ParseSubscriptionStatus(string(s.Status))
	if err != nil {
		return stripemodel.Subscription{}, err
	}
	out := stripemodel.Subscription{
		ID:                s.ID,
		Status:            status,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		CancelAt:          tsPtr(s.CancelAt),
		EndedAt:           tsPtr(s.EndedAt),
		TrialStart:        tsPtr(s.TrialStart),
		TrialEnd:          tsPtr(s.TrialEnd),
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.Items != nil {
		for _, item := range s.Items.Data {
			if item == nil {
				continue
			}
			mapped := stripemodel.SubscriptionItem{ID: item.ID, Quantity: item.Quantity}
			if item.Price != nil {
				mapped.PriceID = item.Price.ID
			}
			out.Items = append(out.Items, mapped)
		}
		// the period lives on items now; the first item carries the
		// subscription's billing cycle
		if len(s.Items.Data) > 0 && s.Items.Data[0] != nil {
			out.CurrentPeriodStart = tsPtr(s.Items.Data[0].CurrentPeriodStart)
			out.CurrentPeriodEnd = tsPtr(s.Items.Data[0].CurrentPeriodEnd)
		}
	}
	return out, nil
}
