package stripeapi

import (
	"testing"

	"github.com/smallbiznis/stripesync/internal/stripemodel"
	"github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPriceValidatesEnums(t *testing.T) {
	var schemaErr *stripemodel.SchemaError

	_, err := mapPrice(&stripe.Price{
		ID:      "price_1",
		Type:    "bundle",
		Product: &stripe.Product{ID: "prod_1"},
	})
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "type", schemaErr.Field)

	_, err = mapPrice(&stripe.Price{
		ID:        "price_2",
		Type:      stripe.PriceTypeRecurring,
		Product:   &stripe.Product{ID: "prod_1"},
		Recurring: &stripe.PriceRecurring{Interval: "fortnight", IntervalCount: 1},
	})
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "recurring.interval", schemaErr.Field)

	mapped, err := mapPrice(&stripe.Price{
		ID:        "price_3",
		Type:      stripe.PriceTypeRecurring,
		Product:   &stripe.Product{ID: "prod_1"},
		Recurring: &stripe.PriceRecurring{Interval: stripe.PriceRecurringIntervalMonth, IntervalCount: 1},
	})
	require.NoError(t, err)
	require.NotNil(t, mapped.Recurring)
	assert.Equal(t, stripemodel.IntervalMonth, mapped.Recurring.Interval)
	assert.Equal(t, stripemodel.UsageTypeLicensed, mapped.Recurring.UsageType)
}

func TestMapSubscriptionValidatesStatus(t *testing.T) {
	var schemaErr *stripemodel.SchemaError

	_, err := mapSubscription(&stripe.Subscription{
		ID:       "sub_1",
		Status:   "paused",
		Customer: &stripe.Customer{ID: "cus_1"},
	})
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "status", schemaErr.Field)

	mapped, err := mapSubscription(&stripe.Subscription{
		ID:       "sub_2",
		Status:   stripe.SubscriptionStatusActive,
		Customer: &stripe.Customer{ID: "cus_2"},
	})
	require.NoError(t, err)
	assert.Equal(t, stripemodel.StatusActive, mapped.Status)
	assert.Equal(t, "cus_2", mapped.CustomerID)
}
