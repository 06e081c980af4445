package stripemodel_test

import (
	"encoding/json"
	"testing"

	"github.com/smallbiznis/stripesync/internal/stripemodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProduct(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "prod_1",
		"active": true,
		"name": "Pro plan",
		"metadata": {"features": "  api_access  priority_support "}
	}`)

	product, err := stripemodel.ParseProduct(raw)
	require.NoError(t, err)
	assert.Equal(t, "prod_1", product.ID)
	assert.True(t, product.Active)
	require.NotNil(t, product.Name)
	assert.Equal(t, []string{"api_access", "priority_support"}, product.FeatureTags())
}

func TestParseProductFeatureTagsAbsent(t *testing.T) {
	product, err := stripemodel.ParseProduct(json.RawMessage(`{"id": "prod_2", "active": false}`))
	require.NoError(t, err)
	assert.Empty(t, product.FeatureTags())

	product, err = stripemodel.ParseProduct(json.RawMessage(`{
		"id": "prod_2", "active": false, "metadata": {"features": "   "}
	}`))
	require.NoError(t, err)
	assert.Empty(t, product.FeatureTags())
}

func TestParseProductMissingActive(t *testing.T) {
	_, err := stripemodel.ParseProduct(json.RawMessage(`{"id": "prod_3"}`))
	var schemaErr *stripemodel.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "active", schemaErr.Field)

	// deletion payloads only carry id and the deleted flag
	product, err := stripemodel.ParseProduct(json.RawMessage(`{"id": "prod_3", "deleted": true}`))
	require.NoError(t, err)
	assert.True(t, product.Deleted)
}

func TestParseCustomer(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "cus_1",
		"email": "jo@example.com",
		"name": "Jo",
		"created": 1700000000
	}`)

	customer, err := stripemodel.ParseCustomer(raw)
	require.NoError(t, err)
	assert.Equal(t, "cus_1", customer.ID)
	require.NotNil(t, customer.Email)
	assert.Equal(t, "jo@example.com", *customer.Email)
	require.NotNil(t, customer.Created)
	assert.Nil(t, customer.Phone)
}

func TestParseCustomerWrongType(t *testing.T) {
	_, err := stripemodel.ParseCustomer(json.RawMessage(`{"id": "cus_2", "email": 42}`))
	var schemaErr *stripemodel.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "customer", schemaErr.Entity)
}
