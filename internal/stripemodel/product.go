package stripemodel

import (
	"encoding/json"
	"strings"
)

// Product mirrors the remote product object.
type Product struct {
	ID          string
	Active      bool
	Name        *string
	Description *string
	Deleted     bool
	Metadata    map[string]string
}

// FeatureTags parses the space-delimited feature tag list out of product
// metadata. A missing or empty "features" entry yields an empty set.
func (p *Product) FeatureTags() []string {
	raw, ok := p.Metadata["features"]
	if !ok {
		return nil
	}
	var tags []string
	for _, tag := range strings.Fields(raw) {
		tags = append(tags, tag)
	}
	return tags
}

type productWire struct {
	ID          *string           `json:"id"`
	Active      *bool             `json:"active"`
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Deleted     *bool             `json:"deleted"`
	Metadata    map[string]string `json:"metadata"`
}

// ParseProduct builds a Product from a JSON-decoded remote payload.
// id and active are always present for product events and lists.
func ParseProduct(raw json.RawMessage) (*Product, error) {
	var w productWire
	if err := decode("product", raw, &w); err != nil {
		return nil, err
	}
	if w.ID == nil || *w.ID == "" {
		return nil, missingField("product", "id")
	}

	p := &Product{
		ID:          *w.ID,
		Name:        w.Name,
		Description: w.Description,
		Metadata:    w.Metadata,
	}
	if w.Deleted != nil {
		p.Deleted = *w.Deleted
	}
	if w.Active != nil {
		p.Active = *w.Active
	} else if !p.Deleted {
		// deletion payloads carry only id+deleted; anything else must say active
		return nil, missingField("product", "active")
	}
	return p, nil
}

// ProductList is one page of the remote product list endpoint.
type ProductList struct {
	Data    []Product
	HasMore bool
}
