package stripemodel

import (
	"encoding/json"
	"time"
)

// Customer mirrors the remote customer object. Only the id is guaranteed by
// every event and list context; all other fields may be absent or null.
type Customer struct {
	ID          string
	Email       *string
	Name        *string
	Description *string
	Phone       *string
	Created     *time.Time
	Deleted     bool
	Metadata    map[string]string
}

type customerWire struct {
	ID          *string           `json:"id"`
	Email       *string           `json:"email"`
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Phone       *string           `json:"phone"`
	Created     *int64            `json:"created"`
	Deleted     *bool             `json:"deleted"`
	Metadata    map[string]string `json:"metadata"`
}

// ParseCustomer builds a Customer from a JSON-decoded remote payload.
func ParseCustomer(raw json.RawMessage) (*Customer, error) {
	var w customerWire
	if err := decode("customer", raw, &w); err != nil {
		return nil, err
	}
	if w.ID == nil || *w.ID == "" {
		return nil, missingField("customer", "id")
	}

	c := &Customer{
		ID:          *w.ID,
		Email:       w.Email,
		Name:        w.Name,
		Description: w.Description,
		Phone:       w.Phone,
		Created:     optionalTime(w.Created),
		Metadata:    w.Metadata,
	}
	if w.Deleted != nil {
		c.Deleted = *w.Deleted
	}
	return c, nil
}

// CustomerList is one page of the remote customer list endpoint.
type CustomerList struct {
	Data    []Customer
	HasMore bool
}
