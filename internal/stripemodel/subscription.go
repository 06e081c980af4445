package stripemodel

import (
	"encoding/json"
	"time"
)

// SubscriptionStatus is the closed set of remote subscription statuses.
type SubscriptionStatus string

const (
	StatusActive            SubscriptionStatus = "active"
	StatusPastDue           SubscriptionStatus = "past_due"
	StatusUnpaid            SubscriptionStatus = "unpaid"
	StatusCanceled          SubscriptionStatus = "canceled"
	StatusIncomplete        SubscriptionStatus = "incomplete"
	StatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	StatusTrialing          SubscriptionStatus = "trialing"
	StatusEnded             SubscriptionStatus = "ended"
)

// ParseSubscriptionStatus validates s against the closed status set.
func ParseSubscriptionStatus(s string) (SubscriptionStatus, error) {
	switch SubscriptionStatus(s) {
	case StatusActive, StatusPastDue, StatusUnpaid, StatusCanceled,
		StatusIncomplete, StatusIncompleteExpired, StatusTrialing, StatusEnded:
		return SubscriptionStatus(s), nil
	default:
		return "", invalidEnum("subscription", "status", s)
	}
}

// SubscriptionItem is one line item of a remote subscription.
type SubscriptionItem struct {
	ID       string
	PriceID  string
	Quantity int64
}

// Subscription mirrors the remote subscription object. Timestamps are copied
// verbatim and independently nullable.
type Subscription struct {
	ID                 string
	CustomerID         string
	Status             SubscriptionStatus
	CancelAtPeriodEnd  bool
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAt           *time.Time
	EndedAt            *time.Time
	TrialStart         *time.Time
	TrialEnd           *time.Time
	Items              []SubscriptionItem
}

type subscriptionItemWire struct {
	ID       *string     `json:"id"`
	Price    *idOrObject `json:"price"`
	Quantity *int64      `json:"quantity"`
}

type subscriptionWire struct {
	ID                 *string     `json:"id"`
	Customer           *idOrObject `json:"customer"`
	Status             *string     `json:"status"`
	CancelAtPeriodEnd  *bool   `json:"cancel_at_period_end"`
	CurrentPeriodStart *int64  `json:"current_period_start"`
	CurrentPeriodEnd   *int64  `json:"current_period_end"`
	CancelAt           *int64  `json:"cancel_at"`
	EndedAt            *int64  `json:"ended_at"`
	TrialStart         *int64  `json:"trial_start"`
	TrialEnd           *int64  `json:"trial_end"`
	Items              *struct {
		Data []subscriptionItemWire `json:"data"`
	} `json:"items"`
}

// ParseSubscription builds a Subscription from a JSON-decoded remote payload.
// id, customer, status and items are always present for subscription events
// and lists; every timestamp is optional.
func ParseSubscription(raw json.RawMessage) (*Subscription, error) {
	var w subscriptionWire
	if err := decode("subscription", raw, &w); err != nil {
		return nil, err
	}
	if w.ID == nil || *w.ID == "" {
		return nil, missingField("subscription", "id")
	}
	if w.Customer == nil || w.Customer.ID == "" {
		return nil, missingField("subscription", "customer")
	}
	if w.Status == nil {
		return nil, missingField("subscription", "status")
	}
	status, err := ParseSubscriptionStatus(*w.Status)
	if err != nil {
		return nil, err
	}
	if w.Items == nil {
		return nil, missingField("subscription", "items")
	}

	sub := &Subscription{
		ID:                 *w.ID,
		CustomerID:         w.Customer.ID,
		Status:             status,
		CurrentPeriodStart: optionalTime(w.CurrentPeriodStart),
		CurrentPeriodEnd:   optionalTime(w.CurrentPeriodEnd),
		CancelAt:           optionalTime(w.CancelAt),
		EndedAt:            optionalTime(w.EndedAt),
		TrialStart:         optionalTime(w.TrialStart),
		TrialEnd:           optionalTime(w.TrialEnd),
	}
	if w.CancelAtPeriodEnd != nil {
		sub.CancelAtPeriodEnd = *w.CancelAtPeriodEnd
	}

	for _, itemWire := range w.Items.Data {
		if itemWire.ID == nil || *itemWire.ID == "" {
			return nil, missingField("subscription", "items.data.id")
		}
		if itemWire.Price == nil || itemWire.Price.ID == "" {
			return nil, missingField("subscription", "items.data.price")
		}
		item := SubscriptionItem{ID: *itemWire.ID, PriceID: itemWire.Price.ID, Quantity: 1}
		if itemWire.Quantity != nil {
			if *itemWire.Quantity < 1 {
				return nil, schemaErr("subscription", "items.data.quantity", "must be a positive integer")
			}
			item.Quantity = *itemWire.Quantity
		}
		sub.Items = append(sub.Items, item)
	}
	return sub, nil
}

// SubscriptionList is one page of the remote subscription list endpoint.
type SubscriptionList struct {
	Data    []Subscription
	HasMore bool
}
