package stripemodel

import (
	"encoding/json"
	"time"
)

// EventType enumerates the remote event types this system understands.
// Anything outside the set decodes to EventTypeUnknown; the provider adds new
// types over time and old deployments must keep accepting deliveries.
type EventType string

const (
	EventCustomerCreated EventType = "customer.created"
	EventCustomerUpdated EventType = "customer.updated"
	EventCustomerDeleted EventType = "customer.deleted"

	EventProductCreated EventType = "product.created"
	EventProductUpdated EventType = "product.updated"
	EventProductDeleted EventType = "product.deleted"

	EventPriceCreated EventType = "price.created"
	EventPriceUpdated EventType = "price.updated"
	EventPriceDeleted EventType = "price.deleted"

	EventSubscriptionCreated      EventType = "customer.subscription.created"
	EventSubscriptionUpdated      EventType = "customer.subscription.updated"
	EventSubscriptionDeleted      EventType = "customer.subscription.deleted"
	EventSubscriptionTrialWillEnd EventType = "customer.subscription.trial_will_end"

	EventTypeUnknown EventType = ""
)

var knownEventTypes = map[EventType]struct{}{
	EventCustomerCreated:          {},
	EventCustomerUpdated:          {},
	EventCustomerDeleted:          {},
	EventProductCreated:           {},
	EventProductUpdated:           {},
	EventProductDeleted:           {},
	EventPriceCreated:             {},
	EventPriceUpdated:             {},
	EventPriceDeleted:             {},
	EventSubscriptionCreated:      {},
	EventSubscriptionUpdated:      {},
	EventSubscriptionDeleted:      {},
	EventSubscriptionTrialWillEnd: {},
}

// LookupEventType matches a declared type string against the closed set.
func LookupEventType(s string) (EventType, bool) {
	t := EventType(s)
	if _, ok := knownEventTypes[t]; ok {
		return t, true
	}
	return EventTypeUnknown, false
}

// Event is the typed envelope of a verified webhook delivery. Object holds
// the raw data.object payload for the entity-specific parsers.
type Event struct {
	ID       string
	Type     EventType
	RawType  string
	Created  time.Time
	Object   json.RawMessage
	Previous json.RawMessage
}

type eventWire struct {
	ID      *string `json:"id"`
	Type    *string `json:"type"`
	Created *int64  `json:"created"`
	Data    *struct {
		Object             json.RawMessage `json:"object"`
		PreviousAttributes json.RawMessage `json:"previous_attributes"`
	} `json:"data"`
}

// ParseEvent builds the typed envelope from a verified event body. An unknown
// type string is not an error; the caller checks Type against
// EventTypeUnknown and ignores the delivery.
func ParseEvent(raw json.RawMessage) (*Event, error) {
	var w eventWire
	if err := decode("event", raw, &w); err != nil {
		return nil, err
	}
	if w.ID == nil || *w.ID == "" {
		return nil, missingField("event", "id")
	}
	if w.Type == nil || *w.Type == "" {
		return nil, missingField("event", "type")
	}
	if w.Data == nil || len(w.Data.Object) == 0 {
		return nil, missingField("event", "data.object")
	}

	eventType, _ := LookupEventType(*w.Type)
	e := &Event{
		ID:       *w.ID,
		Type:     eventType,
		RawType:  *w.Type,
		Object:   w.Data.Object,
		Previous: w.Data.PreviousAttributes,
	}
	if w.Created != nil {
		e.Created = unixTime(*w.Created)
	}
	return e, nil
}
