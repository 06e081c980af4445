package stripemodel

import (
	"encoding/json"
	"fmt"
)

// RecurringInterval is the closed set of billing intervals.
type RecurringInterval string

const (
	IntervalDay   RecurringInterval = "day"
	IntervalWeek  RecurringInterval = "week"
	IntervalMonth RecurringInterval = "month"
	IntervalYear  RecurringInterval = "year"
)

// UsageType is the closed set of recurring usage types.
type UsageType string

const (
	UsageTypeLicensed UsageType = "licensed"
	UsageTypeMetered  UsageType = "metered"
)

// PriceType is the closed set of price types.
type PriceType string

const (
	PriceTypeOneTime   PriceType = "one_time"
	PriceTypeRecurring PriceType = "recurring"
)

// Recurring describes the billing cadence of a recurring price.
type Recurring struct {
	Interval      RecurringInterval
	IntervalCount int64
	UsageType     UsageType
}

// Price mirrors the remote price object. ProductID resolves whether the
// payload carried a bare id or an expanded product object.
type Price struct {
	ID         string
	ProductID  string
	Active     bool
	Nickname   *string
	UnitAmount *int64
	Currency   string
	Type       PriceType
	Recurring  *Recurring
	Deleted    bool
	Metadata   map[string]string
}

// Frequency derives the local billing-frequency string
// "{interval}_{interval_count}" for recurring prices, nil for one-time.
func (p *Price) Frequency() *string {
	if p.Recurring == nil {
		return nil
	}
	freq := fmt.Sprintf("%s_%d", p.Recurring.Interval, p.Recurring.IntervalCount)
	return &freq
}

type recurringWire struct {
	Interval      *string `json:"interval"`
	IntervalCount *int64  `json:"interval_count"`
	UsageType     *string `json:"usage_type"`
}

type priceWire struct {
	ID         *string           `json:"id"`
	Product    *idOrObject       `json:"product"`
	Active     *bool             `json:"active"`
	Nickname   *string           `json:"nickname"`
	UnitAmount *int64            `json:"unit_amount"`
	Currency   *string           `json:"currency"`
	Type       *string           `json:"type"`
	Recurring  *recurringWire    `json:"recurring"`
	Deleted    *bool             `json:"deleted"`
	Metadata   map[string]string `json:"metadata"`
}

// ParsePrice builds a Price from a JSON-decoded remote payload.
// id, product, active and type are always present for price events and lists.
func ParsePrice(raw json.RawMessage) (*Price, error) {
	var w priceWire
	if err := decode("price", raw, &w); err != nil {
		return nil, err
	}
	if w.ID == nil || *w.ID == "" {
		return nil, missingField("price", "id")
	}

	p := &Price{
		ID:         *w.ID,
		Nickname:   w.Nickname,
		UnitAmount: w.UnitAmount,
		Metadata:   w.Metadata,
	}
	if w.Deleted != nil {
		p.Deleted = *w.Deleted
	}
	if p.Deleted {
		return p, nil
	}

	if w.Product == nil || w.Product.ID == "" {
		return nil, missingField("price", "product")
	}
	p.ProductID = w.Product.ID
	if w.Active == nil {
		return nil, missingField("price", "active")
	}
	p.Active = *w.Active
	if w.Currency != nil {
		p.Currency = *w.Currency
	}
	if w.Type == nil {
		return nil, missingField("price", "type")
	}
	priceType, err := ParsePriceType(*w.Type)
	if err != nil {
		return nil, err
	}
	p.Type = priceType

	if p.Type == PriceTypeRecurring {
		rec, err := parseRecurring(w.Recurring)
		if err != nil {
			return nil, err
		}
		p.Recurring = rec
	}
	return p, nil
}

func parseRecurring(w *recurringWire) (*Recurring, error) {
	if w == nil {
		return nil, missingField("price", "recurring")
	}
	if w.Interval == nil {
		return nil, missingField("price", "recurring.interval")
	}
	if w.IntervalCount == nil {
		return nil, missingField("price", "recurring.interval_count")
	}

	rec := &Recurring{IntervalCount: *w.IntervalCount}
	interval, err := ParseRecurringInterval(*w.Interval)
	if err != nil {
		return nil, err
	}
	rec.Interval = interval

	if w.UsageType != nil {
		usage, err := ParseUsageType(*w.UsageType)
		if err != nil {
			return nil, err
		}
		rec.UsageType = usage
	} else {
		rec.UsageType = UsageTypeLicensed
	}
	return rec, nil
}

// ParsePriceType validates s against the closed price type set.
func ParsePriceType(s string) (PriceType, error) {
	switch PriceType(s) {
	case PriceTypeOneTime, PriceTypeRecurring:
		return PriceType(s), nil
	default:
		return "", invalidEnum("price", "type", s)
	}
}

// ParseRecurringInterval validates s against the closed interval set.
func ParseRecurringInterval(s string) (RecurringInterval, error) {
	switch RecurringInterval(s) {
	case IntervalDay, IntervalWeek, IntervalMonth, IntervalYear:
		return RecurringInterval(s), nil
	default:
		return "", invalidEnum("price", "recurring.interval", s)
	}
}

// ParseUsageType validates s against the closed usage type set.
func ParseUsageType(s string) (UsageType, error) {
	switch UsageType(s) {
	case UsageTypeLicensed, UsageTypeMetered:
		return UsageType(s), nil
	default:
		return "", invalidEnum("price", "recurring.usage_type", s)
	}
}

// PriceList is one page of the remote price list endpoint.
type PriceList struct {
	Data    []Price
	HasMore bool
}
