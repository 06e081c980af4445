package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Service exposes read queries over mirrored subscription state.
type Service interface {
	// ListByUser returns the user's subscriptions, optionally filtered to
	// access-granting statuses only.
	ListByUser(ctx context.Context, userID snowflake.ID, currentOnly bool) ([]Response, error)
	// ListItemsByUser returns the line items of the user's subscriptions,
	// optionally filtered to access-granting statuses only.
	ListItemsByUser(ctx context.Context, userID snowflake.ID, currentOnly bool) ([]ItemResponse, error)
}

type Response struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	PeriodStart       *time.Time `json:"period_start"`
	PeriodEnd         *time.Time `json:"period_end"`
	CancelAt          *time.Time `json:"cancel_at"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
	EndedAt           *time.Time `json:"ended_at"`
	TrialStart        *time.Time `json:"trial_start"`
	TrialEnd          *time.Time `json:"trial_end"`
}

type ItemResponse struct {
	ID             string `json:"id"`
	SubscriptionID string `json:"subscription_id"`
	PriceID        string `json:"price_id"`
	Quantity       int64  `json:"quantity"`
}
