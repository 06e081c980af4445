// Package domain contains mirrored subscription models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Subscription mirrors a remote subscription. Status and every timestamp are
// copied verbatim from the remote payload; nothing here is derived.
type Subscription struct {
	ID                string       `gorm:"primaryKey;column:subscription_id;type:text"`
	UserID            snowflake.ID `gorm:"not null;index:idx_sub_user_status"`
	Status            string       `gorm:"type:text;not null;index:idx_sub_user_status"`
	PeriodStart       *time.Time   `gorm:""`
	PeriodEnd         *time.Time   `gorm:""`
	CancelAt          *time.Time   `gorm:""`
	CancelAtPeriodEnd bool         `gorm:"not null"`
	EndedAt           *time.Time   `gorm:""`
	TrialStart        *time.Time   `gorm:""`
	TrialEnd          *time.Time   `gorm:""`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// SubscriptionItem is one line item of a subscription, referencing a price.
// The live item set for a subscription is fully replaced on every update.
type SubscriptionItem struct {
	ID             string    `gorm:"primaryKey;column:sub_item_id;type:text"`
	SubscriptionID string    `gorm:"column:subscription_id;type:text;not null;index"`
	PriceID        string    `gorm:"column:price_id;type:text;not null;index"`
	Quantity       int64     `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SubscriptionItem) TableName() string { return "subscription_items" }

// AccessGrantingStatuses returns the closed set of statuses that entitle a
// user to product access. Downstream queries read it; reconciliation never
// mutates it.
func AccessGrantingStatuses() []string {
	return []string{"active", "past_due", "trialing"}
}
