package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Upsert creates or overwrites the subscription keyed by its remote id.
	Upsert(ctx context.Context, db *gorm.DB, subscription *Subscription) (created bool, err error)
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Subscription, error)
	// ReplaceItems deletes every item of the subscription and inserts the
	// given set, so local items always equal the latest remote line items.
	ReplaceItems(ctx context.Context, db *gorm.DB, subscriptionID string, items []SubscriptionItem) error
	ListItems(ctx context.Context, db *gorm.DB, subscriptionID string) ([]SubscriptionItem, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, statuses []string) ([]Subscription, error)
	ListItemsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, statuses []string) ([]SubscriptionItem, error)
}
