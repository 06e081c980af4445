package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/smallbiznis/stripesync/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() subscriptiondomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*subscriptiondomain.Subscription, error) {
	var subscription subscriptiondomain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM subscriptions WHERE subscription_id = ?`, id,
	).First(&subscription).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, subscription *subscriptiondomain.Subscription) (bool, error) {
	existing, err := r.FindByID(ctx, db, subscription.ID)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	if existing == nil {
		subscription.CreatedAt = now
		subscription.UpdatedAt = now
		return true, db.WithContext(ctx).Exec(
			`INSERT INTO subscriptions (
				subscription_id, user_id, status, period_start, period_end, cancel_at,
				cancel_at_period_end, ended_at, trial_start, trial_end, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			subscription.ID,
			subscription.UserID,
			subscription.Status,
			subscription.PeriodStart,
			subscription.PeriodEnd,
			subscription.CancelAt,
			subscription.CancelAtPeriodEnd,
			subscription.EndedAt,
			subscription.TrialStart,
			subscription.TrialEnd,
			subscription.CreatedAt,
			subscription.UpdatedAt,
		).Error
	}

	subscription.CreatedAt = existing.CreatedAt
	subscription.UpdatedAt = now
	return false, db.WithContext(ctx).Exec(
		`UPDATE subscriptions SET
			user_id = ?, status = ?, period_start = ?, period_end = ?, cancel_at = ?,
			cancel_at_period_end = ?, ended_at = ?, trial_start = ?, trial_end = ?, updated_at = ?
		 WHERE subscription_id = ?`,
		subscription.UserID,
		subscription.Status,
		subscription.PeriodStart,
		subscription.PeriodEnd,
		subscription.CancelAt,
		subscription.CancelAtPeriodEnd,
		subscription.EndedAt,
		subscription.TrialStart,
		subscription.TrialEnd,
		subscription.UpdatedAt,
		subscription.ID,
	).Error
}

func (r *repo) ReplaceItems(ctx context.Context, db *gorm.DB, subscriptionID string, items []subscriptiondomain.SubscriptionItem) error {
	if err := db.WithContext(ctx).Exec(
		`DELETE FROM subscription_items WHERE subscription_id = ?`,
		subscriptionID,
	).Error; err != nil {
		return err
	}

	for _, item := range items {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO subscription_items (sub_item_id, subscription_id, price_id, quantity, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			item.ID,
			item.SubscriptionID,
			item.PriceID,
			item.Quantity,
			item.CreatedAt,
		).Error; err != nil {
			return err
		}
	}

	return nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, subscriptionID string) ([]subscriptiondomain.SubscriptionItem, error) {
	var items []subscriptiondomain.SubscriptionItem
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM subscription_items WHERE subscription_id = ? ORDER BY sub_item_id ASC`,
		subscriptionID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, statuses []string) ([]subscriptiondomain.Subscription, error) {
	var subscriptions []subscriptiondomain.Subscription
	query := `SELECT * FROM subscriptions WHERE user_id = ?`
	args := []any{userID}
	if len(statuses) > 0 {
		query += ` AND status IN ?`
		args = append(args, statuses)
	}
	query += ` ORDER BY subscription_id ASC`

	err := db.WithContext(ctx).Raw(query, args...).Scan(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (r *repo) ListItemsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, statuses []string) ([]subscriptiondomain.SubscriptionItem, error) {
	var items []subscriptiondomain.SubscriptionItem
	query := `SELECT si.* FROM subscription_items si
		JOIN subscriptions s ON s.subscription_id = si.subscription_id
		WHERE s.user_id = ?`
	args := []any{userID}
	if len(statuses) > 0 {
		query += ` AND s.status IN ?`
		args = append(args, statuses)
	}
	query += ` ORDER BY si.sub_item_id ASC`

	err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
