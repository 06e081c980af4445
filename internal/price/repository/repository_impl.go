package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	pricedomain "github.com/smallbiznis/stripesync/internal/price/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pricedomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*pricedomain.Price, error) {
	var price pricedomain.Price
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM prices WHERE price_id = ?`, id,
	).First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, price *pricedomain.Price) (bool, error) {
	existing, err := r.FindByID(ctx, db, price.ID)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	if existing == nil {
		price.CreatedAt = now
		price.UpdatedAt = now
		return true, db.WithContext(ctx).Exec(
			`INSERT INTO prices (price_id, product_id, nickname, unit_amount, freq, active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			price.ID,
			price.ProductID,
			price.Nickname,
			price.UnitAmount,
			price.Freq,
			price.Active,
			price.CreatedAt,
			price.UpdatedAt,
		).Error
	}

	price.CreatedAt = existing.CreatedAt
	price.UpdatedAt = now
	return false, db.WithContext(ctx).Exec(
		`UPDATE prices SET product_id = ?, nickname = ?, unit_amount = ?, freq = ?, active = ?, updated_at = ?
		 WHERE price_id = ?`,
		price.ProductID,
		price.Nickname,
		price.UnitAmount,
		price.Freq,
		price.Active,
		price.UpdatedAt,
		price.ID,
	).Error
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE prices SET active = ?, updated_at = ? WHERE price_id = ?`,
		false,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) ListPublic(ctx context.Context, db *gorm.DB) ([]pricedomain.Price, error) {
	var prices []pricedomain.Price
	err := db.WithContext(ctx).Raw(
		`SELECT pr.* FROM prices pr
		   JOIN products p ON p.product_id = pr.product_id
		  WHERE pr.active = ? AND p.active = ?
		  ORDER BY pr.price_id ASC`,
		true,
		true,
	).Scan(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *repo) ListSubscribable(ctx context.Context, db *gorm.DB, userID snowflake.ID, currentStatuses []string) ([]pricedomain.Price, error) {
	var prices []pricedomain.Price
	err := db.WithContext(ctx).Raw(
		`SELECT pr.* FROM prices pr
		   JOIN products p ON p.product_id = pr.product_id
		  WHERE pr.active = ? AND p.active = ?
		    AND pr.product_id NOT IN (
			SELECT cur.product_id FROM prices cur
			  JOIN subscription_items si ON si.price_id = cur.price_id
			  JOIN subscriptions s ON s.subscription_id = si.subscription_id
			 WHERE s.user_id = ? AND s.status IN ?
		    )
		  ORDER BY pr.price_id ASC`,
		true,
		true,
		userID,
		currentStatuses,
	).Scan(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}
