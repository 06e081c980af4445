package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	productfeaturedomain "github.com/smallbiznis/stripesync/internal/productfeature/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() productfeaturedomain.Repository {
	return &repo{}
}

func (r *repo) ListByProduct(ctx context.Context, db *gorm.DB, productID string) ([]productfeaturedomain.ProductFeature, error) {
	var items []productfeaturedomain.ProductFeature
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM product_features WHERE product_id = ? ORDER BY created_at ASC`,
		productID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteNotIn(ctx context.Context, db *gorm.DB, productID string, featureIDs []string) error {
	if len(featureIDs) == 0 {
		return db.WithContext(ctx).Exec(
			`DELETE FROM product_features WHERE product_id = ?`,
			productID,
		).Error
	}
	return db.WithContext(ctx).Exec(
		`DELETE FROM product_features WHERE product_id = ? AND feature_id NOT IN ?`,
		productID,
		featureIDs,
	).Error
}

func (r *repo) Ensure(ctx context.Context, db *gorm.DB, node *snowflake.Node, productID, featureID string) error {
	var count int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM product_features WHERE product_id = ? AND feature_id = ?`,
		productID,
		featureID,
	).Scan(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO product_features (id, product_id, feature_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		node.Generate(),
		productID,
		featureID,
		time.Now().UTC(),
	).Error
}
