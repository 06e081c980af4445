package repository

import (
	"context"
	"errors"
	"time"

	productdomain "github.com/smallbiznis/stripesync/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() productdomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*productdomain.Product, error) {
	var product productdomain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM products WHERE product_id = ?`, id,
	).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, product *productdomain.Product) (bool, error) {
	existing, err := r.FindByID(ctx, db, product.ID)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	if existing == nil {
		product.CreatedAt = now
		product.UpdatedAt = now
		return true, db.WithContext(ctx).Exec(
			`INSERT INTO products (product_id, active, name, description, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			product.ID,
			product.Active,
			product.Name,
			product.Description,
			product.CreatedAt,
			product.UpdatedAt,
		).Error
	}

	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = now
	return false, db.WithContext(ctx).Exec(
		`UPDATE products SET active = ?, name = ?, description = ?, updated_at = ? WHERE product_id = ?`,
		product.Active,
		product.Name,
		product.Description,
		product.UpdatedAt,
		product.ID,
	).Error
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET active = ?, updated_at = ? WHERE product_id = ?`,
		false,
		time.Now().UTC(),
		id,
	).Error
}
