package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// Upsert creates or overwrites the product keyed by its remote id.
	Upsert(ctx context.Context, db *gorm.DB, product *Product) (created bool, err error)
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Product, error)
	Deactivate(ctx context.Context, db *gorm.DB, id string) error
}
