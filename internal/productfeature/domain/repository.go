package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListByProduct(ctx context.Context, db *gorm.DB, productID string) ([]ProductFeature, error)
	// DeleteNotIn removes associations whose feature is outside the given
	// set; an empty set removes every association for the product.
	DeleteNotIn(ctx context.Context, db *gorm.DB, productID string, featureIDs []string) error
	// Ensure inserts the association when it does not exist yet.
	Ensure(ctx context.Context, db *gorm.DB, node *snowflake.Node, productID, featureID string) error
}
