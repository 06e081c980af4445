package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Upsert creates or overwrites the price keyed by its remote id.
	Upsert(ctx context.Context, db *gorm.DB, price *Price) (created bool, err error)
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Price, error)
	Deactivate(ctx context.Context, db *gorm.DB, id string) error
	// ListPublic returns active prices of active products.
	ListPublic(ctx context.Context, db *gorm.DB) ([]Price, error)
	// ListSubscribable returns public prices excluding products the user
	// holds a current subscription for.
	ListSubscribable(ctx context.Context, db *gorm.DB, userID snowflake.ID, currentStatuses []string) ([]Price, error)
}
