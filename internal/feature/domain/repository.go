package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// GetOrCreate returns the feature with the given id, creating it with a
	// placeholder description when absent. The second return reports whether
	// a new row was created.
	GetOrCreate(ctx context.Context, db *gorm.DB, id string) (*Feature, bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Feature, error)
}
