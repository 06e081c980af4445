package repository

import (
	"context"
	"errors"
	"time"

	featuredomain "github.com/smallbiznis/stripesync/internal/feature/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() featuredomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*featuredomain.Feature, error) {
	var feature featuredomain.Feature
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM features WHERE feature_id = ?`, id,
	).First(&feature).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &feature, nil
}

func (r *repo) GetOrCreate(ctx context.Context, db *gorm.DB, id string) (*featuredomain.Feature, bool, error) {
	existing, err := r.FindByID(ctx, db, id)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now().UTC()
	description := id
	feature := &featuredomain.Feature{
		ID:          id,
		Description: &description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Exec(
		`INSERT INTO features (feature_id, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`,
		feature.ID,
		feature.Description,
		feature.CreatedAt,
		feature.UpdatedAt,
	).Error; err != nil {
		return nil, false, err
	}
	return feature, true, nil
}
