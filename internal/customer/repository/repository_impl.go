package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/stripesync/internal/customer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() customerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, link *customerdomain.StripeCustomer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO stripe_customers (user_id, customer_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`,
		link.UserID,
		link.CustomerID,
		link.CreatedAt,
		link.UpdatedAt,
	).Error
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*customerdomain.StripeCustomer, error) {
	var link customerdomain.StripeCustomer
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM stripe_customers WHERE user_id = ?`, userID,
	).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repo) FindByCustomerID(ctx context.Context, db *gorm.DB, customerID string) (*customerdomain.StripeCustomer, error) {
	var link customerdomain.StripeCustomer
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM stripe_customers WHERE customer_id = ?`, customerID,
	).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repo) AssignCustomerID(ctx context.Context, db *gorm.DB, userID snowflake.ID, customerID string) error {
	existing, err := r.FindByUserID(ctx, db, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return gorm.ErrRecordNotFound
	}
	if existing.CustomerID != nil {
		if *existing.CustomerID == customerID {
			return nil
		}
		return customerdomain.ErrCustomerIDImmutable
	}
	return db.WithContext(ctx).Exec(
		`UPDATE stripe_customers SET customer_id = ?, updated_at = ? WHERE user_id = ? AND customer_id IS NULL`,
		customerID,
		time.Now().UTC(),
		userID,
	).Error
}
