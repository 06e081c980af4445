package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ErrCustomerIDImmutable is returned when a write would overwrite an already
// assigned remote customer id.
var ErrCustomerIDImmutable = errors.New("stripe customer id is immutable once set")

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, link *StripeCustomer) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*StripeCustomer, error)
	FindByCustomerID(ctx context.Context, db *gorm.DB, customerID string) (*StripeCustomer, error)
	// AssignCustomerID sets the remote id on a link that does not have one
	// yet. It fails with ErrCustomerIDImmutable if a different id is present.
	AssignCustomerID(ctx context.Context, db *gorm.DB, userID snowflake.ID, customerID string) error
}
