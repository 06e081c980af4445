// Package domain contains the link between local users and remote customers.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// StripeCustomer links exactly one local user to a remote customer record.
// CustomerID is null while the link is transient; once set it is immutable
// and reconciliation must never overwrite it.
type StripeCustomer struct {
	UserID     snowflake.ID `gorm:"primaryKey"`
	CustomerID *string      `gorm:"type:text;uniqueIndex"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (StripeCustomer) TableName() string { return "stripe_customers" }
