// Package domain contains the mirrored product model.
package domain

import "time"

// Product mirrors a remote product. A remote "deleted" event flips Active to
// false; rows are never removed so prices and history keep their references.
type Product struct {
	ID          string    `gorm:"primaryKey;column:product_id;type:text"`
	Active      bool      `gorm:"not null"`
	Name        *string   `gorm:"type:text"`
	Description *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }
