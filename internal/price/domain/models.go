// Package domain contains the mirrored price model.
package domain

import "time"

// Price mirrors a remote price. Freq is the derived billing frequency
// "{interval}_{interval_count}" and is null for one-time prices. Archiving a
// price remotely flips Active to false; rows are never removed.
type Price struct {
	ID         string    `gorm:"primaryKey;column:price_id;type:text"`
	ProductID  string    `gorm:"column:product_id;type:text;not null;index"`
	Nickname   *string   `gorm:"type:text"`
	UnitAmount int64     `gorm:"not null"`
	Freq       *string   `gorm:"type:text;index"`
	Active     bool      `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Price) TableName() string { return "prices" }
