// Package domain contains the locally-defined feature model.
package domain

import "time"

// Feature is an application capability keyed by an opaque identifier. Rows
// are defined locally; reconciliation only auto-creates them when a product
// metadata tag has no match, using the tag itself as placeholder description.
type Feature struct {
	ID          string    `gorm:"primaryKey;column:feature_id;type:text"`
	Description *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Feature) TableName() string { return "features" }
