// Package domain contains the product-to-feature association.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ProductFeature joins products to features. The live set for a product must
// exactly equal the tag set parsed from remote product metadata at last sync.
type ProductFeature struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	ProductID string       `gorm:"column:product_id;type:text;not null;index:ux_product_feature,unique"`
	FeatureID string       `gorm:"column:feature_id;type:text;not null;index:ux_product_feature,unique"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ProductFeature) TableName() string { return "product_features" }
