// Package domain contains the local user identity model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is the local identity a subscription ultimately belongs to. Users are
// created by the application or by customer reconciliation when auto-creation
// is configured; reconciliation never deletes them.
type User struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	Email      string       `gorm:"type:text;not null;uniqueIndex"`
	Name       string       `gorm:"type:text"`
	DateJoined time.Time    `gorm:"not null"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// MatchField enumerates user attributes a remote customer may be matched on.
type MatchField string

const (
	MatchByEmail MatchField = "email"
	MatchByName  MatchField = "name"
)
