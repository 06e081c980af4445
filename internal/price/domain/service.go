package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// ListPublic returns every price a visitor may subscribe to.
	ListPublic(ctx context.Context) ([]Response, error)
	// ListSubscribable returns prices for products the user does not
	// currently hold an access-granting subscription for.
	ListSubscribable(ctx context.Context, userID snowflake.ID) ([]Response, error)
}

type Response struct {
	ID         string  `json:"price_id"`
	ProductID  string  `json:"product_id"`
	Nickname   *string `json:"nickname,omitempty"`
	UnitAmount int64   `json:"price"`
	Freq       *string `json:"freq,omitempty"`
	Active     bool    `json:"active"`
}
