package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	pricedomain "github.com/smallbiznis/stripesync/internal/price/domain"
	subscriptiondomain "github.com/smallbiznis/stripesync/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo pricedomain.Repository
}

type service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo pricedomain.Repository
}

func NewService(p Params) pricedomain.Service {
	return &service{db: p.DB, log: p.Log, repo: p.Repo}
}

func (s *service) ListPublic(ctx context.Context) ([]pricedomain.Response, error) {
	prices, err := s.repo.ListPublic(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return toResponses(prices), nil
}

func (s *service) ListSubscribable(ctx context.Context, userID snowflake.ID) ([]pricedomain.Response, error) {
	prices, err := s.repo.ListSubscribable(ctx, s.db, userID, subscriptiondomain.AccessGrantingStatuses())
	if err != nil {
		return nil, err
	}
	return toResponses(prices), nil
}

func toResponses(prices []pricedomain.Price) []pricedomain.Response {
	out := make([]pricedomain.Response, 0, len(prices))
	for _, price := range prices {
		out = append(out, pricedomain.Response{
			ID:         price.ID,
			ProductID:  price.ProductID,
			Nickname:   price.Nickname,
			UnitAmount: price.UnitAmount,
			Freq:       price.Freq,
			Active:     price.Active,
		})
	}
	return out
}
