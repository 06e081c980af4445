package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/smallbiznis/stripesync/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo subscriptiondomain.Repository
}

type service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo subscriptiondomain.Repository
}

func NewService(p Params) subscriptiondomain.Service {
	return &service{db: p.DB, log: p.Log, repo: p.Repo}
}

func (s *service) ListByUser(ctx context.Context, userID snowflake.ID, currentOnly bool) ([]subscriptiondomain.Response, error) {
	var statuses []string
	if currentOnly {
		statuses = subscriptiondomain.AccessGrantingStatuses()
	}

	subscriptions, err := s.repo.ListByUser(ctx, s.db, userID, statuses)
	if err != nil {
		return nil, err
	}

	out := make([]subscriptiondomain.Response, 0, len(subscriptions))
	for _, sub := range subscriptions {
		out = append(out, subscriptiondomain.Response{
			ID:                sub.ID,
			Status:            sub.Status,
			PeriodStart:       sub.PeriodStart,
			PeriodEnd:         sub.PeriodEnd,
			CancelAt:          sub.CancelAt,
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
			EndedAt:           sub.EndedAt,
			TrialStart:        sub.TrialStart,
			TrialEnd:          sub.TrialEnd,
		})
	}
	return out, nil
}

func (s *service) ListItemsByUser(ctx context.Context, userID snowflake.ID, currentOnly bool) ([]subscriptiondomain.ItemResponse, error) {
	var statuses []string
	if currentOnly {
		statuses = subscriptiondomain.AccessGrantingStatuses()
	}

	items, err := s.repo.ListItemsByUser(ctx, s.db, userID, statuses)
	if err != nil {
		return nil, err
	}

	out := make([]subscriptiondomain.ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, subscriptiondomain.ItemResponse{
			ID:             item.ID,
			SubscriptionID: item.SubscriptionID,
			PriceID:        item.PriceID,
			Quantity:       item.Quantity,
		})
	}
	return out, nil
}
