// Package checkout provisions remote customers and starts checkout and
// billing portal sessions for local users.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stripesync/internal/config"
	customerdomain "github.com/smallbiznis/stripesync/internal/customer/domain"
	"github.com/smallbiznis/stripesync/internal/stripeapi"
	"github.com/smallbiznis/stripesync/pkg/db"
	userdomain "github.com/smallbiznis/stripesync/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when the referenced local user does not exist.
var ErrUserNotFound = errors.New("user not found")

// minTrialLead is the shortest lead the remote API accepts for trial_end,
// with an hour of slack over its documented 48h minimum.
const minTrialLead = 49 * time.Hour

// Service is the checkout surface. Every method resolves the local user's
// customer link first and provisions a remote customer at most once per user.
type Service interface {
	// GetOrCreateStripeCustomer resolves the customer link for the
	// referenced user, creating the remote customer and the link when
	// either is missing.
	GetOrCreateStripeCustomer(ctx context.Context, ref customerdomain.Ref) (*customerdomain.StripeCustomer, error)
	// CreateCheckoutSession starts a checkout session for the user and
	// price. With trial enabled the trial runs until the user's join date
	// plus the configured free trial days; users past that window get no
	// trial.
	CreateCheckoutSession(ctx context.Context, userID snowflake.ID, priceID string, quantity int64, trial bool) (*stripeapi.CheckoutSession, error)
	// CreatePortalSession starts a billing portal session for self-service
	// subscription management.
	CreatePortalSession(ctx context.Context, userID snowflake.ID) (*stripeapi.PortalSession, error)
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Settings  *config.SettingsHolder
	API       stripeapi.Client
	Users     userdomain.Repository
	Customers customerdomain.Repository
}

type service struct {
	db        *gorm.DB
	log       *zap.Logger
	settings  *config.SettingsHolder
	api       stripeapi.Client
	users     userdomain.Repository
	customers customerdomain.Repository
}

func NewService(p Params) Service {
	return &service{
		db:        p.DB,
		log:       p.Log,
		settings:  p.Settings,
		api:       p.API,
		users:     p.Users,
		customers: p.Customers,
	}
}

func (s *service) GetOrCreateStripeCustomer(ctx context.Context, ref customerdomain.Ref) (*customerdomain.StripeCustomer, error) {
	user, err := s.resolveUser(ctx, ref)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	var link *customerdomain.StripeCustomer
	err = s.db.Transaction(func(tx *gorm.DB) error {
		link, err = s.customers.FindByUserID(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		if link != nil && link.CustomerID != nil {
			return nil
		}

		// provision exactly one remote customer per user; the link row
		// exists before the remote call so a concurrent caller finds it
		if link == nil {
			link = &customerdomain.StripeCustomer{UserID: user.ID}
			if err := s.customers.Insert(ctx, tx, link); err != nil {
				return err
			}
		}

		remote, err := s.api.CreateCustomer(ctx, user.Email, user.Name, map[string]string{
			"user_id": user.ID.String(),
		})
		if err != nil {
			return err
		}
		if err := s.customers.AssignCustomerID(ctx, tx, user.ID, remote.ID); err != nil {
			return err
		}
		link.CustomerID = &remote.ID
		return nil
	})
	if err != nil {
		// a concurrent caller inserted the link first; serve theirs
		if db.IsDuplicateKeyErr(err) {
			return s.customers.FindByUserID(ctx, s.db, user.ID)
		}
		return nil, err
	}
	return link, nil
}

func (s *service) resolveUser(ctx context.Context, ref customerdomain.Ref) (*userdomain.User, error) {
	switch ref.Kind {
	case customerdomain.RefByUser:
		return ref.User, nil
	case customerdomain.RefByUserID:
		return s.users.FindByID(ctx, s.db, ref.UserID)
	case customerdomain.RefByEmail:
		return s.users.FindByEmail(ctx, s.db, ref.Email)
	case customerdomain.RefByCustomerID:
		link, err := s.customers.FindByCustomerID(ctx, s.db, ref.CustomerID)
		if err != nil {
			return nil, err
		}
		if link == nil {
			return nil, nil
		}
		return s.users.FindByID(ctx, s.db, link.UserID)
	default:
		return nil, fmt.Errorf("unsupported customer ref kind %d", ref.Kind)
	}
}

func (s *service) CreateCheckoutSession(ctx context.Context, userID snowflake.ID, priceID string, quantity int64, trial bool) (*stripeapi.CheckoutSession, error) {
	user, err := s.users.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	link, err := s.GetOrCreateStripeCustomer(ctx, customerdomain.ByUser(user))
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		quantity = 1
	}
	settings := s.settings.Get()
	params := stripeapi.CheckoutParams{
		CustomerID:          *link.CustomerID,
		PriceID:             priceID,
		Quantity:            quantity,
		SuccessURL:          settings.FrontEndBaseURL + settings.CheckoutSuccessPath,
		CancelURL:           settings.FrontEndBaseURL + settings.CheckoutCancelPath,
		PaymentMethodTypes:  settings.PaymentMethodTypes,
		Mode:                settings.CheckoutMode,
		AllowPromotionCodes: settings.AllowPromotionCodes,
	}
	if trial {
		params.TrialEnd = trialEnd(user.DateJoined, settings.NewUserFreeTrialDays, time.Now().UTC())
	}

	session, err := s.api.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, err
	}
	s.log.Info("created checkout session",
		zap.Int64("user_id", int64(userID)),
		zap.String("price_id", priceID),
		zap.String("session_id", session.ID),
	)
	return session, nil
}

// trialEnd computes the trial_end unix timestamp: the user's join date plus
// the free trial window. A user whose window ends inside the remote API's
// minimum lead is not eligible and gets zero.
func trialEnd(dateJoined time.Time, trialDays int, now time.Time) int64 {
	expiry := dateJoined.Add(time.Duration(trialDays) * 24 * time.Hour)
	if expiry.Before(now.Add(minTrialLead)) {
		return 0
	}
	return expiry.Truncate(time.Second).Unix()
}

func (s *service) CreatePortalSession(ctx context.Context, userID snowflake.ID) (*stripeapi.PortalSession, error) {
	link, err := s.GetOrCreateStripeCustomer(ctx, customerdomain.ByUserID(userID))
	if err != nil {
		return nil, err
	}

	settings := s.settings.Get()
	return s.api.CreatePortalSession(ctx, *link.CustomerID, settings.FrontEndBaseURL+settings.CheckoutCancelPath)
}
