// Package server exposes the HTTP surface: the webhook endpoint, read-only
// billing queries, and checkout session creation.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/stripesync/internal/checkout"
	"github.com/smallbiznis/stripesync/internal/config"
	"github.com/smallbiznis/stripesync/internal/customer"
	"github.com/smallbiznis/stripesync/internal/feature"
	"github.com/smallbiznis/stripesync/internal/price"
	pricedomain "github.com/smallbiznis/stripesync/internal/price/domain"
	"github.com/smallbiznis/stripesync/internal/product"
	"github.com/smallbiznis/stripesync/internal/productfeature"
	"github.com/smallbiznis/stripesync/internal/reconcile"
	"github.com/smallbiznis/stripesync/internal/stripeapi"
	"github.com/smallbiznis/stripesync/internal/subscription"
	subscriptiondomain "github.com/smallbiznis/stripesync/internal/subscription/domain"
	"github.com/smallbiznis/stripesync/internal/syncer"
	"github.com/smallbiznis/stripesync/internal/user"
	"github.com/smallbiznis/stripesync/internal/webhook"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	user.Module,
	customer.Module,
	product.Module,
	feature.Module,
	productfeature.Module,
	price.Module,
	subscription.Module,
	reconcile.Module,
	stripeapi.Module,
	webhook.Module,
	syncer.Module,
	checkout.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	log             *zap.Logger
	settings        *config.SettingsHolder
	dispatcher      webhook.Dispatcher
	syncerSvc       syncer.Syncer
	checkoutSvc     checkout.Service
	priceSvc        pricedomain.Service
	subscriptionSvc subscriptiondomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Log             *zap.Logger
	Settings        *config.SettingsHolder
	Dispatcher      webhook.Dispatcher
	SyncerSvc       syncer.Syncer
	CheckoutSvc     checkout.Service
	PriceSvc        pricedomain.Service
	SubscriptionSvc subscriptiondomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		log:             p.Log,
		settings:        p.Settings,
		dispatcher:      p.Dispatcher,
		syncerSvc:       p.SyncerSvc,
		checkoutSvc:     p.CheckoutSvc,
		priceSvc:        p.PriceSvc,
		subscriptionSvc: p.SubscriptionSvc,
	}

	svc.registerRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/stripe/webhook", s.HandleStripeWebhook)

	v1.GET("/prices", s.ListPrices)
	v1.GET("/prices/subscribable", s.UserRequired(), s.ListSubscribablePrices)

	v1.GET("/subscriptions", s.UserRequired(), s.ListSubscriptions)
	v1.GET("/subscription-items", s.UserRequired(), s.ListSubscriptionItems)

	v1.POST("/checkout-session", s.UserRequired(), s.CreateCheckoutSession)
	v1.POST("/portal-session", s.UserRequired(), s.CreatePortalSession)

	admin := v1.Group("/admin")
	{
		admin.POST("/sync", s.RunFullSync)
		admin.POST("/settings/reload", s.ReloadSettings)
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
