package router

import (
	"net/http"

	"github.com/affiliate/backend/internal/infrastructure/logger"
	"github.com/affiliate/backend/internal/infrastructure/metrics"
	"github.com/affiliate/backend/internal/interfaces/http/dto"
	"github.com/affiliate/backend/internal/interfaces/http/handler"
	"github.com/affiliate/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	System         *handler.SystemHandler
	Partner        *handler.PartnerHandler
	Product        *handler.ProductHandler
	Referral       *handler.ReferralHandler
	Earning        *handler.EarningHandler
	Payout         *handler.PayoutHandler
	PayoutSettings *handler.PayoutSettingsHandler
}

// Config holds the HTTP engine settings
type Config struct {
	Logger         *zap.Logger
	Auth           middleware.JWTMiddlewareConfig
	CORS           middleware.CORSConfig
	Tracing        middleware.TracingConfig
	MaxBodySize    int64
	TrustedProxies []string
	// Metrics is optional; nil disables request metrics and the scrape endpoint
	Metrics     *metrics.LifecycleMetrics
	MetricsPath string
	// APIDocs serves the Swagger UI under /swagger
	APIDocs bool
	Version string
}

// NewEngine builds the gin engine with the global middleware chain, the
// unauthenticated system endpoints and the authenticated /api/v1 routes.
func NewEngine(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SpanErrorMarker(),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.Secure(),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics.GinMiddleware())
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(cfg.Metrics.Handler()))
	}

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	authCfg := cfg.Auth
	if authCfg.Logger == nil {
		authCfg.Logger = log
	}
	groups := DomainGroups(h)
	if cfg.APIDocs {
		if err := mountAPIDocs(engine, cfg.Version, groups); err != nil {
			return nil, err
		}
	}

	r := NewRouter(engine, WithAPIMiddleware(
		middleware.JWTAuth(authCfg),
		middleware.TracingAttributeInjector(),
	))
	r.Register(groups...).Setup()

	return engine, nil
}

// DomainGroups returns the API route table. Staff-only routes carry RequireStaff;
// ownership checks that depend on the loaded record stay in the services.
func DomainGroups(h Handlers) []*DomainGroup {
	staff := middleware.RequireStaff()

	partners := NewDomainGroup("partners", "/partners").
		POST("", h.Partner.Register).
		GET("", staff, h.Partner.List).
		GET("/me", h.Partner.Me).
		GET("/:id", h.Partner.Get).
		PATCH("/:id/status", staff, h.Partner.UpdateStatus)

	products := NewDomainGroup("products", "/products").
		GET("", h.Product.List).
		POST("", staff, h.Product.Create)

	referrals := NewDomainGroup("referrals", "/referrals").
		POST("", h.Referral.Submit).
		GET("", h.Referral.List).
		GET("/stats", h.Referral.Stats).
		GET("/:id", h.Referral.Get).
		PATCH("/:id/status", h.Referral.UpdateStatus).
		GET("/:id/timeline", h.Referral.Timeline).
		POST("/:id/timeline", h.Referral.AddTimelineNote).
		POST("/:id/earning", staff, h.Referral.CreateEarning)

	earnings := NewDomainGroup("earnings", "/earnings").
		POST("", staff, h.Earning.Create).
		GET("", h.Earning.List).
		GET("/summary", h.Earning.Summary).
		GET("/stats", h.Earning.Stats).
		GET("/:id", h.Earning.Get).
		POST("/:id/approve", staff, h.Earning.Approve).
		POST("/:id/reject", staff, h.Earning.Reject).
		POST("/:id/mark-available", staff, h.Earning.MarkAvailable).
		POST("/:id/mark-paid", staff, h.Earning.MarkPaid).
		POST("/:id/cancel", staff, h.Earning.Cancel)

	payouts := NewDomainGroup("payouts", "/payouts").
		POST("", h.Payout.Create).
		GET("", h.Payout.List).
		GET("/summary", h.Payout.Summary).
		GET("/:id", h.Payout.Get).
		GET("/:id/timeline", h.Payout.Timeline).
		POST("/:id/process", staff, h.Payout.Process).
		POST("/:id/complete", staff, h.Payout.Complete).
		POST("/:id/fail", staff, h.Payout.Fail).
		POST("/:id/cancel", h.Payout.Cancel)

	settings := NewDomainGroup("payout-settings", "/payout-settings").
		GET("", h.PayoutSettings.Get).
		PUT("", h.PayoutSettings.Update).
		GET("/methods", h.PayoutSettings.Methods).
		GET("/schedules", h.PayoutSettings.Schedules)

	return []*DomainGroup{partners, products, referrals, earnings, payouts, settings}
}
