package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/memberhub/internal/app"
	iauth "github.com/charlesng35/memberhub/internal/auth"
	"github.com/charlesng35/memberhub/internal/events"
	"github.com/charlesng35/memberhub/internal/handlers"
	"github.com/charlesng35/memberhub/internal/middleware"
	"github.com/charlesng35/memberhub/internal/monitoring"
	"github.com/charlesng35/memberhub/internal/monitoring/checks"
	"github.com/charlesng35/memberhub/internal/realtime"
	"github.com/charlesng35/memberhub/internal/security"
	"github.com/charlesng35/memberhub/internal/services"
	"github.com/charlesng35/memberhub/pkg/mail"
)

// Option customises router dependencies.
type Option func(*routerDeps)

type routerDeps struct {
	mailer    mail.Mailer
	publisher events.Publisher
	rateStore middleware.RateStore
	checks    []monitoring.Check
	hub       *realtime.Hub
}

// WithMailer delivers applicant notifications through mailer.
func WithMailer(mailer mail.Mailer) Option {
	return func(d *routerDeps) { d.mailer = mailer }
}

// WithPublisher emits intention decision events through publisher.
func WithPublisher(publisher events.Publisher) Option {
	return func(d *routerDeps) { d.publisher = publisher }
}

// WithRateStore backs authentication rate limiting with store.
func WithRateStore(store middleware.RateStore) Option {
	return func(d *routerDeps) { d.rateStore = store }
}

// WithHealthChecks adds readiness probes next to the database probe.
func WithHealthChecks(extra ...monitoring.Check) Option {
	return func(d *routerDeps) { d.checks = append(d.checks, extra...) }
}

// WithRealtimeHub streams intention decisions to WebSocket subscribers through
// hub. Without it the router creates a hub of its own.
func WithRealtimeHub(hub *realtime.Hub) Option {
	return func(d *routerDeps) { d.hub = hub }
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, opts ...Option) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	var deps routerDeps
	for _, opt := range opts {
		opt(&deps)
	}
	if deps.hub == nil {
		deps.hub = realtime.NewHub(cfg.Server.CORS.AllowedOrigins...)
	}

	auditSvc, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	userSvc, err := services.NewUserService(db, auditSvc)
	if err != nil {
		return nil, err
	}
	authSvc, err := services.NewAuthService(userSvc, jwt, auditSvc, cfg.Auth.AuthServiceOptions()...)
	if err != nil {
		return nil, err
	}

	intentionOpts := append(cfg.Intentions.IntentionServiceOptions(),
		services.WithIntentionAudit(auditSvc),
		services.WithIntentionMailer(deps.mailer),
		services.WithIntentionPublisher(events.Fanout(deps.publisher, deps.hub)),
	)
	intentionSvc, err := services.NewIntentionService(db, intentionOpts...)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowedOrigins...))

	health := monitoring.NewHealthManager(checks.Database(db, 0))
	for _, check := range deps.checks {
		health.Register(check)
	}
	registerHealthRoutes(r, health)

	requireAuth := middleware.Auth(jwt, userSvc)
	authLimiter := middleware.RateLimit(deps.rateStore, cfg.Server.RateLimit.AuthRequests, cfg.Server.RateLimit.Window)

	api := r.Group("/api")
	registerAuthRoutes(api, handlers.NewAuthHandler(authSvc, userSvc), requireAuth, authLimiter)
	registerUserRoutes(api, handlers.NewUserHandler(userSvc), requireAuth)
	registerIntentionRoutes(api, handlers.NewIntentionHandler(intentionSvc), requireAuth)
	securityHandler, err := handlers.NewSecurityHandler(security.NewAuditService(db, jwt, cfg))
	if err != nil {
		return nil, err
	}
	registerRealtimeRoutes(api, handlers.NewRealtimeHandler(deps.hub, realtime.StreamIntentions), requireAuth)
	registerAuditRoutes(api, handlers.NewAuditHandler(auditSvc), securityHandler, requireAuth)

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
