package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/memberhub/internal/api"
	"github.com/charlesng35/memberhub/internal/app"
	"github.com/charlesng35/memberhub/internal/app/maintenance"
	iauth "github.com/charlesng35/memberhub/internal/auth"
	"github.com/charlesng35/memberhub/internal/cache"
	"github.com/charlesng35/memberhub/internal/database"
	"github.com/charlesng35/memberhub/internal/events"
	"github.com/charlesng35/memberhub/internal/middleware"
	"github.com/charlesng35/memberhub/internal/monitoring"
	"github.com/charlesng35/memberhub/internal/monitoring/checks"
	"github.com/charlesng35/memberhub/internal/realtime"
	"github.com/charlesng35/memberhub/internal/services"
	"github.com/charlesng35/memberhub/pkg/logger"
	"github.com/charlesng35/memberhub/pkg/mail"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Redis     *cache.RedisStore
	Publisher events.Publisher
	Hub       *realtime.Hub
	Mailer    mail.Mailer
	AuditSvc  *services.AuditService
	Cleaner   *maintenance.Cleaner
	RateStore middleware.RateStore
	Router    *gin.Engine
}

// bootstrapRuntime initialises databases, caches, services, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			if shutdownErr := stack.Shutdown(context.Background()); shutdownErr != nil {
				log.Warn("partial bootstrap cleanup failed", zap.Error(shutdownErr))
			}
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	dbStore := cache.NewDatabaseStore(stack.DB)

	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to database-backed operations", zap.Error(err))
			stack.Redis = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	if stack.Redis != nil {
		stack.RateStore = middleware.NewCacheRateStore(stack.Redis)
	} else {
		stack.RateStore = middleware.NewCacheRateStore(dbStore)
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	stack.AuditSvc, err = services.NewAuditService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}

	if err := ensureBootstrapAdmin(ctx, stack.DB, stack.AuditSvc, cfg, log); err != nil {
		return nil, err
	}

	if cfg.Email.SMTP.Enabled {
		stack.Mailer, err = mail.NewSMTPMailer(cfg.Email.SMTPSettings())
		if err != nil {
			return nil, fmt.Errorf("initialise smtp mailer: %w", err)
		}
	}

	stack.Publisher = events.NoopPublisher{}
	if cfg.Events.AMQP.Enabled {
		publisher, pubErr := events.NewAMQPPublisher(cfg.Events.AMQPPublisherConfig())
		if pubErr != nil {
			return nil, fmt.Errorf("initialise amqp publisher: %w", pubErr)
		}
		stack.Publisher = publisher
		log.Info("amqp publisher configured", zap.String("exchange", cfg.Events.AMQP.Exchange))
	}

	if cfg.Maintenance.Enabled {
		stack.Cleaner = maintenance.NewCleaner(stack.AuditSvc, dbStore,
			maintenance.WithAuditRetentionDays(cfg.Maintenance.AuditRetentionDays),
			maintenance.WithAuditSchedule(cfg.Maintenance.AuditSchedule),
			maintenance.WithCacheSchedule(cfg.Maintenance.CacheSchedule),
		)
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	var probes []monitoring.Check
	if cfg.Cache.Redis.Enabled {
		var pinger checks.RedisPinger
		if stack.Redis != nil {
			pinger = stack.Redis
		}
		probes = append(probes, checks.Redis(pinger, cfg.Cache.Redis.Timeout))
	}

	stack.Hub = realtime.NewHub(cfg.Server.CORS.AllowedOrigins...)

	stack.Router, err = api.NewRouter(stack.DB, jwtSvc, cfg,
		api.WithRealtimeHub(stack.Hub),
		api.WithRateStore(stack.RateStore),
		api.WithHealthChecks(probes...),
		api.WithMailer(stack.Mailer),
		api.WithPublisher(stack.Publisher),
	)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops background jobs and releases resources. Every step runs even
// when an earlier one fails; the errors are combined.
func (s *runtimeStack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var errs error
	if s.Hub != nil {
		errs = multierr.Append(errs, s.Hub.Close())
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if stopCtx != nil {
			ctx = stopCtx
		}
		errs = multierr.Append(errs, s.Cleaner.RunOnce(ctx))
	}

	if s.Publisher != nil {
		errs = multierr.Append(errs, s.Publisher.Close())
	}

	if s.Redis != nil {
		errs = multierr.Append(errs, s.Redis.Close())
	}

	if s.DB != nil {
		errs = multierr.Append(errs, database.Close(s.DB))
	}

	return errs
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

// ensureBootstrapAdmin creates the configured administrator when the account
// does not exist yet. It is a no-op when no bootstrap credentials are set.
func ensureBootstrapAdmin(ctx context.Context, db *gorm.DB, audit *services.AuditService, cfg *app.Config, log *zap.Logger) error {
	input, ok := cfg.Auth.BootstrapAdminInput()
	if !ok {
		return nil
	}

	userSvc, err := services.NewUserService(db, audit)
	if err != nil {
		return fmt.Errorf("initialise user service: %w", err)
	}

	user, created, err := userSvc.EnsureAdmin(ctx, input)
	if err != nil {
		return fmt.Errorf("ensure bootstrap admin: %w", err)
	}
	if created {
		log.Info("bootstrap administrator created", zap.String("email", user.Email))
	}
	return nil
}
