package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tenant-config-api/api/swagger"
	"github.com/noah-isme/tenant-config-api/internal/handler"
	"github.com/noah-isme/tenant-config-api/internal/middleware"
	"github.com/noah-isme/tenant-config-api/internal/models"
	"github.com/noah-isme/tenant-config-api/internal/repository"
	"github.com/noah-isme/tenant-config-api/internal/service"
	"github.com/noah-isme/tenant-config-api/pkg/cache"
	"github.com/noah-isme/tenant-config-api/pkg/config"
	"github.com/noah-isme/tenant-config-api/pkg/database"
	"github.com/noah-isme/tenant-config-api/pkg/hostname"
	"github.com/noah-isme/tenant-config-api/pkg/jobs"
	"github.com/noah-isme/tenant-config-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tenant-config-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tenant-config-api/pkg/middleware/requestid"
	"github.com/noah-isme/tenant-config-api/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	ctx       context.Context
	cfg       *config.Config
	logger    *zap.Logger
	db        *sqlx.DB
	redis     *redis.Client
	engine    *gin.Engine
	scheduler *jobs.Scheduler
	warmup    *jobs.Queue
}

func newServer(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*server, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.DomainConfig.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, domain config cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	s := &server{ctx: ctx, cfg: cfg, logger: logr, db: db, redis: redisClient}
	s.engine = s.routes()
	return s, nil
}

func (s *server) routes() *gin.Engine {
	cfg, logr := s.cfg, s.logger
	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	tenantSettings := repository.NewSettingsRepository(s.db, models.ScopeTenant).WithObserver(metricsSvc)
	userSettings := repository.NewSettingsRepository(s.db, models.ScopeUser).WithObserver(metricsSvc)
	domainConfigs := repository.NewDomainConfigRepository(s.db).WithObserver(metricsSvc)
	auditRepo := repository.NewAuditRepository(s.db)

	var cacheRepo service.CacheRepository
	if s.redis != nil {
		cacheRepo = repository.NewCacheRepository(s.redis, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.DomainConfig.CacheTTL, logr, cfg.DomainConfig.CacheEnabled && cacheRepo != nil)

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	resolution := service.NewConfigResolutionService(tenantSettings, userSettings, auditRepo, validate, logr.Named("settings"))

	hostPages := service.NewHostPageCache(cfg.Static.HostCacheTTL, nil)
	templates := service.NewPageTemplateSource(storage.NewLocalStorage(cfg.Static.Dir), cfg.Static.Index, cfg.Static.TemplateCacheTTL, nil)

	// the warm-up handler renders through sitePages, which is assigned below
	var sitePages *service.SitePageService
	s.warmup = jobs.NewQueue("page-warmup", func(ctx context.Context, job jobs.Job) error {
		if job.Kind != service.JobKindPageWarmup {
			return fmt.Errorf("unknown job kind %q", job.Kind)
		}
		return sitePages.Warm(ctx, job.Key)
	}, jobs.QueueConfig{
		Workers:    cfg.Warmup.Workers,
		MaxRetries: cfg.Warmup.MaxRetries,
		RetryDelay: cfg.Warmup.RetryDelay,
		Logger:     logr.Named("warmup"),
	})

	domainSvc := service.NewDomainConfigService(domainConfigs, cacheSvc, hostPages, s.warmup, auditRepo, metricsSvc, logr.Named("domain_config"), service.DomainConfigServiceConfig{
		CacheTTL: cfg.DomainConfig.CacheTTL,
	})
	sitePages = service.NewSitePageService(hostPages, templates, domainSvc, metricsSvc, logr.Named("pages"), service.SitePageConfig{
		Normalize: hostname.ForMode(cfg.Static.HostKeyMode),
		Debug:     cfg.Static.Debug,
	})

	writeLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   cfg.Settings.WriteRPS,
		Burst: cfg.Settings.WriteBurst,
	})

	s.scheduler = jobs.NewScheduler(logr.Named("scheduler"))
	s.mustSchedule("page-cache-sweep", cfg.Static.HostCacheTTL, func(context.Context) {
		if removed := sitePages.Sweep(); removed > 0 {
			logr.Debug("page cache swept", zap.Int("removed", removed), zap.Int("remaining", hostPages.Len()))
		}
	})
	s.mustSchedule("template-sweep", cfg.Static.TemplateCacheTTL, func(context.Context) {
		templates.Sweep()
	})
	s.mustSchedule("rate-limiter-sweep", time.Minute, func(context.Context) {
		writeLimiter.Sweep()
	})

	configHandler := handler.NewConfigHandler(resolution)
	domainHandler := handler.NewDomainConfigHandler(domainSvc, validate)
	checks := map[string]handler.Pinger{"postgres": s.db}
	if s.redis != nil {
		client := s.redis
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admins := []string{string(models.RoleAdmin), string(models.RoleSuperAdmin)}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokens))

	cfgGroup := api.Group("/config")
	{
		tenant := cfgGroup.Group("/tenant/:tenantId")
		tenant.GET("", configHandler.GetTenant)
		tenant.POST("", middleware.RBAC(admins...), middleware.RateLimit(writeLimiter), configHandler.SaveTenant)
		tenant.PUT("", middleware.RBAC(admins...), middleware.RateLimit(writeLimiter), configHandler.SaveTenant)
		tenant.GET("/permissions", configHandler.GetPermissions)
		tenant.POST("/permissions", middleware.RBAC(admins...), middleware.RateLimit(writeLimiter), configHandler.SavePermissions)
		tenant.PUT("/permissions", middleware.RBAC(admins...), middleware.RateLimit(writeLimiter), configHandler.SavePermissions)

		user := cfgGroup.Group("/user")
		user.GET("", configHandler.GetEffective)
		user.GET("/only", configHandler.GetUserOnly)
		user.GET("/merged", configHandler.GetMerged)
		user.POST("", middleware.RateLimit(writeLimiter),
			middleware.Audit(auditRepo, models.AuditActionUserSettingsUpdate, "user_settings", ""), configHandler.SaveOwn)
		user.DELETE("", middleware.RateLimit(writeLimiter),
			middleware.Audit(auditRepo, models.AuditActionUserSettingsReset, "user_settings", ""), configHandler.DeleteOwn)
		user.PUT("/:id", middleware.RBAC(append(admins, middleware.RoleSelf)...), middleware.RateLimit(writeLimiter),
			middleware.Audit(auditRepo, models.AuditActionUserSettingsUpdate, "user_settings", "id"), configHandler.SaveForUser)

		domains := cfgGroup.Group("/domains/:domain", middleware.RBAC(admins...))
		domains.GET("", domainHandler.Get)
		domains.PUT("", middleware.RateLimit(writeLimiter), domainHandler.Put)
		domains.DELETE("", middleware.RateLimit(writeLimiter), domainHandler.Delete)
	}

	site := handler.NewSiteHandler(storage.NewLocalStorage(cfg.Static.Dir), cfg.Static.Index)
	if cfg.Static.Enabled {
		r.NoRoute(middleware.StaticSite(sitePages, logr.Named("static")), site.Fallback)
	} else {
		r.NoRoute(site.Fallback)
	}
	return r
}

func (s *server) mustSchedule(name string, interval time.Duration, task func(context.Context)) {
	if err := s.scheduler.Every(name, interval, task); err != nil {
		s.logger.Warn("scheduled task skipped", zap.String("task", name), zap.Error(err))
	}
}

// Run serves until the root context is cancelled, then drains in-flight requests.
func (s *server) Run() error {
	s.warmup.Start(s.ctx)
	s.scheduler.Start()

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", addr), zap.String("env", s.cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-s.ctx.Done():
		s.logger.Info("shutdown requested")
	case runErr = <-errCh:
		s.logger.Error("server failed", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http shutdown incomplete", zap.Error(err))
	}
	s.scheduler.Stop(shutdownCtx)
	s.warmup.Stop()
	if s.redis != nil {
		_ = s.redis.Close()
	}
	_ = s.db.Close()
	s.logger.Info("server stopped")
	return runErr
}
