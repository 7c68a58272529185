package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/service-order-metrics/internal/analytics"
	httptransport "github.com/spec-kit/service-order-metrics/internal/api/http"
	"github.com/spec-kit/service-order-metrics/internal/api/http/handlers"
	"github.com/spec-kit/service-order-metrics/internal/auth"
	"github.com/spec-kit/service-order-metrics/internal/calendar"
	"github.com/spec-kit/service-order-metrics/internal/config"
	"github.com/spec-kit/service-order-metrics/internal/events"
	"github.com/spec-kit/service-order-metrics/internal/importer"
	"github.com/spec-kit/service-order-metrics/internal/observability"
	"github.com/spec-kit/service-order-metrics/internal/persistence"
	"github.com/spec-kit/service-order-metrics/internal/repository"
	"github.com/spec-kit/service-order-metrics/internal/service"
	"github.com/spec-kit/service-order-metrics/internal/worker"
)

const multipartOverhead = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	loc, err := cfg.Analytics.Location()
	if err != nil {
		logger.Fatal("invalid analytics time zone", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	orderRepo := repository.NewServiceOrderRepository(pool)
	analystRepo := repository.NewAnalystRepository(pool)
	metricsCache := repository.NewRedisMetricsCache(redis.ClientHandle())

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.NewCacheInvalidator(metricsCache, logger).Register(dispatcher)

	engine := analytics.NewEngine(analytics.Options{
		Calendar: calendar.National,
		Goals: analytics.SLAGoals{
			PrincipalPoint: minutesToHours(cfg.Analytics.PrincipalPointGoalMinutes),
			TechAssistance: minutesToHours(cfg.Analytics.TechAssistanceGoalMinutes),
			Default:        minutesToHours(cfg.Analytics.DefaultGoalMinutes),
		},
		DuplicateWindow: cfg.Analytics.DuplicateWindow(),
		Logger:          logger.Named("analytics"),
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(cfg.Auth, analystRepo, tokens, logger)
	if err := authService.EnsureBootstrapAdmin(ctx); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:  orderRepo,
		Engine:     engine,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Workbook:   importer.Options{Location: loc, SheetName: cfg.Import.SheetName},
		Logger:     logger,
	})
	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		OrderRepo: orderRepo,
		Engine:    engine,
		Cache:     metricsCache,
		CacheTTL:  cfg.Analytics.CacheTTL(),
		Location:  loc,
		Logger:    logger,
	})

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.Import.MaxUploadBytes() + multipartOverhead,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	dates := handlers.NewDateParser(loc)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, orderRepo,
			handlers.DependencyCheck{Name: "postgres", Ping: pg.Ping},
			handlers.DependencyCheck{Name: "redis", Ping: redis.Ping},
		),
		Auth:           handlers.NewAuthHandler(authService),
		Orders:         handlers.NewOrdersHandler(orderService, int64(cfg.Import.MaxUploadBytes()), dates),
		Metrics:        handlers.NewMetricsHandler(analyticsService, engine.Goals(), dates),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, analystRepo).Handle,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func minutesToHours(minutes int) float64 {
	return float64(minutes) / 60
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
