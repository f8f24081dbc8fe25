package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/bug-service/internal/api/http"
	"github.com/spec-kit/bug-service/internal/api/http/handlers"
	"github.com/spec-kit/bug-service/internal/auth"
	"github.com/spec-kit/bug-service/internal/config"
	"github.com/spec-kit/bug-service/internal/events"
	"github.com/spec-kit/bug-service/internal/observability"
	"github.com/spec-kit/bug-service/internal/persistence"
	"github.com/spec-kit/bug-service/internal/repository"
	"github.com/spec-kit/bug-service/internal/repository/memory"
	"github.com/spec-kit/bug-service/internal/sanitize"
	"github.com/spec-kit/bug-service/internal/service"
	"github.com/spec-kit/bug-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var transactor repository.Transactor
	deps := map[string]handlers.Pinger{"redis": redis}
	if pg.Enabled() {
		transactor = repository.NewPgTransactor(pg.PoolHandle())
		deps["postgres"] = pg
	} else {
		transactor = memory.NewStore()
		deps["postgres"] = nil
	}

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, redis, logger, cfg.Notification)
	worker.StartNotificationWorker(notifications, logger)

	workflow := service.NewReopenWorkflow(service.ReopenDependencies{
		Transactor: transactor,
		Dispatcher: dispatcher,
		Sanitizer:  sanitize.NewSanitizer(cfg.Comment.MaxBytes),
		Logger:     logger.Named("reopen"),
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Bugs:           handlers.NewBugsHandler(workflow),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
