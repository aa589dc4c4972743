package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/config"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/handler"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/infra/postgresql"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/infra/postgresql/migrations"
	infraredis "github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/infra/redis"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/jobstore"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/observability"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/provider"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/queue"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/repository"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/service"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/transport"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout      = 15 * time.Second
	dispatchDrainTimeout = 2 * time.Minute
)

func main() {
	// A local .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("failed to read .env: ", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Error("rentalert api stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgresql.NewPostgres(ctx, postgresql.Options{
		DSN:          cfg.DatabaseDSN,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	}, logger)
	if err != nil {
		return fmt.Errorf("postgres initialization failed: %w", err)
	}
	if err := migrations.Migrate(db); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("postgres underlying db init failed: %w", err)
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis initialization failed: %w", err)
	}
	defer rdb.Close()

	readiness := []handler.ReadinessCheck{handler.PostgresCheck(sqlDB), handler.RedisCheck(rdb)}

	var events queue.EventPublisher = queue.NoopPublisher{}
	if strings.TrimSpace(cfg.RabbitMQURL) != "" {
		broker, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("rabbitmq initialization failed: %w", err)
		}
		events = queue.NewRabbitMQPublisher(broker)
		readiness = append(readiness, handler.ReadinessCheck{Name: "rabbitmq", Probe: broker.Ping})
	} else {
		logger.Info("RABBITMQ_URL not set, job events will not be published")
	}
	defer events.Close() //nolint:errcheck

	metrics := observability.NewMetrics()

	rateLimiter, err := infraredis.NewRedisRateLimiter(rdb, map[domain.Method]int{
		domain.MethodSMS:   cfg.SMSRateLimitPerSec,
		domain.MethodEmail: cfg.EmailRateLimitPerSec,
	})
	if err != nil {
		return fmt.Errorf("rate limiter initialization failed: %w", err)
	}

	features, err := infraredis.NewFeatureStore(rdb,
		domain.FeatureState{
			Key:     domain.MethodSMS.FeatureKey(),
			Enabled: cfg.SMSEnabled,
			Message: "SMS reminders are temporarily unavailable.",
		},
		domain.FeatureState{
			Key:     domain.MethodEmail.FeatureKey(),
			Enabled: cfg.EmailEnabled,
			Message: "Email reminders are temporarily unavailable.",
		},
	)
	if err != nil {
		return fmt.Errorf("feature store initialization failed: %w", err)
	}

	smsSender, err := provider.NewGatewaySender(domain.MethodSMS, cfg.SMSGatewayURL, cfg.SMSCostPerMessage)
	if err != nil {
		return fmt.Errorf("sms gateway initialization failed: %w", err)
	}
	emailSender, err := provider.NewGatewaySender(domain.MethodEmail, cfg.EmailGatewayURL, cfg.EmailCostPerMessage)
	if err != nil {
		return fmt.Errorf("email gateway initialization failed: %w", err)
	}

	jobs := jobstore.NewMemoryStore()
	tenants := repository.NewGormTenantRepo(db)

	dispatcher, err := service.NewDispatcher(
		repository.NewGormLandlordRepo(db),
		tenants,
		repository.NewGormAuditRepo(db),
		jobs,
		provider.Registry{
			domain.MethodSMS:   smsSender,
			domain.MethodEmail: emailSender,
		},
		rateLimiter,
		events,
		service.DispatcherConfig{
			SendDelay:   cfg.SendDelay(),
			SendTimeout: cfg.SendTimeout(),
		},
		logger,
	)
	if err != nil {
		return fmt.Errorf("dispatcher initialization failed: %w", err)
	}
	dispatcher.SetMetrics(metrics)

	reminders, err := service.NewReminderService(tenants, jobs, features, dispatcher, logger)
	if err != nil {
		return fmt.Errorf("reminder service initialization failed: %w", err)
	}

	sweeper, err := service.NewSweeper(jobs, cfg.SweepInterval(), cfg.JobRetention(), logger)
	if err != nil {
		return fmt.Errorf("sweeper initialization failed: %w", err)
	}
	sweeper.SetMetrics(metrics)

	sessions := infraredis.NewSessionVerifier(rdb)
	auth, err := handler.RequireAuth(sessions)
	if err != nil {
		return fmt.Errorf("auth initialization failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "rentalert",
		DisableStartupMessage: true,
		ErrorHandler:          transport.ErrorHandler(logger),
	})
	app.Use(recover.New())
	for _, mw := range transport.CorrelationID() {
		app.Use(mw)
	}
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, readiness...)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	if err := handler.RegisterReminderRoutes(app, reminders, auth); err != nil {
		return fmt.Errorf("route registration failed: %w", err)
	}
	if strings.TrimSpace(cfg.AdminToken) != "" {
		if err := handler.RegisterAdminRoutes(app, features, sessions, cfg.AdminToken); err != nil {
			return fmt.Errorf("admin route registration failed: %w", err)
		}
	} else {
		logger.Info("ADMIN_TOKEN not set, admin routes are disabled")
	}

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sweeper.Start(groupCtx)
	})

	g.Go(func() error {
		logger.Info("rentalert api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown failed: %w", err)
		}
		return nil
	})

	runErr := g.Wait()

	if err := drainDispatches(reminders, dispatchDrainTimeout); err != nil {
		logger.Warn("reminder jobs still running at exit", zap.Error(err))
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	logger.Info("rentalert api stopped")
	return nil
}

func drainDispatches(reminders *service.ReminderService, timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		reminders.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("gave up waiting after %s", timeout)
	}
}
