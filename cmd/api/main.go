package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/servicedesk/internal/api/http"
	"github.com/spec-kit/servicedesk/internal/api/http/handlers"
	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/clock"
	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/intake"
	"github.com/spec-kit/servicedesk/internal/notify"
	"github.com/spec-kit/servicedesk/internal/observability"
	"github.com/spec-kit/servicedesk/internal/persistence"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/service"
	"github.com/spec-kit/servicedesk/internal/worker"
)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	clk := clock.Real()
	metrics := observability.NewMetrics()

	var (
		ticketRepo  repository.TicketRepository
		historyRepo repository.TicketHistoryRepository
	)
	if pg.Configured() {
		ticketRepo = repository.NewTicketRepository(pg.PoolHandle())
		historyRepo = repository.NewTicketHistoryRepository(pg.PoolHandle())
	} else {
		ticketRepo = repository.NewMemoryTicketRepository(clk)
		historyRepo = repository.NewMemoryTicketHistoryRepository(clk)
	}

	notificationDeps := service.NotificationDependencies{
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     logger,
		Metrics:    metrics,
		Clock:      clk,
	}
	if mailer := notify.NewMailer(cfg.Notification); mailer != nil {
		notificationDeps.Mailer = mailer
	}
	if webhook := notify.NewWebhook(cfg.Notification.WebhookURL); webhook != nil {
		notificationDeps.Webhook = webhook
	}
	notificationService := service.NewNotificationService(notificationDeps)
	worker.StartNotificationWorker(notificationService, logger)

	classifier := service.NewClassifier(nil)
	assignmentService := service.NewAssignmentService(ticketRepo, cfg.Routing)
	slaService := service.NewSLAService(cfg.SLA, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		Classifier:  classifier,
		Assignment:  assignmentService,
		SLA:         slaService,
		Notifier:    notificationService,
		Logger:      logger,
		Metrics:     metrics,
		Clock:       clk,
	})

	var deduper intake.Deduper = intake.NewMemoryDeduper()
	if redis.Configured() {
		deduper = intake.NewRedisDeduper(redis.Client, intake.DefaultProcessedKey)
	}
	intakeService := service.NewIntakeService(service.IntakeDependencies{
		Tickets:    ticketService,
		Classifier: classifier,
		Source:     intake.NewFileSource(cfg.Intake.EmailsFile),
		Deduper:    deduper,
		Logger:     logger,
		Metrics:    metrics,
	})

	sweeper := worker.NewSLAWorker(worker.SLAWorkerDependencies{
		Tickets:   ticketService,
		Router:    assignmentService,
		SLA:       slaService,
		Notifier:  notificationService,
		Logger:    logger,
		Metrics:   metrics,
		Clock:     clk,
		Interval:  cfg.Sweeper.Interval(),
		Threshold: cfg.Sweeper.NearBreachThreshold(),
	})

	authService, err := service.NewAuthService(cfg.Auth, logger)
	if err != nil {
		logger.Fatal("failed to init auth", zap.Error(err))
	}
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), cfg.Auth.Enabled)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, map[string]bool{
		"smtp":         cfg.Notification.SMTPConfigured(),
		"webhook":      cfg.Notification.WebhookURL != "",
		"auto_process": cfg.Intake.AutoProcess,
		"sla_sweeper":  cfg.Sweeper.Enabled,
		"auth":         cfg.Auth.Enabled,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		SLA:            handlers.NewSLAHandler(ticketService, sweeper),
		Teams:          handlers.NewTeamsHandler(assignmentService),
		Intake:         handlers.NewIntakeHandler(intakeService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	var workers sync.WaitGroup
	if cfg.Sweeper.Enabled {
		workers.Add(1)
		go func() {
			defer workers.Done()
			sweeper.Run(ctx)
		}()
	}
	if cfg.Intake.AutoProcess {
		poller := worker.NewIntakeWorker(intakeService, cfg.Intake.PollInterval(), logger)
		workers.Add(1)
		go func() {
			defer workers.Done()
			poller.Run(ctx)
		}()
	}

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
	workers.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
