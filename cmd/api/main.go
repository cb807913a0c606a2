package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/msp-platform/internal/api/http"
	"github.com/spec-kit/msp-platform/internal/api/http/handlers"
	"github.com/spec-kit/msp-platform/internal/auth"
	"github.com/spec-kit/msp-platform/internal/config"
	"github.com/spec-kit/msp-platform/internal/events"
	"github.com/spec-kit/msp-platform/internal/observability"
	"github.com/spec-kit/msp-platform/internal/persistence"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/service"
	"github.com/spec-kit/msp-platform/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	locker := persistence.NewTicketLocker(redis)
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	orgRepo := repository.NewOrganizationRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	contractRepo := repository.NewContractRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewTicketCommentRepository(pool)
	timeEntryRepo := repository.NewTimeEntryRepository(pool)
	slaDefRepo := repository.NewSlaDefinitionRepository(pool)
	violationRepo := repository.NewSlaViolationRepository(pool)
	ruleRepo := repository.NewEscalationRuleRepository(pool)
	escalationEventRepo := repository.NewEscalationEventRepository(pool)
	invoiceRepo := repository.NewInvoiceRepository(pool)
	assetRepo := repository.NewAssetRepository(pool)
	kbRepo := repository.NewKBRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	smsRepo := repository.NewSmsRepository(pool)
	portalSettingsRepo := repository.NewPortalSettingsRepository(pool)

	auditService := service.NewAuditService(auditRepo, logger)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(userRepo, clientRepo, tokenManager, auditService, cfg.Auth.BcryptCost)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    ticketRepo,
		CommentRepo:   commentRepo,
		TimeEntryRepo: timeEntryRepo,
		ClientRepo:    clientRepo,
		UserRepo:      userRepo,
		Dispatcher:    dispatcher,
		Audit:         auditService,
	})
	slaService := service.NewSlaService(service.SlaDependencies{
		TicketRepo:     ticketRepo,
		DefinitionRepo: slaDefRepo,
		ViolationRepo:  violationRepo,
		OrgRepo:        orgRepo,
		Locker:         locker,
		Dispatcher:     dispatcher,
		Audit:          auditService,
		Logger:         logger,
		Location:       time.UTC,
		LockTTL:        cfg.Scheduler.LockTTL(),
		BatchSize:      cfg.Scheduler.BatchSize,
	})
	notificationService := service.NewNotificationService(smsRepo, userRepo, ticketRepo, logger)
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		RuleRepo:      ruleRepo,
		EventRepo:     escalationEventRepo,
		TicketRepo:    ticketRepo,
		UserRepo:      userRepo,
		OrgRepo:       orgRepo,
		Locker:        locker,
		TicketService: ticketService,
		Notifications: notificationService,
		Audit:         auditService,
		Logger:        logger,
		LockTTL:       cfg.Scheduler.LockTTL(),
		BatchSize:     cfg.Scheduler.BatchSize,
	})
	policyService := service.NewPolicyService(slaDefRepo, ruleRepo, auditService)
	billingService := service.NewBillingService(invoiceRepo, timeEntryRepo, contractRepo, clientRepo, auditService)
	clientService := service.NewClientService(clientRepo, contractRepo, auditService)
	assetService := service.NewAssetService(assetRepo, clientRepo, auditService)
	kbService := service.NewKBService(kbRepo, auditService)
	dashboardService := service.NewDashboardService(ticketRepo, violationRepo)
	portalService := service.NewPortalService(ticketService, ticketRepo, clientRepo, portalSettingsRepo)

	notificationService.Subscribe(dispatcher)
	escalationService.Subscribe(dispatcher)
	slaService.Subscribe(dispatcher)

	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo, clientRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis, cfg.App.Version),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, slaService, escalationService),
		Policies:       handlers.NewPoliciesHandler(policyService),
		Violations:     handlers.NewViolationsHandler(slaService),
		Clients:        handlers.NewClientsHandler(clientService, assetService),
		KB:             handlers.NewKBHandler(kbService),
		Billing:        handlers.NewBillingHandler(billingService),
		Audit:          handlers.NewAuditHandler(auditService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Portal:         handlers.NewPortalHandler(portalService),
		AuthMiddleware: authMiddleware,
	})

	var wg sync.WaitGroup
	smsProvider := &service.LoggingSmsProvider{Logger: logger}
	workers := []interface{ Run(context.Context) }{
		worker.NewSlaWorker(slaService, auditService, metrics, logger, cfg.Scheduler.SlaInterval()),
		worker.NewEscalationWorker(escalationService, metrics, logger, cfg.Scheduler.EscalationInterval()),
		worker.NewSmsWorker(smsRepo, smsProvider, metrics, logger, cfg.Scheduler, cfg.Sms),
	}
	for _, w := range workers {
		wg.Add(1)
		go func(w interface{ Run(context.Context) }) {
			defer wg.Done()
			w.Run(ctx)
		}(w)
	}

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
	wg.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
