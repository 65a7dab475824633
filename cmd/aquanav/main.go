package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/app"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/assets"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/auth"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/errlog"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/hr/employees"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/hr/payroll"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/integration"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/inventory"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/ledger"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/masterdata/customers"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/masterdata/suppliers"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/masterdata/vessels"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/observability"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/platform/cache"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/platform/db"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/projects"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/purchasing"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/rbac"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/creditnotes"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/invoices"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/quotations"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, 0)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "aquanav_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	rbacService := rbac.NewService(pool)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	auditLogger := shared.NewAuditLogger(pool)
	approvalRecorder := shared.NewApprovalRecorder(pool, logger)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo).WithAudit(auditLogger)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	errlogRepo := errlog.NewRepository(pool)
	errlogService := errlog.NewService(errlogRepo, logger)
	errlogHandler := errlog.NewHandler(logger, errlogService, rbacMiddleware)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService, rbacMiddleware)

	integrationHooks := integration.NewHooks(ledgerService, ledgerRepo)

	customersRepo := customers.NewRepository(pool)
	customersHandler := customers.NewHandler(logger, customers.NewService(customersRepo), rbacMiddleware)
	suppliersRepo := suppliers.NewRepository(pool)
	suppliersHandler := suppliers.NewHandler(logger, suppliers.NewService(suppliersRepo), rbacMiddleware)
	vesselsRepo := vessels.NewRepository(pool)
	vesselsHandler := vessels.NewHandler(logger, vessels.NewService(vesselsRepo), rbacMiddleware)

	invoicesRepo := invoices.NewRepository(pool)
	invoicesService := invoices.NewService(invoicesRepo, integrationHooks, logger).
		WithApprovalLog(approvalRecorder).
		WithIdempotency(idempotencyStore)
	receivablesService := invoices.NewReceivablesService(invoicesRepo, redisClient, logger)
	invoicesHandler := invoices.NewHandler(logger, invoicesService, receivablesService, rbacMiddleware)

	quotationsRepo := quotations.NewRepository(pool)
	quotationsService := quotations.NewService(quotationsRepo, invoicesService, logger).WithApprovalLog(approvalRecorder)
	quotationsHandler := quotations.NewHandler(logger, quotationsService, rbacMiddleware)

	creditNotesRepo := creditnotes.NewRepository(pool)
	creditNotesService := creditnotes.NewService(creditNotesRepo, creditnotes.NewInvoiceBridge(invoicesService), logger)
	creditNotesHandler := creditnotes.NewHandler(logger, creditNotesService, rbacMiddleware)

	purchasingRepo := purchasing.NewRepository(pool)
	purchasingService := purchasing.NewService(purchasingRepo, integrationHooks, logger).WithApprovalLog(approvalRecorder)
	purchasingHandler := purchasing.NewHandler(logger, purchasingService, rbacMiddleware)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryHandler := inventory.NewHandler(logger, inventory.NewService(inventoryRepo, logger), rbacMiddleware)

	projectsRepo := projects.NewRepository(pool)
	projectsHandler := projects.NewHandler(logger, projects.NewService(projectsRepo, logger), rbacMiddleware)

	assetsRepo := assets.NewRepository(pool)
	assetsHandler := assets.NewHandler(logger, assets.NewService(assetsRepo, logger), rbacMiddleware)

	employeesRepo := employees.NewRepository(pool)
	employeesService := employees.NewService(employeesRepo, logger)
	employeesHandler := employees.NewHandler(logger, employeesService, rbacMiddleware)

	payrollRepo := payroll.NewRepository(pool)
	payrollService := payroll.NewService(payrollRepo, employeesService, logger)
	payrollHandler := payroll.NewHandler(logger, payrollService, rbacMiddleware)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Middleware: app.MiddlewareConfig{
			Logger:         logger,
			Config:         cfg,
			SessionManager: sessionManager,
			CSRFManager:    csrfManager,
			RBAC:           rbacMiddleware,
			ErrLog:         errlogService,
			Metrics:        metrics,
		},
		AuthHandler:       authHandler,
		CustomersHandler:  customersHandler,
		SuppliersHandler:  suppliersHandler,
		VesselsHandler:    vesselsHandler,
		QuotationsHandler: quotationsHandler,
		InvoicesHandler:   invoicesHandler,
		CreditNoteHandler: creditNotesHandler,
		PurchasingHandler: purchasingHandler,
		LedgerHandler:     ledgerHandler,
		InventoryHandler:  inventoryHandler,
		ProjectsHandler:   projectsHandler,
		AssetsHandler:     assetsHandler,
		EmployeesHandler:  employeesHandler,
		PayrollHandler:    payrollHandler,
		ErrLogHandler:     errlogHandler,
		JobsHandler:       jobsHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
