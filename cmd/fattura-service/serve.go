package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/fattura-service/internal/api"
	"github.com/hypernova-labs/fattura-service/internal/config"
	"github.com/hypernova-labs/fattura-service/internal/database"
	"github.com/hypernova-labs/fattura-service/internal/email"
	"github.com/hypernova-labs/fattura-service/internal/services"
	"github.com/hypernova-labs/fattura-service/internal/workflows"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var migrateOnStart bool

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply database migrations before serving")
	rootCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply database migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	logger := setupLogger(cfg)
	logger.WithFields(logrus.Fields{
		"version": version,
		"env":     cfg.Server.Env,
	}).Info("Starting fattura-service")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := cmd.Context()

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()
	db.LogStats(logger)

	if migrateOnStart {
		if err := db.Migrate(ctx, logger); err != nil {
			return err
		}
	}

	healthOpts := []api.Option{api.WithHealthCheck("database", db)}

	locker, cleanup, err := buildLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	if checker, ok := locker.(api.HealthChecker); ok {
		healthOpts = append(healthOpts, api.WithHealthCheck("locks", checker))
	}

	var storage services.DocumentStorage
	if cfg.StorageEnabled() {
		objectStorage, err := database.NewObjectStorage(ctx, &cfg.Storage, logger)
		if err != nil {
			logger.Warnf("Error initializing object storage, documents stay in the database only: %v", err)
		} else {
			if err := objectStorage.HealthCheck(ctx); err != nil {
				logger.Warnf("Object storage health check failed: %v", err)
			}
			storage = objectStorage
			healthOpts = append(healthOpts, api.WithHealthCheck("storage", objectStorage))
		}
	} else {
		logger.Warn("Object storage credentials not provided, documents stay in the database only")
	}

	if cfg.Email.ResendAPIKey == "" {
		logger.Warn("RESEND_API_KEY not provided, invoice emails will fail")
	}
	mailer := email.NewResendService(email.MailConfig{
		APIKey:  cfg.Email.ResendAPIKey,
		From:    cfg.Email.From,
		ReplyTo: cfg.Email.ReplyTo,
		SignOff: cfg.Email.SignOff,
	}, logger)

	var (
		events        services.EventPublisher = services.NopPublisher{}
		inngestClient *workflows.InngestClient
	)
	if cfg.InngestEnabled() {
		inngestClient, err = workflows.NewInngestClient(cfg, logger)
		if err != nil {
			logger.Warnf("Error initializing Inngest client: %v", err)
			inngestClient = nil
		} else {
			events = inngestClient
		}
	} else {
		logger.Warn("Inngest credentials not provided, background delivery is disabled")
	}

	clock := services.SystemClock{}
	invoiceRepo := database.NewInvoiceRepository(db, logger)
	customerRepo := database.NewCustomerRepository(db, logger)
	productRepo := database.NewProductRepository(db, logger)

	renderer := services.NewPDFRenderer(cfg.Issuer, clock, logger)
	documentService := services.NewDocumentService(invoiceRepo, renderer, storage, locker, logger)
	deliveryService := services.NewDeliveryService(invoiceRepo, documentService, mailer, locker, events, logger)
	invoiceService := services.NewInvoiceService(invoiceRepo, customerRepo, productRepo, clock, events, logger)
	customerService := services.NewCustomerService(customerRepo, clock, logger)
	productService := services.NewProductService(productRepo, clock, logger)

	var inngestHandler http.Handler
	if inngestClient != nil {
		if err := inngestClient.RegisterWorkflows(deliveryService); err != nil {
			logger.Warnf("Error registering workflows: %v", err)
		} else {
			inngestHandler = inngestClient.Handler()
			healthOpts = append(healthOpts, api.WithAsyncDelivery())
		}
	}

	apiHandler := api.NewAPI(
		customerService,
		productService,
		invoiceService,
		documentService,
		deliveryService,
		logger,
		healthOpts...,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      apiHandler.Router(inngestHandler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("error starting server: %w", err)
	case <-quit:
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
	return nil
}

// lockerWithHealth exposes the health check of a shared lock backend
type lockerWithHealth struct {
	*services.DistributedLocker
	check func(ctx context.Context) error
}

func (l lockerWithHealth) HealthCheck(ctx context.Context) error {
	return l.check(ctx)
}

// buildLocker selects the per-invoice lock implementation
func buildLocker(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (services.Locker, func(), error) {
	switch cfg.Locks.Backend {
	case config.LockBackendRedis:
		redis, err := database.ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("error connecting to Redis: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"backend": cfg.Locks.Backend,
			"addr":    cfg.GetRedisAddr(),
		}).Info("Invoice locks use Redis")
		locker := services.NewDistributedLocker(redis, cfg.Locks.TTL, logger)
		return lockerWithHealth{locker, redis.HealthCheck}, func() { redis.Close() }, nil

	case config.LockBackendDynamoDB:
		ddb, err := database.ConnectDynamoDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.WithFields(logrus.Fields{
			"backend": cfg.Locks.Backend,
			"table":   cfg.Locks.DynamoDBTable,
		}).Info("Invoice locks use DynamoDB")
		locker := services.NewDistributedLocker(database.NewDynamoLocker(ddb, cfg.Locks.DynamoDBTable), cfg.Locks.TTL, logger)
		return locker, func() {}, nil

	default:
		return services.NewMemoryLocker(), func() {}, nil
	}
}
