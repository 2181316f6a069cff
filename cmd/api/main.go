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

	"avrexpense/internal/config"
	"avrexpense/internal/database"
	"avrexpense/internal/logger"
	"avrexpense/internal/push"
	"avrexpense/internal/scheduler"
	"avrexpense/internal/server"
	"avrexpense/internal/services"
	"avrexpense/internal/store"
	"avrexpense/internal/validator"

	"github.com/gin-gonic/gin"
)

// @title           AVR Expense API
// @version         1.0
// @description     Role-based expense approval for film productions: department budgets, approval authority and time-boxed delegation.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Push transport
	var sender push.Sender = push.NewLogSender()
	if appConfig.PushRelayURL != "" {
		sender = push.NewRelaySender(appConfig.PushRelayURL, appConfig.PushRelayAPIKey, &http.Client{Timeout: appConfig.PushTimeout})
	}
	sender = push.NewThrottled(sender, appConfig.PushRatePerSec, int(appConfig.PushRatePerSec))

	// Initialize services
	st := store.NewGormStore(dbManager.DB())
	sched := scheduler.New()
	defer sched.Stop()

	audit := services.NewAuditService(st)
	ledger := services.NewBudgetLedger(st)
	resolver := services.NewAuthorityResolver(st)
	router := services.NewNotificationRouter(st, resolver, sender)
	delegations := services.NewDelegationService(st, router, audit)
	sweeper := services.NewExpirySweeper(st, delegations, sched)
	resolver.AttachSweeper(sweeper)
	expenses := services.NewExpenseService(st, ledger, resolver, router, audit)
	reminder := services.NewPendingReminder(st, expenses)

	if err := sweeper.Start(appConfig.ExpirySweepInterval, appConfig.ExpirySweepJitter); err != nil {
		return fmt.Errorf("failed to start expiry sweep: %w", err)
	}
	if err := reminder.Start(sched, appConfig.PendingReminderInterval); err != nil {
		return fmt.Errorf("failed to start pending reminder: %w", err)
	}

	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := server.NewRouter(server.Options{
		JWTSecret:    appConfig.JWTSecret,
		OpsAPIKey:    appConfig.SweepAPIKey,
		SweepTimeout: appConfig.SweepTimeout,
		Ping:         dbManager.Ping,
	}, server.Services{
		Store:       st,
		Ledger:      ledger,
		Resolver:    resolver,
		Router:      router,
		Delegations: delegations,
		Expenses:    expenses,
		Sweeper:     sweeper,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting AVR Expense server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
