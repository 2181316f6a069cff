// Command sweep runs a single expiry sweep and exits. It is meant for
// cron-style deployments that do not keep the API's scheduler running.
//
// Exit codes: 0 on success, 1 when the sweep could not start or enumerate
// projects, 2 when some projects failed.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"avrexpense/internal/config"
	"avrexpense/internal/database"
	"avrexpense/internal/logger"
	"avrexpense/internal/push"
	"avrexpense/internal/services"
	"avrexpense/internal/store"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	code := run()
	logger.Sync()
	os.Exit(code)
}

func run() int {
	log := logger.Named("sweep")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		log.Errorw("database connection failed", "error", err)
		return 1
	}
	defer func() { _ = dbManager.Close() }()

	var sender push.Sender = push.NewLogSender()
	if cfg.PushRelayURL != "" {
		sender = push.NewRelaySender(cfg.PushRelayURL, cfg.PushRelayAPIKey, &http.Client{Timeout: cfg.PushTimeout})
	}
	sender = push.NewThrottled(sender, cfg.PushRatePerSec, int(cfg.PushRatePerSec))

	st := store.NewGormStore(dbManager.DB())
	resolver := services.NewAuthorityResolver(st)
	router := services.NewNotificationRouter(st, resolver, sender)
	delegations := services.NewDelegationService(st, router, services.NewAuditService(st))
	sweeper := services.NewExpirySweeper(st, delegations, nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SweepTimeout)
	defer cancel()

	result, err := sweeper.Run(ctx)
	if err != nil {
		log.Errorw("expiry sweep failed", "error", err)
		return 1
	}

	log.Infow("expiry sweep completed",
		"projects_checked", result.ProjectsChecked,
		"deactivated", result.TotalDeactivated,
		"errors", len(result.Errors),
		"duration", result.Duration.String(),
	)

	for _, projectErr := range result.Errors {
		log.Warnw("project sweep failed",
			"project_id", projectErr.ProjectID,
			"error", projectErr.Error,
		)
	}

	if len(result.Errors) > 0 {
		return 2
	}
	return 0
}
