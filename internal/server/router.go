// Package server assembles the HTTP surface: middleware, swagger and the
// /api/v1 route table.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"avrexpense/internal/handlers"
	"avrexpense/internal/middleware"
	"avrexpense/internal/services"
	"avrexpense/internal/store"

	_ "avrexpense/internal/docs" // Import swagger docs
)

// Options configures authentication on the router. Ping, when set, backs the
// health check.
type Options struct {
	JWTSecret    string
	OpsAPIKey    string
	SweepTimeout time.Duration
	Ping         func(ctx context.Context) error
}

// Services are the collaborators the handlers are built from.
type Services struct {
	Store       store.Store
	Ledger      services.BudgetLedgerServicer
	Resolver    services.AuthorityResolverServicer
	Router      services.NotificationRouterServicer
	Delegations services.DelegationServicer
	Expenses    services.ExpenseServicer
	Sweeper     services.ExpirySweeperServicer
}

// NewRouter builds the gin engine serving the API.
func NewRouter(opts Options, svc Services) *gin.Engine {
	projectHandler := handlers.NewProjectHandler(svc.Ledger, svc.Resolver, svc.Router, svc.Expenses, svc.Store)
	delegationHandler := handlers.NewDelegationHandler(svc.Delegations, svc.Resolver, svc.Store)
	expenseHandler := handlers.NewExpenseHandler(svc.Expenses, svc.Resolver, svc.Store)
	notificationHandler := handlers.NewNotificationHandler(svc.Router)
	opsHandler := handlers.NewOpsHandler(svc.Sweeper, opts.SweepTimeout)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.NoRoute(middleware.NoRoute)

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		if opts.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := opts.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Ops routes take the ops API key or an admin token
	ops := v1.Group("/ops")
	ops.Use(middleware.OpsAuthMiddleware(opts.OpsAPIKey, opts.JWTSecret))
	ops.POST("/expiry-sweep/run", opsHandler.RunExpirySweep)
	ops.GET("/expiry-sweep/status", opsHandler.GetExpirySweepStatus)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(opts.JWTSecret))

	projects := protected.Group("/projects/:id")
	projects.GET("/budget/evaluate", projectHandler.EvaluateBudget)
	projects.GET("/budget/summary", projectHandler.GetBudgetSummary)
	projects.GET("/authority", projectHandler.GetAuthority)
	projects.POST("/assignments", projectHandler.NotifyAssignment)
	projects.POST("/pending-reminder", projectHandler.RemindPending)

	projects.POST("/delegations", delegationHandler.CreateDelegation)
	projects.GET("/delegations", delegationHandler.ListDelegations)
	projects.PUT("/delegations/:delegationId", delegationHandler.UpdateDelegation)
	projects.DELETE("/delegations/:delegationId", delegationHandler.RemoveDelegation)

	projects.POST("/expenses", expenseHandler.SubmitExpense)
	projects.GET("/expenses", expenseHandler.ListExpenses)
	protected.POST("/expenses/:id/decision", expenseHandler.DecideExpense)

	protected.GET("/notifications", notificationHandler.ListNotifications)
	protected.POST("/devices", notificationHandler.RegisterDevice)

	return router
}
