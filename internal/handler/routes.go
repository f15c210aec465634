package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kudiapp/kudi-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	accountHandler *AccountHandler,
	transactionHandler *TransactionHandler,
	categoryHandler *CategoryHandler,
	budgetHandler *BudgetHandler,
	babyStepHandler *BabyStepHandler,
	dashboardHandler *DashboardHandler,
	wsHandler *WebSocketHandler,
) {
	// Health check (public)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// WebSocket endpoint authenticates via query token
	e.GET("/ws", wsHandler.HandleWS)

	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Account routes
	accounts := api.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.GET("/:id/entries", accountHandler.GetAccountEntries)

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.POST("/transfers", transactionHandler.CreateTransfer)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Category routes
	categories := api.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Budget routes
	budgets := api.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/status", budgetHandler.GetBudgetStatus)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Baby Steps routes
	babySteps := api.Group("/baby-steps")
	babySteps.GET("", babyStepHandler.GetProgress)
	babySteps.POST("/recalculate", babyStepHandler.Recalculate)
	babySteps.PUT("/months-of-expenses", babyStepHandler.SetMonthsOfExpenses)
	babySteps.PUT("/:step/active", babyStepHandler.SetStepActive)
	babySteps.GET("/smallest-debt", babyStepHandler.GetSmallestDebt)
	babySteps.GET("/gazelle-intensity", babyStepHandler.GetGazelleIntensity)

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.GET("/net-worth", dashboardHandler.GetNetWorth)
	dashboard.GET("/cash-flow", dashboardHandler.GetCashFlow)
}
