package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fintrack/internal/config"
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
)

// newRouter wires the HTTP surface. Transaction routes are served at the
// root, where existing clients expect them, and under /api/v1.
func newRouter(appConfig *config.Config, transactionService services.TransactionServicer) *gin.Engine {
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	healthHandler := handlers.NewHealthHandler(transactionService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler(appConfig.LegacyErrors))
	router.Use(middleware.CORS(appConfig.CORSOrigin))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoints
	router.GET("/", healthHandler.Root)
	router.GET("/api/health", healthHandler.Health)

	for _, prefix := range []string{"/", "/api/v1"} {
		group := router.Group(prefix)
		group.Use(middleware.APIKey(appConfig.APIKey))

		transactions := group.Group("/transactions")
		transactions.GET("", transactionHandler.ListTransactions)
		transactions.POST("", transactionHandler.CreateTransaction)
		transactions.GET("/:id", transactionHandler.GetTransaction)
		transactions.PUT("/:id", transactionHandler.UpdateTransaction)
		transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

		group.GET("/summary", transactionHandler.GetSummary)
	}

	return router
}
