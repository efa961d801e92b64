// Package router assembles the HTTP API: services, handlers, middleware and routes.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"smartspend/internal/cache"
	_ "smartspend/internal/docs" // Import swagger docs
	"smartspend/internal/handlers"
	"smartspend/internal/logger"
	"smartspend/internal/middleware"
	"smartspend/internal/services"
)

const healthTimeout = 2 * time.Second

// Options holds what the router needs from the process.
type Options struct {
	DB    *gorm.DB
	Cache *cache.RangeCache
	// Ping reports database reachability for /api/health. Nil skips the check.
	Ping func(ctx context.Context) error
}

// New builds the Gin engine with every route registered.
func New(opts Options) *gin.Engine {
	// Initialize services
	userService := services.NewUserService(opts.DB)
	expenseService := services.NewExpenseService(opts.DB, opts.Cache)
	reportService := services.NewReportService(expenseService)
	chatService := services.NewChatService(opts.DB, userService, reportService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	dashboardHandler := handlers.NewDashboardHandler(reportService)
	chatHandler := handlers.NewChatHandler(chatService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", health(opts.Ping))

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/reset-password", authHandler.ResetPassword)
	v1.GET("/taxonomy", handlers.GetTaxonomy)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile/username", authHandler.UpdateUsername)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.ListExpenses)
	expenses.GET("/export", expenseHandler.ExportExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("", dashboardHandler.GetDashboard)
	dashboard.GET("/top-merchants", dashboardHandler.GetTopMerchants)

	chat := protected.Group("/chat")
	chat.GET("/messages", chatHandler.GetHistory)
	chat.POST("/messages", chatHandler.SendMessage)

	return router
}

func health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				logger.Get().Warnw("health check failed", "error", err.Error())
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
