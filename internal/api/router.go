package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/newsroom-api/internal/config"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	guard := NewGuard(services.Auth, log)

	// Handlers
	authHandler := NewAuthHandler(services, cfg, log)
	articleHandler := NewArticleHandler(services, log)
	categoryHandler := NewCategoryHandler(services, log)
	adminHandler := NewAdminHandler(services, log)
	importHandler := NewImportHandler(services, log)
	exportHandler := NewExportHandler(services, log)
	pageHandler := NewPageHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)

	// Rendered article page
	router.GET("/news/:identifier", guard.OptionalAuth(), pageHandler.Show)

	apiGroup := router.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/me", guard.RequireAuth(), authHandler.Me)
			authGroup.PUT("/password", guard.RequireAuth(), authHandler.ChangePassword)
		}

		articles := apiGroup.Group("/articles")
		{
			articles.GET("", guard.OptionalAuth(), articleHandler.List)
			articles.POST("", guard.RequireAuth(), articleHandler.Create)
			articles.GET("/:slug", guard.OptionalAuth(), articleHandler.Get)
			articles.PUT("/:slug", guard.RequireAuth(), articleHandler.Update)
			articles.DELETE("/:slug", guard.RequireAuth(), articleHandler.Delete)
			articles.POST("/:slug/publish", guard.RequireAuth(), articleHandler.Publish)
			articles.POST("/:slug/unpublish", guard.RequireAuth(), articleHandler.Unpublish)
		}

		categories := apiGroup.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.GET("/:id", categoryHandler.Get)
			categories.POST("", guard.RequireAdmin(), categoryHandler.Create)
			categories.PUT("/:id", guard.RequireAdmin(), categoryHandler.Update)
			categories.DELETE("/:id", guard.RequireAdmin(), categoryHandler.Delete)
		}

		apiGroup.GET("/legacy", articleHandler.LegacyIndex)

		admin := apiGroup.Group("/admin", guard.RequireAdmin())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)

			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.PUT("/users/:id", adminHandler.UpdateUser)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.POST("/users/:id/toggle-active", adminHandler.ToggleUserActive)

			admin.GET("/settings", adminHandler.ListSettings)
			admin.GET("/settings/:key", adminHandler.GetSetting)
			admin.PUT("/settings/:key", adminHandler.SetSetting)

			admin.POST("/legacy/import", importHandler.ImportLegacy)
			admin.GET("/export", exportHandler.StreamExport)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "newsroom-api",
	})
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("request_id", c.GetString("request_id")).
					Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
					"code":  "INTERNAL_ERROR",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware assigns a request id and logs each request
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
