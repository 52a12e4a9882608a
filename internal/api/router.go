package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/handlers"
	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metrics"
	"github.com/jafarshop/storefront/internal/storefront"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, reg *storefront.Registry, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(metrics.MetricsMiddleware())
	router.Use(middleware.SessionMiddleware(reg))
	router.Use(middleware.PersistSession(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "sessions": reg.Len()})
	})
	router.GET("/metrics", metrics.PrometheusHandler())

	// API v1 routes
	v1 := router.Group("/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/sign-in", handlers.HandleSignIn(reg, logger))
			authRoutes.POST("/register", handlers.HandleRegister(reg, logger))
			authRoutes.POST("/verify-code", handlers.HandleVerifyCode(reg, logger))
			authRoutes.POST("/forgot-password", handlers.HandleForgotPassword(reg, logger))
			authRoutes.POST("/reset-password", handlers.HandleResetPassword(reg, logger))
		}

		// Public catalog routes
		v1.GET("/catalog/:category", handlers.HandleLoadCategory(reg, logger))
		v1.GET("/catalog/:category/facets", handlers.HandleFacets(reg, logger))
		v1.POST("/catalog/filter", handlers.HandleApplyFilter(reg, logger))
		v1.GET("/products/:id", handlers.HandleGetProduct(reg, logger))

		// Any signed-in role
		meRoutes := v1.Group("/me")
		meRoutes.Use(middleware.RequireRoles(logger))
		{
			meRoutes.GET("", handlers.HandleMe())
			meRoutes.POST("/sign-out", handlers.HandleSignOut(reg, logger))
			meRoutes.POST("/catalog/refresh", handlers.HandleRefresh(logger))
			meRoutes.PUT("/product/variant", handlers.HandleSelectVariant(logger))
			meRoutes.PUT("/product/size", handlers.HandleSelectSize(logger))
			meRoutes.POST("/cart", handlers.HandleAddToCart(logger))
			meRoutes.GET("/orders", handlers.HandleMyOrders(logger))
			meRoutes.GET("/orders/:id", handlers.HandleGetOrder(logger))
			meRoutes.POST("/orders/:id/cancel", handlers.HandleCancelOrder(logger))
			meRoutes.POST("/orders/:id/refund", handlers.HandleRefundOrder(logger))
			meRoutes.GET("/orders/:id/selection", handlers.HandleGetSelection(logger))
			meRoutes.POST("/orders/:id/selection", handlers.HandleSelectItem(logger))
			meRoutes.DELETE("/orders/:id/selection/:index", handlers.HandleDeselectItem(logger))
			meRoutes.PATCH("/orders/:id/selection/:index", handlers.HandleUpdateSelectionItem(logger))
			meRoutes.GET("/rating-prompt", handlers.HandleGetPrompt())
			meRoutes.POST("/rating-prompt", handlers.HandleRate(logger))
			meRoutes.DELETE("/rating-prompt", handlers.HandleDismissPrompt())
		}

		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.RequireRoles(logger, domain.RoleAdmin))
		{
			adminRoutes.GET("/orders", handlers.HandleListOrders(logger))
			adminRoutes.GET("/orders/search", handlers.HandleSearchOrders(logger))
			adminRoutes.PATCH("/orders/:id/status", handlers.HandleUpdateOrderStatus(logger))
			adminRoutes.POST("/orders/cancellation", handlers.HandleConfirmCancellation(logger))
			adminRoutes.DELETE("/orders/cancellation", handlers.HandleDismissCancellation())
			adminRoutes.POST("/delivery-boys", handlers.HandleCreateDeliveryBoy(logger))
		}

		deliveryRoutes := v1.Group("/delivery")
		deliveryRoutes.Use(middleware.RequireRoles(logger, domain.RoleDelivery, domain.RoleAdmin))
		{
			deliveryRoutes.GET("/mine", handlers.HandleMyDeliveries(logger))
			deliveryRoutes.GET("/weekly", handlers.HandleWeeklyDeliveries(logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
