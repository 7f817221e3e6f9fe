package router

import (
	"github.com/gin-gonic/gin"

	"shopbooks/internal/config"
	"shopbooks/internal/handler"
	"shopbooks/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	documentH *handler.DocumentHandler,
	paymentH *handler.PaymentHandler,
	conversionH *handler.ConversionHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(&cfg.JWT))

	docs := protected.Group("/documents")
	docs.POST("", documentH.Create)
	docs.GET("", documentH.List)
	docs.GET("/export", documentH.Export)
	docs.GET("/:id", documentH.GetByID)
	docs.POST("/:id/cancel", documentH.Cancel)
	docs.POST("/:id/payments", paymentH.AddPayment)
	docs.PUT("/:id/due-date", paymentH.SetDueDate)
	docs.POST("/:id/convert", conversionH.ConvertToInvoice)
	docs.POST("/:id/convert-to-purchase", conversionH.ConvertToPurchase)

	return r
}
