package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"invoicex/internal/config"
	"invoicex/internal/handler"
	"invoicex/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	corsCfg config.CORSConfig,
	log logrus.FieldLogger,
	invoiceH *handler.InvoiceHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(corsCfg.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)

	r.POST("/procesar", invoiceH.Process)

	return r
}
