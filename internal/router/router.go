package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"invoicepipe/internal/handler"
	"invoicepipe/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Invoice    *handler.InvoiceHandler
	Extraction *handler.ExtractionHandler
	Export     *handler.ExportHandler
	Health     *handler.HealthHandler
}

// Options holds the non-handler router settings.
type Options struct {
	AllowedOrigins []string
	// FilesDir, when set, is served read-only under /files for the local storage driver.
	FilesDir string
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(h Handlers, opts Options) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if opts.FilesDir != "" {
		r.Static("/files", opts.FilesDir)
	}

	v1 := r.Group("/api/v1")

	v1.POST("/upload", h.Invoice.Upload)

	// Extraction pipeline
	extract := v1.Group("/extract")
	extract.POST("", h.Extraction.Extract)
	extract.POST("/:fileId/retry", h.Extraction.Retry)
	extract.GET("/:fileId/status", h.Extraction.Status)

	// Invoice records
	invoices := v1.Group("/invoices")
	invoices.POST("", h.Invoice.Create)
	invoices.GET("", h.Invoice.List)
	invoices.GET("/:id", h.Invoice.GetByID)
	invoices.PUT("/:id", h.Invoice.Update)
	invoices.DELETE("/:id", h.Invoice.Delete)

	v1.GET("/export/invoices", h.Export.Invoices)

	return r
}
