package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"lexmart/internal/analytics"
	"lexmart/internal/caching"
	"lexmart/internal/handlers"
	"lexmart/internal/jobs/background"
	"lexmart/internal/middleware"
	"lexmart/internal/reports"
	"lexmart/internal/repositories"
	"lexmart/internal/services"
	"lexmart/internal/tax"
	"lexmart/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret; sessions will not survive restarts")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	// Tax configuration: the firm's home GST state code; rates default to
	// the standard 18% GST / 10% TDS for legal services.
	taxCfg := tax.DefaultConfig()
	if homeState := os.Getenv("GST_HOME_STATE_CODE"); homeState != "" {
		taxCfg.HomeStateCode = homeState
	}

	// Create repositories
	userRepo := repositories.NewUserRepo(pool)
	tenantRepo := repositories.NewTenantRepo(pool)
	clientRepo := repositories.NewClientRepo(pool)
	caseRepo := repositories.NewCaseRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	templateRepo := repositories.NewReportTemplateRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	analyticsSvc := analytics.NewService(invoiceRepo, cacheSvc)
	invoiceSvc := services.NewInvoiceService(invoiceRepo, clientRepo, caseRepo, analyticsSvc, taxCfg)
	clientSvc := services.NewClientService(clientRepo)
	caseSvc := services.NewCaseService(caseRepo, clientRepo)
	reportSvc := reports.NewReportService(pool, reports.DefaultRegistry(), templateRepo, cacheSvc, 0)

	// Create handlers
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)
	clientHandlers := handlers.NewClientHandlers(clientSvc, invoiceSvc)
	caseHandlers := handlers.NewCaseHandlers(caseSvc)
	invoiceHandlers := handlers.NewInvoiceHandlers(invoiceSvc, clientSvc, minioSvc)
	reportHandlers := handlers.NewReportHandlers(reportSvc, cacheSvc, minioSvc)

	// Background jobs
	scheduler := background.NewJobScheduler(invoiceSvc, analyticsSvc, tenantRepo)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// API routes
	v1 := e.Group("/v1")

	// Protected routes (require JWT)
	protected := v1.Group("")
	protected.Use(middleware.JWT(jwtSecret))
	protected.Use(middleware.ResolveIdentity(userRepo))

	// Client routes
	protected.GET("/clients", clientHandlers.ListClients)
	protected.POST("/clients", clientHandlers.CreateClient)
	protected.GET("/clients/:id", clientHandlers.GetClientByID)
	protected.PUT("/clients/:id", clientHandlers.UpdateClient)
	protected.DELETE("/clients/:id", clientHandlers.DeleteClient)
	protected.GET("/clients/:id/invoices", clientHandlers.GetClientInvoices)

	// Case routes
	protected.GET("/cases", caseHandlers.ListCases)
	protected.POST("/cases", caseHandlers.CreateCase)
	protected.GET("/cases/:id", caseHandlers.GetCaseByID)
	protected.PUT("/cases/:id", caseHandlers.UpdateCase)
	protected.POST("/cases/:id/close", caseHandlers.CloseCase)
	protected.DELETE("/cases/:id", caseHandlers.DeleteCase)

	// Invoice routes
	protected.GET("/invoices", invoiceHandlers.ListInvoices)
	protected.POST("/invoices", invoiceHandlers.CreateInvoice)
	protected.GET("/invoices/unpaid", invoiceHandlers.GetUnpaidInvoices)
	protected.GET("/invoices/analytics", invoiceHandlers.GetBillingAnalytics)
	protected.GET("/invoices/gst-report", invoiceHandlers.GetGSTReport)
	protected.GET("/invoices/:id", invoiceHandlers.GetInvoiceByID)
	protected.PUT("/invoices/:id", invoiceHandlers.RecalculateInvoice)
	protected.PUT("/invoices/:id/status", invoiceHandlers.UpdateInvoiceStatus)
	protected.POST("/invoices/:id/pdf", invoiceHandlers.GenerateInvoicePDF)
	protected.DELETE("/invoices/:id", invoiceHandlers.DeleteInvoice)

	// Tax calculation preview
	protected.POST("/tax/calculate", invoiceHandlers.CalculateTax)

	// Report routes
	protected.GET("/reports/data-sources", reportHandlers.ListDataSources)
	protected.POST("/reports/preview", reportHandlers.PreviewQuery)
	protected.POST("/reports/execute", reportHandlers.ExecuteReport)
	protected.POST("/reports/export", reportHandlers.ExportReport)
	protected.GET("/reports/templates", reportHandlers.ListTemplates)
	protected.POST("/reports/templates", reportHandlers.CreateTemplate)
	protected.GET("/reports/templates/:id", reportHandlers.GetTemplate)
	protected.PUT("/reports/templates/:id", reportHandlers.UpdateTemplate)
	protected.DELETE("/reports/templates/:id", reportHandlers.DeleteTemplate)
	protected.POST("/reports/templates/:id/execute", reportHandlers.ExecuteTemplate)
	protected.GET("/reports/prebuilt", reportHandlers.ListPrebuiltReports)
	protected.POST("/reports/prebuilt/:key/execute", reportHandlers.ExecutePrebuiltReport)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Lexmart server v%s starting on port %d", version, port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
