package main

import (
	"agency-portal/internal/handler"
	"agency-portal/internal/middleware"
	"agency-portal/internal/model"
	"agency-portal/pkg/config"
	"agency-portal/pkg/database"
	"agency-portal/pkg/jwtutil"
	"agency-portal/pkg/logger"
	"agency-portal/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting agency portal...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)
	e.POST("/auth/login", handler.Login)

	// Role allow-lists: read is open to every role, writes to staff,
	// destructive deletes to admins only.
	readGate := middleware.RequireRole(model.RoleClient, model.RoleEmployee, model.RoleAdmin)
	writeGate := middleware.RequireRole(model.RoleEmployee, model.RoleAdmin)
	adminGate := middleware.RequireRole(model.RoleAdmin)
	scoped := middleware.RequireActiveClient

	// All API routes require a session; each stage of the chain gates the
	// next: session auth, then role gate, then active-client resolution.
	api := e.Group("/api")
	api.Use(middleware.Auth)

	// Own account
	api.GET("/profile", handler.GetProfile, readGate)
	api.PATCH("/profile", handler.UpdateProfile, readGate)
	api.POST("/change-password", handler.ChangePassword, readGate)

	// Client management - the tenant-selection surface, so no active-client
	// context here; access is membership-checked per operation
	clients := api.Group("/clients")
	clients.GET("", handler.ListClients, readGate)
	clients.GET("/:id", handler.GetClient, readGate)
	clients.POST("", handler.CreateClient, writeGate)
	clients.PATCH("/:id", handler.UpdateClient, writeGate)
	clients.DELETE("/:id", handler.DeleteClient, adminGate)

	// User administration - provisioning, roles, and client associations
	users := api.Group("/users", adminGate)
	users.POST("", handler.CreateUser)
	users.GET("", handler.ListUsers)
	users.GET("/:id", handler.GetUser)
	users.PATCH("/:id/role", handler.UpdateUserRole)
	users.PUT("/:id/clients", handler.SyncUserClients)

	// Tenant-scoped resources - every handler below reads its client scope
	// from the resolved active client
	tasks := api.Group("/tasks")
	tasks.GET("", handler.ListTasks, readGate, scoped)
	tasks.GET("/:id", handler.GetTask, readGate, scoped)
	tasks.POST("", handler.CreateTask, writeGate, scoped)
	tasks.PATCH("/:id", handler.UpdateTask, writeGate, scoped)
	tasks.DELETE("/:id", handler.DeleteTask, adminGate, scoped)

	invoices := api.Group("/invoices")
	invoices.GET("", handler.ListInvoices, readGate, scoped)
	invoices.GET("/:id", handler.GetInvoice, readGate, scoped)
	invoices.POST("", handler.CreateInvoice, writeGate, scoped)
	invoices.PATCH("/:id", handler.UpdateInvoice, writeGate, scoped)
	invoices.DELETE("/:id", handler.DeleteInvoice, adminGate, scoped)

	reports := api.Group("/reports")
	reports.GET("", handler.ListReports, readGate, scoped)
	reports.GET("/:id", handler.GetReport, readGate, scoped)
	reports.POST("", handler.CreateReport, writeGate, scoped)
	reports.PATCH("/:id", handler.UpdateReport, writeGate, scoped)
	reports.DELETE("/:id", handler.DeleteReport, adminGate, scoped)

	appointments := api.Group("/appointments")
	appointments.GET("", handler.ListAppointments, readGate, scoped)
	appointments.GET("/:id", handler.GetAppointment, readGate, scoped)
	appointments.POST("", handler.CreateAppointment, writeGate, scoped)
	appointments.PATCH("/:id", handler.UpdateAppointment, writeGate, scoped)
	appointments.DELETE("/:id", handler.DeleteAppointment, adminGate, scoped)

	settings := api.Group("/settings")
	settings.GET("", handler.ListSettings, readGate, scoped)
	settings.PUT("/:key", handler.PutSetting, writeGate, scoped)
	settings.DELETE("/:key", handler.DeleteSetting, adminGate, scoped)

	integrations := api.Group("/integrations")
	integrations.GET("", handler.ListIntegrations, readGate, scoped)
	integrations.GET("/:id", handler.GetIntegration, readGate, scoped)
	integrations.POST("", handler.CreateIntegration, writeGate, scoped)
	integrations.PATCH("/:id", handler.UpdateIntegration, writeGate, scoped)
	integrations.DELETE("/:id", handler.DeleteIntegration, adminGate, scoped)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
