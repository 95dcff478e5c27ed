package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/plansdb/internal/config"
	"github.com/localnerve/plansdb/internal/database"
	"github.com/localnerve/plansdb/internal/handlers"
	"github.com/localnerve/plansdb/internal/locks"
	"github.com/localnerve/plansdb/internal/logging"
	"github.com/localnerve/plansdb/internal/middleware"
	"github.com/localnerve/plansdb/internal/services"
	"github.com/localnerve/plansdb/internal/utils"
	"github.com/sirupsen/logrus"

	_ "github.com/localnerve/plansdb/docs/api" // Swagger docs
)

// @title PlansDB API
// @version 1.0.0
// @description Plans, their procedures and the users assigned to them
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/plansdb
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if cfg.SeedOnStart {
		seeded, err := database.Seed(context.Background(), db)
		if err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
		log.WithFields(logrus.Fields{
			"procedures": seeded.Procedures,
			"users":      seeded.Users,
		}).Info("Seed complete")
	}

	locker, closeLocker, err := locks.FromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to create lock backend: %v", err)
	}
	defer closeLocker()
	log.WithField("lock_mode", cfg.ResolvedLockMode()).Info("Assignment locking configured")

	plans := services.NewPlanService(db)
	reconciler := services.NewReconciler(database.NewGateway(db), locker)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("plansdb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	health := &handlers.HealthHandler{Config: cfg, DB: db}
	if pinger, ok := locker.(services.Pinger); ok {
		health.Redis = pinger
	}
	app.Get("/health", health.Health)

	// API routes under /api
	api := app.Group("/api", middleware.VersionMiddleware())
	handlers.Register(api, plans, reconciler)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Gracefully shutting down...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	// Start server
	log.Infof("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Info("Server stopped")
}
