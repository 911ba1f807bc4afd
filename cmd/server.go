package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/config"
	"github.com/Abraxas-365/gatekeeper/pkg/errx/errxfiber"
	"github.com/Abraxas-365/gatekeeper/pkg/iam"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/Abraxas-365/gatekeeper/pkg/logx"
	"github.com/Abraxas-365/gatekeeper/pkg/metricsx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		logx.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Logger
	logCfg := logx.LoadFromEnv(logx.ConfigForEnv(cfg.Env))
	logCfg.DefaultFields = logx.Fields{"service": "gatekeeper"}
	log := logx.NewLogger(logCfg)
	logx.SetDefaultLogger(log)

	log.Info("🚀 Starting gatekeeper...")

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		log.Warnf("⚠️  %s", w)
	}
	if err != nil {
		logx.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Dependency container
	container, err := NewContainer(ctx, cfg, log)
	if err != nil {
		logx.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Cleanup()

	// 4. Fiber app
	responder := errxfiber.NewResponder(cfg.IsDevelopment(), log, container.Metrics)
	app := fiber.New(fiber.Config{
		AppName:               "gatekeeper",
		DisableStartupMessage: true,
		ErrorHandler:          responder.Handle,
		BodyLimit:             cfg.Server.BodyLimit,
		IdleTimeout:           120 * time.Second,
	})

	// 5. Global middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.IsDevelopment(),
	}))

	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(requestContext)

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	if cfg.IsDevelopment() {
		app.Use(logger.New(logger.Config{
			Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${respHeader:X-Request-ID}\n",
			TimeFormat: "2006-01-02 15:04:05",
			TimeZone:   "Local",
		}))
	}

	// 6. Health & metrics
	app.Get("/health", healthCheckHandler(container))
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(metricsx.Handler(container.Registry)))
	}

	// 7. Routes
	container.IAM.RegisterRoutes(app, cfg.Auth.ReauthMaxAge)
	printRouteSummary(log, cfg)

	// 8. Fallback
	app.Use(responder.NotFound)

	// 9. Serve until signalled
	startServer(ctx, app, log, cfg)
}

// requestContext carries the request id into the user context so services
// can log it.
func requestContext(c *fiber.Ctx) error {
	id := c.GetRespHeader(fiber.HeaderXRequestID)
	ctx := kernel.WithRequestID(c.UserContext(), id)
	ctx = logx.ContextWithFields(ctx, logx.Fields{"request_id": id})
	c.SetUserContext(ctx)
	return c.Next()
}

// healthCheckHandler reports process and dependency health
func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "gatekeeper",
			"version": getEnv("APP_VERSION", "1.0.0"),
			"store":   container.Config.Database.Driver,
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if container.DB != nil {
			if err := container.DB.PingContext(ctx); err != nil {
				health["db"] = "unhealthy"
				health["db_error"] = err.Error()
				health["status"] = "degraded"
			} else {
				health["db"] = "healthy"
			}
		}

		if container.Redis != nil {
			if err := container.Redis.Ping(ctx).Err(); err != nil {
				health["redis"] = "unhealthy"
				health["status"] = "degraded"
			} else {
				health["redis"] = "healthy"
			}
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

// printRouteSummary prints a summary of registered routes
func printRouteSummary(log *logx.Logger, cfg *config.Config) {
	log.Info("📋 Route Summary:")
	log.Info("   ├─ GET   /health")
	if cfg.Metrics.Enabled {
		log.Infof("   ├─ GET   %s", cfg.Metrics.Path)
	}
	for _, r := range iam.Routes() {
		log.Infof("   ├─ %-5s %s (%s)", r.Method, r.Path, r.Guards)
	}
	log.Info("   └─ *     fallback: ROUTE_NOT_FOUND")
}

// startServer listens until ctx is cancelled, then shuts down gracefully.
func startServer(ctx context.Context, app *fiber.App, log *logx.Logger, cfg *config.Config) {
	port := cfg.Server.Port

	errCh := make(chan error, 1)
	go func() {
		log.Info(strings.Repeat("=", 61))
		log.Infof("🚀 Server listening on port %s (env: %s)", port, cfg.Env)
		log.Infof("💚 Health Check: http://localhost:%s/health", port)
		log.Info(strings.Repeat("=", 61))

		errCh <- app.Listen(":" + port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Errorf("Server error: %v", err)
		}
		return
	case <-ctx.Done():
	}

	log.Info("🛑 Shutdown signal received, shutting down gracefully...")
	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	log.Info("✅ Server exited successfully")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
