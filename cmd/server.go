package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/dpang/auth-server/pkg/authapi"
	"github.com/dpang/auth-server/pkg/config"
	"github.com/dpang/auth-server/pkg/logx"
)

func main() {
	cfg := config.Load()
	logx.SetLevel(logx.ParseLevel(cfg.Server.LogLevel))

	logx.Info("starting auth server")

	container := NewContainer(cfg)
	defer container.Cleanup()

	app := fiber.New(fiber.Config{
		AppName:               "dpang-auth-server",
		DisableStartupMessage: true,
		ErrorHandler:          authapi.ErrorHandler,
		ReadTimeout:           cfg.Server.RequestTimeout,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-Client-ID, X-Client-Role",
		AllowMethods:  "GET, POST, DELETE, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	app.Get("/health", healthCheckHandler(container))

	container.Handlers.RegisterRoutes(app, container.Middleware)
	logx.Info("auth routes registered")

	app.Use(notFoundHandler)

	startServer(app, cfg)
}

func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "dpang-auth-server",
		}

		if err := container.DB.Ping(); err != nil {
			health["db"] = "unhealthy"
			health["status"] = "degraded"
		} else {
			health["db"] = "healthy"
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := container.Redis.Ping(ctx).Err(); err != nil {
			health["redis"] = "unhealthy"
			health["status"] = "degraded"
		} else {
			health["redis"] = "healthy"
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":  fiber.StatusNotFound,
		"message": "The requested endpoint does not exist",
		"code":    "ROUTE_NOT_FOUND",
		"path":    c.Path(),
	})
}

// startServer runs the listener and blocks until a termination signal, then
// drains in-flight requests before returning.
func startServer(app *fiber.App, cfg *config.Config) {
	go func() {
		logx.Infof("server listening on port %s", cfg.Server.Port)
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logx.Fatalf("server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logx.Infof("received signal %v, shutting down", sig)

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		logx.Errorf("forced shutdown: %v", err)
	}

	logx.Info("server exited")
}
