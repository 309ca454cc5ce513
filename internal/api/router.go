package api

import (
	"time"

	"money-mate/docs"
	"money-mate/internal/api/handlers"
	"money-mate/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Messages     *handlers.MessageHandler
	Transactions *handlers.TransactionHandler
	Users        *handlers.UserHandler
}

type RouterConfig struct {
	ReadTimeout time.Duration
	// Validator guards /api/v1 when set; nil leaves the routes open for
	// deployments behind an authenticating gateway.
	Validator middleware.TokenValidator
}

func SetupRouter(h Handlers, cfg RouterConfig, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:     "money-mate",
		ReadTimeout: cfg.ReadTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// importing docs registers the OpenAPI document with swag
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	var v1 fiber.Router
	if cfg.Validator != nil {
		v1 = app.Group("/api/v1", middleware.AuthMiddleware(cfg.Validator, appLogger))
	} else {
		appLogger.Warn("API authentication disabled")
		v1 = app.Group("/api/v1")
	}

	messages := v1.Group("/messages")
	messages.Post("/ingest", h.Messages.Ingest)
	messages.Post("/process", h.Messages.Process)
	messages.Get("/processing-status", h.Messages.ProcessingStatus)
	messages.Get("/unprocessed", h.Messages.Unprocessed)

	transactions := v1.Group("/transactions")
	transactions.Post("/bulk-create", h.Transactions.BulkCreate)
	transactions.Get("/user/:user_id", h.Transactions.ListTransactions)

	v1.Get("/users/:id/balance", h.Users.Balance)

	return app
}
