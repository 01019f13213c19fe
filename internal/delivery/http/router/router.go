package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"signflow/internal/config"
	"signflow/internal/delivery/http/handler"
	"signflow/internal/domain/entity"
	"signflow/internal/observability/metrics"
)

type Router struct {
	app              *fiber.App
	config           *config.Config
	signatureHandler *handler.SignatureHandler
	healthHandler    *handler.HealthHandler
	logHandler       *handler.LogHandler
	metrics          *metrics.SigningMetrics
}

func NewRouter(
	cfg *config.Config,
	signatureHandler *handler.SignatureHandler,
	healthHandler *handler.HealthHandler,
	logHandler *handler.LogHandler,
	signingMetrics *metrics.SigningMetrics,
) *Router {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: customErrorHandler,
	})

	return &Router{
		app:              app,
		config:           cfg,
		signatureHandler: signatureHandler,
		healthHandler:    healthHandler,
		logHandler:       logHandler,
		metrics:          signingMetrics,
	}
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New())
	r.app.Use(requestid.New())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization," + handler.HeaderCompanyID + "," + handler.HeaderUserID,
	}))
	r.app.Use(r.observe)

	if r.config.IsDevelopment() {
		r.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	r.app.Get("/health", r.healthHandler.Health)
	r.app.Get("/metrics", adaptor.HTTPHandler(r.metrics.Handler()))

	// API v1 routes
	api := r.app.Group("/api/v1")
	{
		requests := api.Group("/signature-requests")
		{
			requests.Post("", r.signatureHandler.CreateRequest)
			requests.Get("", r.signatureHandler.ListRequests)
			requests.Get("/:id", r.signatureHandler.GetRequestStatus)
			requests.Post("/:id/cancel", r.signatureHandler.CancelRequest)
			requests.Post("/:id/artifact", r.signatureHandler.RetryArtifact)
			requests.Get("/:id/signers/:signerId/verify", r.signatureHandler.VerifySignature)
		}

		signers := api.Group("/signers")
		{
			signers.Post("/:id/sign", r.signatureHandler.Sign)
		}

		// Log routes
		logs := api.Group("/logs")
		{
			logs.Get("", r.logHandler.GetLogs)
			logs.Get("/search", r.logHandler.SearchLogs)
		}
	}

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

// observe records request counts and latency by route template
func (r *Router) observe(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	path := c.Route().Path
	if path == "" || path == "/" {
		path = "unmatched"
	}
	r.metrics.ObserveHTTP(c.Method(), path, status, time.Since(start))
	return err
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	message := err.Error()
	if code == fiber.StatusInternalServerError {
		message = "internal server error"
	}

	return c.Status(code).JSON(entity.NewErrorResponse(fiberErrorCode(code), message))
}

func fiberErrorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return handler.CodeNotFound
	case fiber.StatusBadRequest:
		return handler.CodeBadRequest
	case fiber.StatusInternalServerError:
		return handler.CodeInternal
	default:
		return "HTTP_ERROR"
	}
}
