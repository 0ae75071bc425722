package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/controlink-dev/arpoone-gateway/environments"
	"github.com/controlink-dev/arpoone-gateway/handlers"
	"github.com/controlink-dev/arpoone-gateway/internal/middlewares"
)

// RegisterRoutes registers all API routes with middleware. The
// /arpoone/webhook endpoints are public: the provider calls them and
// does not send our API key.
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	dispatchHandler *handlers.DispatchHandler,
	webhookHandler *handlers.WebhookHandler,
	logHandler *handlers.LogHandler,
	cfg *environments.Config,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Provider-facing status callbacks. The trailing status segment is
	// part of the URLs registered with the provider at send time.
	webhooks := e.Group("/arpoone/webhook")
	webhooks.POST("/sms/:status", webhookHandler.SmsStatus)
	webhooks.POST("/sms", webhookHandler.SmsStatus)
	webhooks.POST("/email/:status", webhookHandler.EmailStatus)
	webhooks.POST("/email", webhookHandler.EmailStatus)

	// API v1 base group
	v1 := e.Group("/api/v1", middlewares.APIKeyAuth(cfg.Auth.DispatchAPIKey))

	dispatch := v1.Group("/dispatch")
	dispatch.POST("/sms", dispatchHandler.DispatchSms)
	dispatch.POST("/email", dispatchHandler.DispatchEmail)

	logs := v1.Group("/logs")
	logs.GET("/cached", logHandler.GetCachedLogs)
	logs.GET("/:channel", logHandler.ListLogs)
	logs.GET("/:channel/:messageId", logHandler.GetLog)
}
