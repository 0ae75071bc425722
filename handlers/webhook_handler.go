package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/controlink-dev/arpoone-gateway/internal/domain"
	"github.com/controlink-dev/arpoone-gateway/internal/service"
	"github.com/controlink-dev/arpoone-gateway/pkg/logger"
	"github.com/controlink-dev/arpoone-gateway/pkg/response"
	"github.com/controlink-dev/arpoone-gateway/pkg/validator"
)

// WebhookHandler receives the provider's asynchronous delivery-status
// callbacks.
type WebhookHandler struct {
	service *service.ReconcileService
}

func NewWebhookHandler(service *service.ReconcileService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// SmsStatus godoc
// @Summary SMS status webhook
// @Description Receives SMS delivery-status callbacks from the provider; accepts a single event object or an array of events
// @Tags webhooks
// @Accept json
// @Produce json
// @Param status path string false "Status hint from the registered callback URL"
// @Success 200 {object} map[string]string
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Router /arpoone/webhook/sms/{status} [post]
func (h *WebhookHandler) SmsStatus(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return response.BadRequest(c, err)
	}

	// The provider has posted both a bare event object and an array of
	// events; normalize to a batch.
	var events []domain.SmsWebhookEvent
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &events)
	} else {
		var single domain.SmsWebhookEvent
		if err = json.Unmarshal(trimmed, &single); err == nil {
			events = []domain.SmsWebhookEvent{single}
		}
	}
	if err != nil {
		return response.BadRequest(c, err)
	}

	for i := range events {
		if err := c.Validate(&events[i]); err != nil {
			return validator.HandleValidationError(c, err)
		}
	}

	logger.Debugf("Received %d SMS webhook event(s) (path status: %s)", len(events), c.Param("status"))

	if err := h.service.ProcessSmsEvents(c.Request().Context(), events, webhookMeta(c)); err != nil {
		return dispatchErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Webhook processed successfully."})
}

// EmailStatus godoc
// @Summary Email event webhook
// @Description Receives email event callbacks from the provider as an array of events
// @Tags webhooks
// @Accept json
// @Produce json
// @Param status path string false "Status hint from the registered callback URL"
// @Success 200 {object} map[string]string
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Router /arpoone/webhook/email/{status} [post]
func (h *WebhookHandler) EmailStatus(c echo.Context) error {
	var events []domain.EmailWebhookEvent
	if err := c.Bind(&events); err != nil {
		return response.BadRequest(c, err)
	}

	for i := range events {
		if err := c.Validate(&events[i]); err != nil {
			return validator.HandleValidationError(c, err)
		}
	}

	logger.Debugf("Received %d email webhook event(s) (path status: %s)", len(events), c.Param("status"))

	if err := h.service.ProcessEmailEvents(c.Request().Context(), events, webhookMeta(c)); err != nil {
		return dispatchErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Webhook processed successfully."})
}

func webhookMeta(c echo.Context) service.WebhookMeta {
	headers, err := json.Marshal(c.Request().Header)
	if err != nil {
		headers = []byte("{}")
	}

	return service.WebhookMeta{
		Headers:   string(headers),
		IPAddress: c.RealIP(),
	}
}
