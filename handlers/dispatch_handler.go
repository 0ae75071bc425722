package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/controlink-dev/arpoone-gateway/internal/arpoone"
	"github.com/controlink-dev/arpoone-gateway/internal/domain"
	"github.com/controlink-dev/arpoone-gateway/internal/service"
	"github.com/controlink-dev/arpoone-gateway/pkg/response"
	"github.com/controlink-dev/arpoone-gateway/pkg/validator"
)

type DispatchHandler struct {
	service *service.DispatchService
}

func NewDispatchHandler(service *service.DispatchService) *DispatchHandler {
	return &DispatchHandler{service: service}
}

type DispatchSmsRequest struct {
	TenantID    *string `json:"tenantId,omitempty"`
	PhoneNumber string  `json:"phoneNumber" validate:"required"`
	Content     string  `json:"content" validate:"required"`
}

type DispatchEmailRequest struct {
	TenantID    *string             `json:"tenantId,omitempty"`
	Email       string              `json:"email" validate:"required,email"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent" validate:"required"`
	TextContent string              `json:"textContent"`
	Attachments []domain.Attachment `json:"attachments" validate:"omitempty,dive"`
}

// Request-scoped adapters implementing the routing interfaces the
// dispatch pipeline expects.
type smsRecipient struct{ phone string }

func (r smsRecipient) PhoneNumber() string { return r.phone }

type emailRecipient struct{ email string }

func (r emailRecipient) EmailAddress() string { return r.email }

type requestMessage struct{ message domain.OutboundMessage }

func (r requestMessage) ArpooneMessage() (*domain.OutboundMessage, error) {
	return &r.message, nil
}

// DispatchSms godoc
// @Summary Dispatch an SMS message
// @Description Sends an SMS through the Arpoone provider and records the dispatch when SMS logging is enabled
// @Tags dispatch
// @Accept json
// @Produce json
// @Param x-arpoone-auth-key header string true "API key"
// @Param request body DispatchSmsRequest true "SMS dispatch request"
// @Success 200 {object} response.SuccessResponse
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/dispatch/sms [post]
func (h *DispatchHandler) DispatchSms(c echo.Context) error {
	var req DispatchSmsRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	result, err := h.service.Dispatch(
		c.Request().Context(),
		req.TenantID,
		smsRecipient{phone: req.PhoneNumber},
		requestMessage{message: domain.OutboundMessage{
			Type:    domain.ChannelSMS,
			Content: req.Content,
		}},
	)
	if err != nil {
		return dispatchErrorResponse(c, err)
	}

	return dispatchSuccessResponse(c, result)
}

// DispatchEmail godoc
// @Summary Dispatch an email message
// @Description Sends an email through the Arpoone provider and records the dispatch when email logging is enabled
// @Tags dispatch
// @Accept json
// @Produce json
// @Param x-arpoone-auth-key header string true "API key"
// @Param request body DispatchEmailRequest true "Email dispatch request"
// @Success 200 {object} response.SuccessResponse
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/dispatch/email [post]
func (h *DispatchHandler) DispatchEmail(c echo.Context) error {
	var req DispatchEmailRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	result, err := h.service.Dispatch(
		c.Request().Context(),
		req.TenantID,
		emailRecipient{email: req.Email},
		requestMessage{message: domain.OutboundMessage{
			Type:        domain.ChannelEmail,
			Subject:     req.Subject,
			HTMLContent: req.HTMLContent,
			TextContent: req.TextContent,
			Attachments: req.Attachments,
		}},
	)
	if err != nil {
		return dispatchErrorResponse(c, err)
	}

	return dispatchSuccessResponse(c, result)
}

// dispatchSuccessResponse distinguishes "sent and logged", "sent,
// logging disabled" and "sent but logging failed" — the last must not
// look like a dispatch failure, the message already left.
func dispatchSuccessResponse(c echo.Context, result *service.DispatchResult) error {
	if result.LoggingErr != nil {
		return response.OkWithMessage(c, "message sent, logging failed", map[string]any{
			"providerResponse": result.Response,
			"loggingError":     result.LoggingErr.Error(),
		})
	}

	if result.Record != nil {
		return response.Created(c, "message dispatched", result.Record)
	}

	return response.Ok(c, result.Response)
}

func dispatchErrorResponse(c echo.Context, err error) error {
	var (
		validationErr  *arpoone.ValidationError
		recipientErr   *arpoone.RecipientError
		configErr      *arpoone.ConfigurationError
		tenantNotFound *arpoone.TenantNotFoundError
		providerErr    *arpoone.ProviderError
		recordNotFound *arpoone.RecordNotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		return response.UnprocessableEntity(c, err)
	case errors.As(err, &recipientErr):
		return response.BadRequest(c, err)
	case errors.As(err, &tenantNotFound):
		return response.NotFound(c, err.Error())
	case errors.As(err, &configErr):
		return response.BadRequest(c, err)
	case errors.As(err, &providerErr):
		return response.BadGateway(c, err)
	case errors.As(err, &recordNotFound):
		return response.NotFound(c, err.Error())
	default:
		return response.InternalServerError(c, err)
	}
}
