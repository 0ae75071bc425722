package handlers

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/controlink-dev/arpoone-gateway/internal/domain"
	"github.com/controlink-dev/arpoone-gateway/internal/service"
	"github.com/controlink-dev/arpoone-gateway/pkg/response"
)

// LogHandler exposes the dispatch log for inspection.
type LogHandler struct {
	service *service.DispatchService
}

func NewLogHandler(service *service.DispatchService) *LogHandler {
	return &LogHandler{service: service}
}

// ListLogs godoc
// @Summary List dispatch records
// @Description Retrieves a paginated list of one channel's dispatch records, newest first
// @Tags logs
// @Accept json
// @Produce json
// @Param x-arpoone-auth-key header string true "API key"
// @Param channel path string true "Channel (sms or email)"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/logs/{channel} [get]
func (h *LogHandler) ListLogs(c echo.Context) error {
	channel, err := parseChannelParam(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	records, totalCount, err := h.service.ListDispatches(c.Request().Context(), channel, page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Paginated(c, records, page, pageSize, totalCount)
}

// GetLog godoc
// @Summary Get a dispatch record
// @Description Retrieves one dispatch record by its provider-assigned message id
// @Tags logs
// @Accept json
// @Produce json
// @Param x-arpoone-auth-key header string true "API key"
// @Param channel path string true "Channel (sms or email)"
// @Param messageId path string true "Provider message id"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/logs/{channel}/{messageId} [get]
func (h *LogHandler) GetLog(c echo.Context) error {
	channel, err := parseChannelParam(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	messageID := c.Param("messageId")

	record, err := h.service.GetDispatchByMessageID(c.Request().Context(), channel, messageID)
	if err != nil {
		return response.InternalServerError(c, err)
	}
	if record == nil {
		return response.NotFound(c, fmt.Sprintf("no %s dispatch record found for message id %q", channel, messageID))
	}

	return response.Ok(c, record)
}

// GetCachedLogs godoc
// @Summary Get recently dispatched messages from cache
// @Description Retrieves the dispatch records cached in Redis during the last 24 hours
// @Tags logs
// @Accept json
// @Produce json
// @Param x-arpoone-auth-key header string true "API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/logs/cached [get]
func (h *LogHandler) GetCachedLogs(c echo.Context) error {
	cached, err := h.service.GetCachedDispatches(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, cached)
}

func parseChannelParam(c echo.Context) (domain.Channel, error) {
	switch channel := domain.Channel(c.Param("channel")); channel {
	case domain.ChannelSMS, domain.ChannelEmail:
		return channel, nil
	default:
		return "", fmt.Errorf("channel must be %q or %q", domain.ChannelSMS, domain.ChannelEmail)
	}
}

func parsePaginationParams(c echo.Context) (page, pageSize int, err error) {
	page = 1
	pageSize = 20

	if raw := c.QueryParam("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
	}

	if raw := c.QueryParam("pageSize"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 || pageSize > 100 {
			return 0, 0, fmt.Errorf("pageSize must be between 1 and 100")
		}
	}

	return page, pageSize, nil
}
