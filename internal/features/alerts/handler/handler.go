package handler

import (
	"net/http"

	"storefront/internal/core/apierror"
	"storefront/internal/core/logger"
	"storefront/internal/core/session"
	"storefront/internal/features/alerts/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AlertHandler handles HTTP requests for session alerts.
type AlertHandler struct {
	service ports.AlertService
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(service ports.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

// GetAlert handles GET /alerts.
// @Summary Get the current alert
// @Description Retrieves the pending notification of the caller's session.
// @Tags alerts
// @Produce json
// @Success 200 {object} domain.Alert
// @Failure 404 {object} apierror.Response
// @Failure 500 {object} apierror.Response
// @Router /alerts [get]
func (h *AlertHandler) GetAlert(c *fiber.Ctx) error {
	alert, err := h.service.Current(c.UserContext(), session.ID(c))
	if err != nil {
		logger.Get().Error("Failed to get alert", zap.String("ray_id", apierror.RayID(c)), zap.Error(err))
		return apierror.Write(c, http.StatusInternalServerError, "Internal Server Error")
	}

	if alert == nil {
		return apierror.Write(c, http.StatusNotFound, "No active alert")
	}

	return c.Status(http.StatusOK).JSON(alert)
}

// DismissAlert handles DELETE /alerts.
// @Summary Dismiss the current alert
// @Tags alerts
// @Success 204
// @Failure 500 {object} apierror.Response
// @Router /alerts [delete]
func (h *AlertHandler) DismissAlert(c *fiber.Ctx) error {
	if err := h.service.Dismiss(c.UserContext(), session.ID(c)); err != nil {
		logger.Get().Error("Failed to dismiss alert", zap.String("ray_id", apierror.RayID(c)), zap.Error(err))
		return apierror.Write(c, http.StatusInternalServerError, "Internal Server Error")
	}

	return c.SendStatus(http.StatusNoContent)
}
