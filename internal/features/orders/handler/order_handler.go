package handler

import (
	"errors"
	"net/http"

	"storefront/internal/core/apierror"
	"storefront/internal/core/logger"
	"storefront/internal/features/orders/domain"
	"storefront/internal/features/orders/ports"
	payments "storefront/internal/features/payments/domain"
	payports "storefront/internal/features/payments/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SignatureHeader carries the provider's webhook signature.
const SignatureHeader = "Stripe-Signature"

// OrderHandler handles HTTP requests for orders and payment notifications.
type OrderHandler struct {
	service  ports.OrderService
	verifier payports.WebhookVerifier
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s ports.OrderService, v payports.WebhookVerifier) *OrderHandler {
	return &OrderHandler{service: s, verifier: v}
}

// ConfirmResponse is returned when the shopper comes back from the payment page.
type ConfirmResponse struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order"`
}

// WebhookAck acknowledges a payment notification.
type WebhookAck struct {
	Received bool `json:"received"`
}

// ListOrders returns every order, newest first.
// @Summary List orders
// @Tags orders
// @Produce json
// @Success 200 {array} domain.Order
// @Failure 500 {object} apierror.Response
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext())
	if err != nil {
		logger.Get().Error("Failed to list orders", zap.String("ray_id", apierror.RayID(c)), zap.Error(err))
		return apierror.Write(c, http.StatusInternalServerError, "Failed to load orders")
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return c.Status(http.StatusOK).JSON(orders)
}

// GetOrder returns one order.
// @Summary Get order by ID
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} apierror.Response
// @Failure 500 {object} apierror.Response
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(order)
}

// Confirm finalizes an order from the payment provider's success redirect.
// @Summary Confirm a paid order
// @Description Completing an already completed order returns it unchanged.
// @Tags orders
// @Produce json
// @Param session_id query string true "Checkout session ID"
// @Param order_id query string false "Order ID"
// @Success 200 {object} ConfirmResponse
// @Failure 400 {object} apierror.Response
// @Failure 402 {object} apierror.Response
// @Failure 404 {object} apierror.Response
// @Failure 409 {object} apierror.Response
// @Failure 502 {object} apierror.Response
// @Router /orders/confirm [get]
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return apierror.Write(c, http.StatusBadRequest, "session_id is required")
	}

	var (
		order *domain.Order
		err   error
	)
	if orderID := c.Query("order_id"); orderID != "" {
		order, err = h.service.Finalize(c.UserContext(), orderID, sessionID)
	} else {
		order, err = h.service.FinalizeBySession(c.UserContext(), sessionID)
	}
	if err != nil {
		return h.writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(ConfirmResponse{Success: true, Order: order})
}

// PaymentWebhook receives signed payment provider events.
// @Summary Payment provider webhook
// @Tags orders
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200 {object} WebhookAck
// @Failure 400 {object} apierror.Response
// @Failure 500 {object} apierror.Response
// @Router /webhooks/payments [post]
func (h *OrderHandler) PaymentWebhook(c *fiber.Ctx) error {
	log := logger.Named("webhooks").With(zap.String("ray_id", apierror.RayID(c)))

	evt, err := h.verifier.ParseEvent(c.Body(), c.Get(SignatureHeader))
	if err != nil {
		log.Warn("Rejected payment webhook", zap.Error(err))
		return apierror.Write(c, http.StatusBadRequest, "Invalid webhook payload")
	}

	order, err := h.service.HandlePaymentEvent(c.UserContext(), evt)
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrSessionMismatch):
		log.Warn("Payment event does not match an order",
			zap.String("event_id", evt.ID),
			zap.String("session_id", evt.SessionID),
			zap.Error(err),
		)
	case errors.Is(err, domain.ErrPaymentIncomplete):
		log.Info("Payment event left order pending", zap.String("event_id", evt.ID), zap.Error(err))
	case err != nil:
		log.Error("Failed to apply payment event", zap.String("event_id", evt.ID), zap.Error(err))
		return apierror.Write(c, http.StatusInternalServerError, "Failed to process event")
	case order != nil:
		log.Info("Payment event applied", zap.String("event_id", evt.ID), zap.String("order_id", order.ID))
	}

	return c.Status(http.StatusOK).JSON(WebhookAck{Received: true})
}

func (h *OrderHandler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return apierror.Write(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, domain.ErrSessionMismatch):
		return apierror.Write(c, http.StatusConflict, "Payment session does not match order")
	case errors.Is(err, domain.ErrPaymentIncomplete):
		return apierror.Write(c, http.StatusPaymentRequired, "Payment has not been completed")
	case errors.Is(err, payments.ErrProvider):
		logger.Get().Warn("Payment provider unavailable", zap.String("ray_id", apierror.RayID(c)), zap.Error(err))
		return apierror.Write(c, http.StatusBadGateway, "Payment provider unavailable")
	default:
		logger.Get().Error("Order request failed", zap.String("ray_id", apierror.RayID(c)), zap.Error(err))
		return apierror.Write(c, http.StatusInternalServerError, "Internal server error")
	}
}
