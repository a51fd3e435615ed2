package handler

import (
	"bytes"
	"errors"
	"net/http"

	"storefront/internal/core/apierror"
	"storefront/internal/core/logger"
	"storefront/internal/core/metrics"
	"storefront/internal/core/session"
	alerts "storefront/internal/features/alerts/domain"
	alertports "storefront/internal/features/alerts/ports"
	cartports "storefront/internal/features/cart/ports"
	"storefront/internal/features/checkout/domain"
	"storefront/internal/features/checkout/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Alert texts shown to the shopper after a failed checkout.
const (
	MessageEmptyCart      = "Cart is empty"
	MessageCheckoutFailed = "Checkout failed, please try again"
)

// CheckoutHandler handles the checkout form submission.
type CheckoutHandler struct {
	sessions ports.SessionCreator
	carts    cartports.CartService
	alerts   alertports.AlertService
	metrics  *metrics.Metrics
}

// NewCheckoutHandler creates a new instance of CheckoutHandler. m may be nil.
func NewCheckoutHandler(s ports.SessionCreator, c cartports.CartService, a alertports.AlertService, m *metrics.Metrics) *CheckoutHandler {
	return &CheckoutHandler{sessions: s, carts: c, alerts: a, metrics: m}
}

// CheckoutResponse carries the hosted payment page URL.
type CheckoutResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// Submit validates the shipping information and starts a payment session for the session's cart.
// @Summary Submit checkout
// @Description Form posts are answered with 303 See Other to the payment page, JSON posts with its URL.
// @Tags checkout
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body domain.CustomerInfo true "Shipping information"
// @Success 200 {object} CheckoutResponse
// @Success 303
// @Failure 400 {object} apierror.Response
// @Failure 422 {object} apierror.Response
// @Failure 502 {object} apierror.Response
// @Router /checkout [post]
func (h *CheckoutHandler) Submit(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sid := session.ID(c)
	log := logger.Named("checkout").With(zap.String("ray_id", apierror.RayID(c)))

	var info domain.CustomerInfo
	if err := c.BodyParser(&info); err != nil {
		return apierror.Write(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := info.Validate(); err != nil {
		h.metrics.Checkout(metrics.OutcomeInvalid)

		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return apierror.WriteFields(c, http.StatusUnprocessableEntity, "Invalid shipping information", verr.Fields)
		}
		return apierror.Write(c, http.StatusUnprocessableEntity, "Invalid shipping information")
	}

	cart, err := h.carts.GetCart(ctx, sid)
	if err != nil {
		log.Error("Failed to load cart", zap.Error(err))
		return apierror.Write(c, http.StatusInternalServerError, "Failed to load cart")
	}

	if cart.IsEmpty() {
		h.metrics.Checkout(metrics.OutcomeEmptyCart)
		h.notify(c, log, MessageEmptyCart)
		return apierror.Write(c, http.StatusBadRequest, MessageEmptyCart)
	}

	redirectURL, err := h.sessions.CreateSession(ctx, info, cart.Snapshot())
	if err != nil {
		log.Error("Checkout failed", zap.Error(err))
		h.notify(c, log, MessageCheckoutFailed)
		return apierror.Write(c, http.StatusBadGateway, MessageCheckoutFailed)
	}

	if err := h.carts.ClearCart(ctx, sid); err != nil {
		log.Warn("Failed to clear cart after checkout", zap.Error(err))
	}

	if isFormPost(c) {
		return c.Redirect(redirectURL, http.StatusSeeOther)
	}
	return c.Status(http.StatusOK).JSON(CheckoutResponse{RedirectURL: redirectURL})
}

func (h *CheckoutHandler) notify(c *fiber.Ctx, log *zap.Logger, message string) {
	if err := h.alerts.Notify(c.UserContext(), session.ID(c), alerts.AlertTypeError, message); err != nil {
		log.Warn("Failed to store alert", zap.Error(err))
	}
}

func isFormPost(c *fiber.Ctx) bool {
	ct := c.Request().Header.ContentType()
	return bytes.HasPrefix(ct, []byte(fiber.MIMEApplicationForm)) ||
		bytes.HasPrefix(ct, []byte(fiber.MIMEMultipartForm))
}
