package handler

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/core/apierror"
	"storefront/internal/core/logger"
	"storefront/internal/core/session"
	"storefront/internal/features/cart/domain"
	"storefront/internal/features/cart/ports"
	catalog "storefront/internal/features/catalog/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the session's shopping cart.
type CartHandler struct {
	service ports.CartService
}

// NewCartHandler creates a new instance of CartHandler.
func NewCartHandler(s ports.CartService) *CartHandler {
	return &CartHandler{service: s}
}

// AddItemRequest is the body of POST /cart/items.
type AddItemRequest struct {
	ProductID int `json:"product_id" form:"product_id"`
}

// CartResponse is the cart with its derived totals.
type CartResponse struct {
	Items []domain.Item   `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func newCartResponse(c *domain.Cart) CartResponse {
	return CartResponse{
		Items: c.Items,
		Count: c.Count(),
		Total: c.Total(),
	}
}

// GetCart returns the session's cart.
// @Summary Get cart
// @Tags cart
// @Produce json
// @Success 200 {object} CartResponse
// @Failure 500 {object} apierror.Response
// @Router /cart [get]
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), session.ID(c))
	if err != nil {
		return h.internalError(c, "Failed to load cart", err)
	}
	return c.Status(http.StatusOK).JSON(newCartResponse(cart))
}

// AddItem adds one unit of a product to the cart.
// @Summary Add product to cart
// @Tags cart
// @Accept json
// @Produce json
// @Param request body AddItemRequest true "Product to add"
// @Success 200 {object} CartResponse
// @Failure 400 {object} apierror.Response
// @Failure 404 {object} apierror.Response
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil || req.ProductID <= 0 {
		return apierror.Write(c, http.StatusBadRequest, "product_id must be a positive integer")
	}

	cart, err := h.service.AddProduct(c.UserContext(), session.ID(c), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return apierror.Write(c, http.StatusNotFound, "Product not found")
		}
		return h.internalError(c, "Failed to add product", err)
	}

	return c.Status(http.StatusOK).JSON(newCartResponse(cart))
}

// RemoveItem removes one unit of a product from the cart.
// @Summary Remove product from cart
// @Tags cart
// @Produce json
// @Param productId path int true "Product ID"
// @Success 200 {object} CartResponse
// @Failure 400 {object} apierror.Response
// @Router /cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil || productID <= 0 {
		return apierror.Write(c, http.StatusBadRequest, "Product ID must be a positive integer")
	}

	cart, err := h.service.RemoveProduct(c.UserContext(), session.ID(c), productID)
	if err != nil {
		return h.internalError(c, "Failed to remove product", err)
	}

	return c.Status(http.StatusOK).JSON(newCartResponse(cart))
}

// ClearCart empties the cart.
// @Summary Clear cart
// @Tags cart
// @Success 204
// @Router /cart [delete]
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	if err := h.service.ClearCart(c.UserContext(), session.ID(c)); err != nil {
		return h.internalError(c, "Failed to clear cart", err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *CartHandler) internalError(c *fiber.Ctx, msg string, err error) error {
	logger.Get().Error(msg,
		zap.String("session_id", session.ID(c)),
		zap.String("ray_id", apierror.RayID(c)),
		zap.Error(err),
	)
	return apierror.Write(c, http.StatusInternalServerError, "Internal Server Error")
}
