package handler

import (
	"errors"
	"net/http"
	"net/url"

	"storefront/internal/core/apierror"
	"storefront/internal/core/session"
	"storefront/internal/features/filters/domain"
	"storefront/internal/features/filters/ports"

	"github.com/gofiber/fiber/v2"
)

// FilterHandler handles HTTP requests for the shopper's product filters.
type FilterHandler struct {
	service ports.FilterService
	bounds  ports.BoundsProvider
}

// NewFilterHandler creates a new instance of FilterHandler.
func NewFilterHandler(s ports.FilterService, b ports.BoundsProvider) *FilterHandler {
	return &FilterHandler{service: s, bounds: b}
}

// GetFilters resolves the active filters from the query string or the session.
// @Summary Get filters
// @Description Resolve filter criteria from query parameters, falling back to the session's stored filters.
// @Tags filters
// @Produce json
// @Param q query string false "Search text"
// @Param category query string false "Category slug"
// @Param price[min] query number false "Minimum price"
// @Param price[max] query number false "Maximum price"
// @Param top_rated query bool false "Order by rating"
// @Param sort query string false "Price sort (asc, desc)"
// @Success 200 {object} domain.State
// @Router /filters [get]
func (h *FilterHandler) GetFilters(c *fiber.Ctx) error {
	query, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	state := h.service.Resolve(c.UserContext(), session.ID(c), query, h.currentBounds(c))
	return c.Status(http.StatusOK).JSON(state)
}

// UpdateFilters applies a partial update to the session's filters.
// @Summary Update filters
// @Tags filters
// @Accept json
// @Produce json
// @Param request body domain.Patch true "Fields to change"
// @Success 200 {object} domain.State
// @Failure 400 {object} apierror.Response
// @Router /filters [patch]
func (h *FilterHandler) UpdateFilters(c *fiber.Ctx) error {
	var patch domain.Patch
	if err := c.BodyParser(&patch); err != nil {
		return apierror.Write(c, http.StatusBadRequest, "Invalid request body")
	}

	state, err := h.service.Update(c.UserContext(), session.ID(c), patch, h.currentBounds(c))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSort) {
			return apierror.WriteFields(c, http.StatusBadRequest, "Invalid filters", map[string]string{
				"price_sort": "Price sort must be asc, desc or none",
			})
		}
		return apierror.Write(c, http.StatusInternalServerError, "Internal Server Error")
	}

	return c.Status(http.StatusOK).JSON(state)
}

// ResetFilters restores default filters.
// @Summary Reset filters
// @Tags filters
// @Produce json
// @Success 200 {object} domain.State
// @Router /filters [delete]
func (h *FilterHandler) ResetFilters(c *fiber.Ctx) error {
	state := h.service.Reset(c.UserContext(), session.ID(c), h.currentBounds(c))
	return c.Status(http.StatusOK).JSON(state)
}

func (h *FilterHandler) currentBounds(c *fiber.Ctx) domain.Bounds {
	return domain.BoundsFrom(h.bounds.PriceRange(c.UserContext()))
}
