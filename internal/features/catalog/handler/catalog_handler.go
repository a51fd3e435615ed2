package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/core/apierror"
	"storefront/internal/core/logger"
	"storefront/internal/core/session"
	"storefront/internal/features/catalog/domain"
	"storefront/internal/features/catalog/ports"
	filters "storefront/internal/features/filters/domain"
	filterports "storefront/internal/features/filters/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CatalogHandler handles HTTP requests for products and categories.
type CatalogHandler struct {
	service ports.CatalogService
	filters filterports.FilterService
}

// NewCatalogHandler creates a new instance of CatalogHandler.
func NewCatalogHandler(s ports.CatalogService, f filterports.FilterService) *CatalogHandler {
	return &CatalogHandler{service: s, filters: f}
}

// ProductListResponse is a filtered page of the catalog.
type ProductListResponse struct {
	// Products are the matching products in display order.
	Products []domain.Product `json:"products"`
	// Count is len(Products).
	Count int `json:"count"`
	// Filters is the state that produced this list.
	Filters filters.State `json:"filters"`
}

// ListProducts returns the catalog filtered by the resolved criteria.
// @Summary List products
// @Description Filters come from the query string, or from the session when the query has none.
// @Tags catalog
// @Produce json
// @Param q query string false "Search text"
// @Param category query string false "Category slug"
// @Param price[min] query number false "Minimum price"
// @Param price[max] query number false "Maximum price"
// @Param top_rated query bool false "Order by rating"
// @Param sort query string false "Price sort (asc, desc)"
// @Success 200 {object} ProductListResponse
// @Router /products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	products := h.service.ListProducts(ctx)
	bounds := filters.BoundsFrom(domain.ComputePriceRange(products))

	query, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	state := h.filters.Resolve(ctx, session.ID(c), query, bounds)
	matched := filters.Apply(products, state.Criteria)

	return c.Status(http.StatusOK).JSON(ProductListResponse{
		Products: matched,
		Count:    len(matched),
		Filters:  state,
	})
}

// GetPriceRange returns the catalog's rounded price bounds.
// @Summary Catalog price range
// @Tags catalog
// @Produce json
// @Success 200 {object} domain.PriceRange
// @Router /products/price-range [get]
func (h *CatalogHandler) GetPriceRange(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.service.PriceRange(c.UserContext()))
}

// GetProduct returns one product.
// @Summary Get product by ID
// @Tags catalog
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 400 {object} apierror.Response
// @Failure 404 {object} apierror.Response
// @Failure 502 {object} apierror.Response
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return apierror.Write(c, http.StatusBadRequest, "Product ID must be a positive integer")
	}

	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return apierror.Write(c, http.StatusNotFound, "Product not found")
		}

		logger.Get().Error("Failed to fetch product",
			zap.Int("product_id", id),
			zap.String("ray_id", apierror.RayID(c)),
			zap.Error(err),
		)
		return apierror.Write(c, http.StatusBadGateway, "Catalog unavailable")
	}

	return c.Status(http.StatusOK).JSON(product)
}

// ListCategories returns the catalog categories.
// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {array} domain.Category
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.service.ListCategories(c.UserContext()))
}
