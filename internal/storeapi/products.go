package storeapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (h *Handler) listProducts(c echo.Context) error {
	products := h.catalog.List()
	if category := strings.TrimSpace(c.QueryParam("category")); category != "" {
		filtered := products[:0:0]
		for _, p := range products {
			if strings.EqualFold(p.Category, category) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	return ok(c, products)
}

func (h *Handler) getProduct(c echo.Context) error {
	p, found := h.catalog.GetProduct(c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}
