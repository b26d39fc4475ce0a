package storeapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/cart"
)

type cartLineView struct {
	cart.LineItem
	EffectivePrice float64 `json:"effective_price"`
	LineTotal      float64 `json:"line_total"`
}

type cartView struct {
	Items []cartLineView `json:"items"`
	Count int            `json:"count"`
	Total float64        `json:"total"`
}

func viewOf(items []cart.LineItem) cartView {
	view := cartView{
		Items: make([]cartLineView, 0, len(items)),
		Count: cart.ItemCount(items),
		Total: cart.CartTotal(items),
	}
	for _, it := range items {
		view.Items = append(view.Items, cartLineView{
			LineItem:       it,
			EffectivePrice: cart.EffectivePrice(it.Price, it.Quantity),
			LineTotal:      cart.LineTotal(it.Price, it.Quantity),
		})
	}
	return view
}

// getCart returns the session cart, refreshed against the live catalog so
// stale prices from an earlier visit are corrected before display.
func (h *Handler) getCart(c echo.Context) error {
	items := cart.Reconcile(cart.NewStore(cart.NewSessionKV(c)), h.catalog)
	return ok(c, viewOf(items))
}

type cartItemPayload struct {
	ProductID string `json:"product_id" form:"product_id"`
	Quantity  int    `json:"quantity" form:"quantity"`
	Color     string `json:"color" form:"color"`
	Size      string `json:"size" form:"size"`
	Brand     string `json:"brand" form:"brand"`
	NewColor  string `json:"new_color" form:"new_color"`
	NewSize   string `json:"new_size" form:"new_size"`
	NewBrand  string `json:"new_brand" form:"new_brand"`
}

func (p cartItemPayload) key() cart.VariantKey {
	return cart.VariantKey{ProductID: p.ProductID, Color: p.Color, Size: p.Size, Brand: p.Brand}
}

func (h *Handler) addCartItem(c echo.Context) error {
	var payload cartItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", nil)
	}
	product, found := h.catalog.GetProduct(payload.ProductID)
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	items := h.sessionCart(c).Add(product, payload.Quantity, payload.Color, payload.Size, payload.Brand)
	return ok(c, viewOf(items))
}

func (h *Handler) updateCartQuantity(c echo.Context) error {
	var payload cartItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", nil)
	}
	items := h.sessionCart(c).UpdateQuantity(payload.key(), payload.Quantity)
	return ok(c, viewOf(items))
}

func (h *Handler) updateCartAttributes(c echo.Context) error {
	var payload cartItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", nil)
	}
	items := h.sessionCart(c).UpdateAttributes(payload.key(), payload.NewColor, payload.NewSize, payload.NewBrand)
	return ok(c, viewOf(items))
}

func (h *Handler) removeCartItem(c echo.Context) error {
	var payload cartItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", nil)
	}
	items := h.sessionCart(c).Remove(payload.key())
	return ok(c, viewOf(items))
}

func (h *Handler) removeCartProduct(c echo.Context) error {
	items := h.sessionCart(c).RemoveProduct(c.Param("id"))
	return ok(c, viewOf(items))
}

func (h *Handler) clearCart(c echo.Context) error {
	h.sessionCart(c).Clear()
	return ok(c, viewOf(nil))
}
