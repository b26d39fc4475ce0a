// Package storeapi exposes the public storefront API: catalog browsing,
// the session cart, checkout, customer auth and behavior tracking.
package storeapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/auth"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/behavior"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/cart"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/catalog"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/checkout"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/notify"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/order"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/webserver"
)

// Handler bundles the storefront services behind the public routes.
type Handler struct {
	catalog  *catalog.Service
	checkout *checkout.Service
	auth     *auth.Service
	orders   order.Repository
	behavior *behavior.Service
	mailer   *notify.Mailer
	resetURL string
}

func NewHandler(
	cat *catalog.Service,
	co *checkout.Service,
	au *auth.Service,
	orders order.Repository,
	behav *behavior.Service,
	mailer *notify.Mailer,
	resetURL string,
) *Handler {
	return &Handler{
		catalog:  cat,
		checkout: co,
		auth:     au,
		orders:   orders,
		behavior: behav,
		mailer:   mailer,
		resetURL: resetURL,
	}
}

// InitRouter registers the public routes. Call after webserver.Init.
func (h *Handler) InitRouter() {
	webserver.PubGET("/products", h.listProducts)
	webserver.PubGET("/products/:id", h.getProduct)

	webserver.PubGET("/cart", h.getCart)
	webserver.PubPOST("/cart/items", h.addCartItem)
	webserver.PubPUT("/cart/items/quantity", h.updateCartQuantity)
	webserver.PubPUT("/cart/items/attributes", h.updateCartAttributes)
	webserver.PubDELETE("/cart/items", h.removeCartItem)
	webserver.PubDELETE("/cart/products/:id", h.removeCartProduct)
	webserver.PubDELETE("/cart", h.clearCart)

	webserver.PubPOST("/checkout", h.submitCheckout)

	webserver.PubPOST("/auth/register", h.register)
	webserver.PubPOST("/auth/login", h.login)
	webserver.PubPOST("/auth/logout", h.logout)
	webserver.PubGET("/auth/me", h.authStatus)
	webserver.PubPOST("/auth/forgot-password", h.forgotPassword)
	webserver.PubPOST("/auth/reset-password", h.resetPassword)

	webserver.PubGET("/account/orders", h.listAccountOrders)

	webserver.PubPOST("/contact", h.contact)
	webserver.PubPOST("/behavior", h.trackBehavior)
}

func ok(c echo.Context, data interface{}) error {
	return webserver.Ok(c, data)
}

func fail(c echo.Context, status int, code string, msg string, detail interface{}) error {
	return webserver.Fail(c, status, code, msg, detail)
}

// sessionCart binds the cart to the request's cookie session.
func (h *Handler) sessionCart(c echo.Context) *cart.Cart {
	return cart.New(cart.NewStore(cart.NewSessionKV(c)))
}

// currentClaims resolves the auth cookie, nil for anonymous visitors.
func (h *Handler) currentClaims(c echo.Context) *auth.Claims {
	cookie, err := c.Cookie(auth.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := h.auth.Verify(cookie.Value)
	if err != nil {
		return nil
	}
	return claims
}

func setAuthCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(auth.TokenTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
