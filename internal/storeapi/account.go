package storeapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/auth"
)

type credentialsPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
}

func (h *Handler) register(c echo.Context) error {
	var payload credentialsPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", nil)
	}
	if len(payload.Password) < 6 {
		return fail(c, http.StatusBadRequest, "WEAK_PASSWORD", "Password must be at least 6 characters", nil)
	}

	user, err := h.auth.Register(payload.Email, payload.Password, payload.Name)
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		return fail(c, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists", nil)
	case err != nil:
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	token, err := h.auth.IssueToken(user)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", nil)
	}
	setAuthCookie(c, token)
	return ok(c, user)
}

func (h *Handler) login(c echo.Context) error {
	var payload credentialsPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", nil)
	}
	user, token, err := h.auth.Login(payload.Email, payload.Password)
	if err != nil {
		// a single error for unknown email and wrong password
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}
	setAuthCookie(c, token)
	return ok(c, user)
}

func (h *Handler) logout(c echo.Context) error {
	clearAuthCookie(c)
	return ok(c, map[string]interface{}{"logged_out": true})
}

func (h *Handler) authStatus(c echo.Context) error {
	claims := h.currentClaims(c)
	if claims == nil {
		return ok(c, map[string]interface{}{"authenticated": false})
	}
	return ok(c, map[string]interface{}{
		"authenticated": true,
		"user_id":       claims.UserId,
		"email":         claims.Email,
		"role":          claims.Role,
	})
}

// forgotPassword always answers success so the endpoint cannot be used to
// probe for registered emails.
func (h *Handler) forgotPassword(c echo.Context) error {
	var payload credentialsPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", nil)
	}
	token, err := h.auth.BeginPasswordReset(payload.Email)
	if err == nil && token != "" && h.mailer != nil {
		h.mailer.SendPasswordReset(payload.Email, h.resetURL+"?token="+token)
	}
	return ok(c, map[string]interface{}{"sent": true})
}

func (h *Handler) resetPassword(c echo.Context) error {
	var payload struct {
		Token    string `json:"token" form:"token"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", nil)
	}
	if len(payload.Password) < 6 {
		return fail(c, http.StatusBadRequest, "WEAK_PASSWORD", "Password must be at least 6 characters", nil)
	}
	if err := h.auth.ResetPassword(payload.Token, payload.Password); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_TOKEN", "Reset link is invalid or expired", nil)
	}
	return ok(c, map[string]interface{}{"reset": true})
}

func (h *Handler) listAccountOrders(c echo.Context) error {
	claims := h.currentClaims(c)
	if claims == nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Sign in to see your orders", nil)
	}
	orders, err := h.orders.ListByUser(c.Request().Context(), claims.UserId)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", nil)
	}
	return ok(c, orders)
}
