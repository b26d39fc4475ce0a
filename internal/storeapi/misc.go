package storeapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/common"
)

func (h *Handler) contact(c echo.Context) error {
	var payload struct {
		Name    string `json:"name" form:"name"`
		Email   string `json:"email" form:"email"`
		Message string `json:"message" form:"message"`
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse message", nil)
	}
	if !common.ValidEmail(payload.Email) {
		return fail(c, http.StatusBadRequest, "INVALID_EMAIL", "A valid email is required", nil)
	}
	if strings.TrimSpace(payload.Message) == "" {
		return fail(c, http.StatusBadRequest, "EMPTY_MESSAGE", "Message must not be empty", nil)
	}
	if h.mailer != nil {
		h.mailer.ForwardContactMessage(payload.Name, payload.Email, payload.Message)
	}
	return ok(c, map[string]interface{}{"received": true})
}

func (h *Handler) trackBehavior(c echo.Context) error {
	if h.behavior == nil {
		return ok(c, map[string]interface{}{"tracked": false})
	}
	var sample domain.BehaviorSample
	if err := c.Bind(&sample); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse sample", nil)
	}
	sample.ID = 0
	if err := h.behavior.Ingest(sample); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to store sample", nil)
	}
	return ok(c, map[string]interface{}{"tracked": sample.SessionId != ""})
}
