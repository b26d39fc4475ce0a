package storeapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/checkout"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/order"
)

// submitCheckout accepts a multipart form: the shipping fields, the
// payment method and an optional proof file. A first-time guest gets an
// account created during submission and leaves with the auth cookie set.
func (h *Handler) submitCheckout(c echo.Context) error {
	req := checkout.Request{
		Email:          c.FormValue("email"),
		Name:           c.FormValue("name"),
		Address:        c.FormValue("address"),
		City:           c.FormValue("city"),
		Department:     c.FormValue("department"),
		Phone:          c.FormValue("phone"),
		Country:        c.FormValue("country"),
		AdditionalInfo: c.FormValue("additional_info"),
		PaymentMethod:  c.FormValue("payment_method"),
	}
	if claims := h.currentClaims(c); claims != nil {
		req.UserId = claims.UserId
		req.UserEmail = claims.Email
	}

	proof, err := readProof(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_PROOF", "Unable to read payment proof", err.Error())
	}
	req.Proof = proof

	result, _, err := h.checkout.Submit(c.Request().Context(), h.sessionCart(c), req)
	switch {
	case err == nil:
	case errors.Is(err, checkout.ErrEmptyCart):
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cart is empty", nil)
	case errors.Is(err, checkout.ErrMissingProof):
		return fail(c, http.StatusBadRequest, "MISSING_PROOF", "Transfer payments require a payment proof", nil)
	case errors.Is(err, checkout.ErrInvalidEmail):
		return fail(c, http.StatusBadRequest, "INVALID_EMAIL", "A valid email is required", nil)
	case errors.Is(err, checkout.ErrTimedOut):
		return fail(c, http.StatusGatewayTimeout, "TIMEOUT", "Checkout timed out, please retry", nil)
	default:
		return fail(c, http.StatusInternalServerError, "SUBMISSION_FAILED", "Checkout failed, please retry", nil)
	}

	if u := result.AutoRegistered; u != nil {
		if token, err := h.auth.IssueToken(u); err == nil {
			setAuthCookie(c, token)
		}
		if h.mailer != nil && u.TempPassword != "" {
			h.mailer.SendTempPassword(u.Email, u.TempPassword)
		}
	}

	if h.behavior != nil {
		if sid := c.FormValue("session_id"); sid != "" {
			_ = h.behavior.MarkConverted(sid)
		}
	}

	return ok(c, map[string]interface{}{
		"order_id": result.OrderID,
		"total":    result.Total,
	})
}

func readProof(c echo.Context) (*order.ProofUpload, error) {
	fh, err := c.FormFile("proof")
	if err != nil {
		// no file attached
		return nil, nil
	}
	if fh.Size > order.MaxProofSize {
		return nil, order.ErrProofTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, order.MaxProofSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > order.MaxProofSize {
		return nil, order.ErrProofTooLarge
	}
	proof := &order.ProofUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}
	if err := proof.Validate(); err != nil {
		return nil, err
	}
	return proof, nil
}
