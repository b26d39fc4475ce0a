package cart

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionName is the cookie session holding the visitor's cart.
const SessionName = "latoree"

// Thirty days, matching the storefront's local-storage longevity.
const sessionMaxAge = 30 * 24 * 60 * 60

// SessionKV scopes the cart KV to one browser profile through the
// echo-contrib cookie session. Reads and writes degrade silently when the
// session layer is unavailable, so Store.Get stays error-free.
type SessionKV struct {
	c echo.Context
}

// NewSessionKV returns the per-request KV bound to the visitor's session.
// Requires the session middleware to be installed on the route.
func NewSessionKV(c echo.Context) *SessionKV {
	return &SessionKV{c: c}
}

func (s *SessionKV) Get(key string) (string, bool) {
	sess, err := session.Get(SessionName, s.c)
	if err != nil {
		return "", false
	}
	v, ok := sess.Values[key].(string)
	return v, ok
}

func (s *SessionKV) Set(key, value string) {
	sess, err := session.Get(SessionName, s.c)
	if err != nil {
		zap.L().Warn("cart session unavailable", zap.Error(err))
		return
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	sess.Values[key] = value
	if err := sess.Save(s.c.Request(), s.c.Response()); err != nil {
		zap.L().Warn("cart session save failed", zap.Error(err))
	}
}

func (s *SessionKV) Remove(key string) {
	sess, err := session.Get(SessionName, s.c)
	if err != nil {
		return
	}
	delete(sess.Values, key)
	if err := sess.Save(s.c.Request(), s.c.Response()); err != nil {
		zap.L().Warn("cart session save failed", zap.Error(err))
	}
}
