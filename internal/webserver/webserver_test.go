package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/eliotaldersonfsociety/tienlatoree/config"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/auth"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
)

func TestAdminRouteAuthCookie(t *testing.T) {
	cfg := &config.AppConfig{
		System: config.SysConfig{Workdir: t.TempDir()},
		Web: config.WebConfig{
			Secret:       "test-secret",
			SessionKey:   "test-session-key",
			AllowOrigins: []string{"http://localhost:3000"},
		},
	}
	Init(cfg, nil)
	ApiGET("/ping", func(c echo.Context) error {
		claims := CurrentClaims(c)
		if claims == nil {
			t.Fatal("claims missing on an authenticated admin request")
		}
		return Ok(c, claims.Email)
	})

	authSvc := auth.NewService(nil, cfg.Web.Secret)
	adminToken, err := authSvc.IssueToken(&domain.User{ID: 1, Email: "admin@latoree.shop", Role: "admin"})
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}
	userToken, err := authSvc.IssueToken(&domain.User{ID: 2, Email: "user@latoree.shop", Role: "user"})
	if err != nil {
		t.Fatalf("issue user token: %v", err)
	}

	call := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		}
		rec := httptest.NewRecorder()
		Echo().ServeHTTP(rec, req)
		return rec.Code
	}

	if code := call(adminToken); code != http.StatusOK {
		t.Fatalf("admin cookie rejected, status %d", code)
	}
	if code := call(userToken); code != http.StatusForbidden {
		t.Fatalf("non-admin role must get 403, got %d", code)
	}
	if code := call(""); code == http.StatusOK {
		t.Fatalf("anonymous request must not pass the admin group")
	}
	if code := call(adminToken + "x"); code == http.StatusOK {
		t.Fatalf("tampered token must not pass the admin group")
	}
}
