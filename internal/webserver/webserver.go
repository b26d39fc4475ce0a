package webserver

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eliotaldersonfsociety/tienlatoree/config"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/auth"
)

// WebServer hosts both API surfaces: the public storefront API under /api
// and the JWT-guarded admin API under /api/admin. The cart cookie session
// and the auth cookie ride on the public surface; admin requests carry the
// same auth cookie but must resolve to an admin role.
type WebServer struct {
	root  *echo.Echo
	pub   *echo.Group
	admin *echo.Group
	cfg   *config.AppConfig
}

var server *WebServer

// Init builds the global server. The db handle is stashed into every
// request context so handlers reach it through GetDB.
func Init(cfg *config.AppConfig, db *gorm.DB) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Web.AllowOrigins,
		AllowCredentials: true,
	}))
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(cfg.Web.SessionKey))))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("db", db)
			return next(c)
		}
	})
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}
		if code >= http.StatusInternalServerError {
			zap.L().Error("http error", zap.String("path", c.Path()), zap.Error(err))
		}
		_ = c.JSON(code, map[string]interface{}{
			"code":    code,
			"message": http.StatusText(code),
		})
	}

	e.Static("/payment-proofs", cfg.GetProofDir())

	jwtConfig := echojwt.Config{
		SigningKey:  []byte(cfg.Web.Secret),
		TokenLookup: "cookie:" + auth.CookieName + ",header:Authorization:Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}

	admin := e.Group("/api/admin")
	admin.Use(echojwt.WithConfig(jwtConfig))
	admin.Use(requireAdmin)

	server = &WebServer{
		root:  e,
		pub:   e.Group("/api"),
		admin: admin,
		cfg:   cfg,
	}
	return server
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := CurrentClaims(c)
		if claims == nil || claims.Role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		return next(c)
	}
}

// CurrentClaims returns the verified token claims, nil on an anonymous
// request.
func CurrentClaims(c echo.Context) *auth.Claims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || token == nil {
		return nil
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// Listen serves until the listener fails.
func Listen() error {
	addr := fmt.Sprintf("%s:%d", server.cfg.Web.Host, server.cfg.Web.Port)
	zap.L().Info("starting web server", zap.String("listen", addr))
	return server.root.Start(addr)
}

// Echo exposes the root instance for tests.
func Echo() *echo.Echo {
	return server.root
}

// Admin API routes, JWT-guarded.

func ApiGET(path string, h echo.HandlerFunc)  { server.admin.GET(path, h) }
func ApiPOST(path string, h echo.HandlerFunc) { server.admin.POST(path, h) }
func ApiPUT(path string, h echo.HandlerFunc)  { server.admin.PUT(path, h) }

func ApiDELETE(path string, h echo.HandlerFunc) { server.admin.DELETE(path, h) }

// Public storefront routes.

func PubGET(path string, h echo.HandlerFunc)  { server.pub.GET(path, h) }
func PubPOST(path string, h echo.HandlerFunc) { server.pub.POST(path, h) }
func PubPUT(path string, h echo.HandlerFunc)  { server.pub.PUT(path, h) }

func PubDELETE(path string, h echo.HandlerFunc) { server.pub.DELETE(path, h) }
