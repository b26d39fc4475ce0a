package storeapi

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/catalog"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	products := []domain.Product{
		{ID: "1", Name: "Camiseta Premium", Price: 68000, Active: true},
		{ID: "2", Name: "Gorra", Price: 15000, Active: true},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	h := &Handler{catalog: catalog.NewService(db)}

	e := echo.New()
	e.Use(session.Middleware(sessions.NewCookieStore([]byte("test-session-key"))))
	e.GET("/api/cart", h.getCart)
	e.POST("/api/cart/items", h.addCartItem)
	e.PUT("/api/cart/items/quantity", h.updateCartQuantity)
	e.DELETE("/api/cart/items", h.removeCartItem)
	e.DELETE("/api/cart", h.clearCart)
	return e
}

// browser keeps the session cookie between requests, one per visitor.
type browser struct {
	e       *echo.Echo
	cookies []*http.Cookie
}

func (b *browser) do(t *testing.T, method, path string, form url.Values) (*httptest.ResponseRecorder, cartView) {
	t.Helper()
	var body string
	if form != nil {
		body = form.Encode()
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	b.e.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		b.cookies = set
	}

	var envelope struct {
		Code interface{} `json:"code"`
		Data cartView    `json:"data"`
	}
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec, envelope.Data
}

func TestCartRoundTrip(t *testing.T) {
	e := newTestRouter(t)
	b := &browser{e: e}

	rec, view := b.do(t, http.MethodPost, "/api/cart/items", url.Values{
		"product_id": {"1"}, "quantity": {"2"}, "color": {"negro"}, "size": {"M"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}
	if view.Count != 2 {
		t.Fatalf("count = %d, want 2", view.Count)
	}
	// two units at the 5% tier
	if math.Abs(view.Total-129200) > 0.01 {
		t.Fatalf("total = %v, want 129200", view.Total)
	}

	// the cart survives a new request on the same session
	rec, view = b.do(t, http.MethodGet, "/api/cart", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 2 {
		t.Fatalf("cart not persisted across requests: %+v", view.Items)
	}

	rec, view = b.do(t, http.MethodDelete, "/api/cart", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}
	if view.Count != 0 {
		t.Fatalf("count after clear = %d, want 0", view.Count)
	}
}

func TestCartVariantIdentity(t *testing.T) {
	e := newTestRouter(t)
	b := &browser{e: e}

	b.do(t, http.MethodPost, "/api/cart/items", url.Values{
		"product_id": {"1"}, "quantity": {"1"}, "color": {"negro"}, "size": {"M"},
	})
	_, view := b.do(t, http.MethodPost, "/api/cart/items", url.Values{
		"product_id": {"1"}, "quantity": {"1"}, "color": {"blanco"}, "size": {"M"},
	})
	if len(view.Items) != 2 {
		t.Fatalf("variants merged, items = %d, want 2", len(view.Items))
	}

	// quantity update targets only the matching variant
	_, view = b.do(t, http.MethodPut, "/api/cart/items/quantity", url.Values{
		"product_id": {"1"}, "quantity": {"3"}, "color": {"negro"}, "size": {"M"},
	})
	for _, it := range view.Items {
		want := 1
		if it.Color == "negro" {
			want = 3
		}
		if it.Quantity != want {
			t.Fatalf("variant %s quantity = %d, want %d", it.Color, it.Quantity, want)
		}
	}

	// removal by the full variant key leaves the sibling in place
	_, view = b.do(t, http.MethodDelete, "/api/cart/items", url.Values{
		"product_id": {"1"}, "color": {"negro"}, "size": {"M"},
	})
	if len(view.Items) != 1 || view.Items[0].Color != "blanco" {
		t.Fatalf("wrong line removed: %+v", view.Items)
	}
}

func TestAddUnknownProduct(t *testing.T) {
	e := newTestRouter(t)
	b := &browser{e: e}

	rec, _ := b.do(t, http.MethodPost, "/api/cart/items", url.Values{
		"product_id": {"missing"}, "quantity": {"1"},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
