package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/catalog"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/webserver"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/common"
)

// catalogSvc is set by InitRouter so product mutations can drop the
// storefront cache.
var catalogSvc *catalog.Service

type productPayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Stock       *int    `json:"stock"`
	Active      *bool   `json:"active"`
}

func registerProductRoutes() {
	webserver.ApiGET("/shop/products", listProducts)
	webserver.ApiGET("/shop/products/:id", getProduct)
	webserver.ApiPOST("/shop/products", createProduct)
	webserver.ApiPUT("/shop/products/:id", updateProduct)
	webserver.ApiDELETE("/shop/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	// filter by free text or exact category
	q := strings.TrimSpace(c.QueryParam("q"))
	category := strings.TrimSpace(c.QueryParam("category"))

	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"price":      "price",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sortCol, okCol := allowed[sortField]
	if !okCol {
		sortCol = "created_at"
	}

	db := GetDB(c).Model(&domain.Product{})
	if q != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if category != "" {
		db = db.Where("category = ?", category)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if payload.Price < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must not be negative", nil)
	}

	id := strings.TrimSpace(payload.ID)
	if id == "" {
		id = common.UUID()
	}
	var dup domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_PRODUCT", "Product with this ID already exists", nil)
	}

	now := time.Now()
	p := domain.Product{
		ID:          id,
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		Image:       strings.TrimSpace(payload.Image),
		Category:    payload.Category,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if payload.Stock != nil {
		p.Stock = *payload.Stock
	}
	if payload.Active != nil {
		p.Active = *payload.Active
	}
	if err := GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	invalidateCatalog()
	writeOprLog(c, "product:create", "created product "+p.ID)
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if payload.Price < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must not be negative", nil)
	}

	updates := map[string]interface{}{
		"name":        payload.Name,
		"description": payload.Description,
		"price":       payload.Price,
		"image":       strings.TrimSpace(payload.Image),
		"updated_at":  time.Now(),
	}
	if payload.Category != "" {
		updates["category"] = payload.Category
	}
	if payload.Stock != nil {
		updates["stock"] = *payload.Stock
	}
	if payload.Active != nil {
		updates["active"] = *payload.Active
	}
	if err := GetDB(c).Model(&p).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	invalidateCatalog()
	writeOprLog(c, "product:update", "updated product "+p.ID)
	return ok(c, p)
}

// deleteProduct deactivates rather than drops; order item snapshots keep
// their own copy either way.
func deleteProduct(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	result := GetDB(c).Model(&domain.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now()})
	if result.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	invalidateCatalog()
	writeOprLog(c, "product:delete", "deactivated product "+id)
	return ok(c, map[string]interface{}{"id": id})
}

func invalidateCatalog() {
	if catalogSvc != nil {
		catalogSvc.Invalidate()
	}
}
