package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/webserver"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/common"
)

func registerCustomerRoutes() {
	webserver.ApiGET("/shop/customers", listCustomers)
	webserver.ApiGET("/shop/customers/:id", getCustomer)
	webserver.ApiPUT("/shop/customers/:id", updateCustomer)
	webserver.ApiPUT("/shop/customers/:id/status", setCustomerStatus)
}

func listCustomers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	base := GetDB(c).Model(&domain.User{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		base = base.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}
	if role := strings.TrimSpace(c.QueryParam("role")); role != "" {
		base = base.Where("role = ?", role)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
	}

	var users []domain.User
	if err := base.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
	}
	return paged(c, users, total, page, pageSize)
}

func getCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	var u domain.User
	if err := GetDB(c).Where("id = ?", id).First(&u).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customer", err.Error())
	}

	// include the customer's order count for the detail view
	var orderCount int64
	GetDB(c).Model(&domain.Order{}).Where("user_id = ?", u.ID).Count(&orderCount)
	return ok(c, map[string]interface{}{"customer": u, "order_count": orderCount})
}

type customerPayload struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Department     string `json:"department"`
	WhatsappNumber string `json:"whatsapp_number"`
	Role           string `json:"role"`
}

func updateCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	var payload customerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse customer parameters", nil)
	}
	var u domain.User
	if err := GetDB(c).Where("id = ?", id).First(&u).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customer", err.Error())
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Name != "" {
		updates["name"] = payload.Name
	}
	if payload.Address != "" {
		updates["address"] = payload.Address
	}
	if payload.City != "" {
		updates["city"] = payload.City
	}
	if payload.Department != "" {
		updates["department"] = payload.Department
	}
	if payload.WhatsappNumber != "" {
		updates["whatsapp_number"] = payload.WhatsappNumber
	}
	if payload.Role == "user" || payload.Role == "admin" {
		updates["role"] = payload.Role
	}
	if err := GetDB(c).Model(&u).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update customer", err.Error())
	}
	writeOprLog(c, "customer:update", "updated customer "+u.Email)
	return ok(c, u)
}

func setCustomerStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", nil)
	}
	if payload.Status != common.ENABLED && payload.Status != common.DISABLED {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Status must be enabled or disabled", nil)
	}
	result := GetDB(c).Model(&domain.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": payload.Status, "updated_at": time.Now()})
	if result.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update status", result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found", nil)
	}
	writeOprLog(c, "customer:status", payload.Status)
	return ok(c, map[string]interface{}{"id": id, "status": payload.Status})
}
