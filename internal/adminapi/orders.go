package adminapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/order"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/webserver"
)

func registerOrderRoutes() {
	webserver.ApiGET("/shop/orders", listOrders)
	webserver.ApiGET("/shop/orders/:id", getOrder)
	webserver.ApiPUT("/shop/orders/:id/status", updateOrderStatus)
	webserver.ApiGET("/shop/oprlogs", listOprLogs)
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	base := GetDB(c).Model(&domain.Order{})
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		if !order.ValidStatus(status) {
			return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown order status", status)
		}
		base = base.Where("status = ?", status)
	}
	if email := strings.TrimSpace(c.QueryParam("email")); email != "" {
		base = base.Where("customer_email = ?", strings.ToLower(email))
	}
	// date filters accept any common format
	if from := strings.TrimSpace(c.QueryParam("from")); from != "" {
		t, err := dateparse.ParseLocal(from)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_DATE", "Unable to parse from date", from)
		}
		base = base.Where("created_at >= ?", t)
	}
	if to := strings.TrimSpace(c.QueryParam("to")); to != "" {
		t, err := dateparse.ParseLocal(to)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_DATE", "Unable to parse to date", to)
		}
		base = base.Where("created_at <= ?", t)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	var orders []domain.Order
	if err := base.Preload("Items").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, orders, total, page, pageSize)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var o domain.Order
	if err := GetDB(c).Preload("Items").Where("id = ?", id).First(&o).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order", err.Error())
	}
	return ok(c, o)
}

func updateOrderStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", nil)
	}
	if !order.ValidStatus(payload.Status) {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown order status", payload.Status)
	}

	var o domain.Order
	if err := GetDB(c).Where("id = ?", id).First(&o).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order", err.Error())
	}
	if !order.CanTransition(o.Status, payload.Status) {
		return fail(c, http.StatusConflict, "INVALID_TRANSITION",
			fmt.Sprintf("Cannot move order from %s to %s", o.Status, payload.Status), nil)
	}

	if err := GetDB(c).Model(&o).Updates(map[string]interface{}{"status": payload.Status, "updated_at": time.Now()}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update order", err.Error())
	}
	writeOprLog(c, "order:status", fmt.Sprintf("order %d: %s -> %s", o.ID, o.Status, payload.Status))
	o.Status = payload.Status
	return ok(c, o)
}

func listOprLogs(c echo.Context) error {
	page, pageSize := parsePagination(c)
	base := GetDB(c).Model(&domain.SysOprLog{})
	if action := strings.TrimSpace(c.QueryParam("action")); action != "" {
		base = base.Where("opt_action = ?", action)
	}
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query logs", err.Error())
	}
	var logs []domain.SysOprLog
	if err := base.Order("opt_time DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&logs).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query logs", err.Error())
	}
	return paged(c, logs, total, page, pageSize)
}
