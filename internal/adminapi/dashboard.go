package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/behavior"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/webserver"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/metrics"
)

var behaviorSvc *behavior.Service

func registerDashboardRoutes() {
	webserver.ApiGET("/shop/dashboard", getDashboard)
	webserver.ApiGET("/shop/dashboard/behavior", getBehaviorSummary)
	webserver.ApiGET("/shop/dashboard/system", getSystemStatus)
}

// getDashboard aggregates sales figures for the admin landing page.
func getDashboard(c echo.Context) error {
	db := GetDB(c)
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var totalOrders, pendingOrders, customers int64
	db.Model(&domain.Order{}).Count(&totalOrders)
	db.Model(&domain.Order{}).Where("status = ?", domain.OrderStatusPending).Count(&pendingOrders)
	db.Model(&domain.User{}).Where("role = ?", "user").Count(&customers)

	var totals []float64
	db.Model(&domain.Order{}).Where("status <> ?", domain.OrderStatusCancelled).
		Pluck("total", &totals)

	var revenue, meanOrder, medianOrder float64
	for _, t := range totals {
		revenue += t
	}
	if len(totals) > 0 {
		meanOrder, _ = stats.Mean(totals)
		medianOrder, _ = stats.Median(totals)
	}

	return ok(c, map[string]interface{}{
		"orders_total":    totalOrders,
		"orders_pending":  pendingOrders,
		"orders_today":    metrics.SumRange("shop_orders_created", dayStart.Unix(), now.Unix()),
		"customers":       customers,
		"revenue":         revenue,
		"mean_order":      meanOrder,
		"median_order":    medianOrder,
	})
}

func getBehaviorSummary(c echo.Context) error {
	if behaviorSvc == nil {
		return fail(c, http.StatusServiceUnavailable, "NOT_READY", "Behavior tracking not initialised", nil)
	}
	since := time.Time{}
	if days, err := strconv.Atoi(c.QueryParam("days")); err == nil && days > 0 {
		since = time.Now().AddDate(0, 0, -days)
	}
	sum, err := behaviorSvc.Summarize(since)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to summarize behavior", err.Error())
	}
	return ok(c, sum)
}

// getSystemStatus exposes the process gauges collected by the monitor job.
func getSystemStatus(c echo.Context) error {
	return ok(c, map[string]interface{}{
		"cpu_percent":  metrics.LastValue("system_cpu_percent"),
		"mem_percent":  metrics.LastValue("system_mem_percent"),
		"process_rss":  metrics.LastValue("process_rss_bytes"),
		"goroutines":   metrics.LastValue("process_goroutines"),
		"orders_1h":    metrics.SumRange("shop_orders_created", time.Now().Add(-time.Hour).Unix(), time.Now().Unix()),
		"sessions_24h": metrics.LastValue("behavior_sessions_24h"),
	})
}
