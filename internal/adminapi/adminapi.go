package adminapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/behavior"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/catalog"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/webserver"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/common"
)

// InitRouter registers every admin API route. Call after webserver.Init.
func InitRouter(cat *catalog.Service, behav *behavior.Service) {
	catalogSvc = cat
	behaviorSvc = behav
	registerProductRoutes()
	registerCustomerRoutes()
	registerOrderRoutes()
	registerSchedulerRoutes()
	registerExportRoutes()
	registerDashboardRoutes()
}

// GetDB returns the request scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get("db").(*gorm.DB)
}

func ok(c echo.Context, data interface{}) error {
	return webserver.Ok(c, data)
}

func fail(c echo.Context, status int, code string, msg string, detail interface{}) error {
	return webserver.Fail(c, status, code, msg, detail)
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return webserver.Paged(c, rows, total, page, pageSize)
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page, pageSize = 1, 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	} else if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// writeOprLog records an admin mutation in the audit trail. Failures are
// swallowed, the audit log never blocks the operation itself.
func writeOprLog(c echo.Context, action, remark string) {
	operator := "unknown"
	if claims := webserver.CurrentClaims(c); claims != nil {
		operator = claims.Email
	}
	GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   operator,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   remark,
		OptTime:   time.Now(),
	})
}
