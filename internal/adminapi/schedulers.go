package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/webserver"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/common"
)

// RunSchedulerNow is installed by the application so the trigger endpoint
// can execute a task outside its schedule.
var RunSchedulerNow func(id int64) error

var schedulerTaskTypes = map[string]bool{
	domain.TaskBehaviorRollup: true,
	domain.TaskOrderExpire:    true,
	domain.TaskDataPurge:      true,
}

type schedulerPayload struct {
	Name     string `json:"name"`
	TaskType string `json:"task_type"`
	Interval int    `json:"interval"`
	Status   string `json:"status"`
	Remark   string `json:"remark"`
}

func registerSchedulerRoutes() {
	webserver.ApiGET("/system/schedulers", ListSchedulers)
	webserver.ApiGET("/system/schedulers/:id", GetScheduler)
	webserver.ApiPOST("/system/schedulers", CreateScheduler)
	webserver.ApiPUT("/system/schedulers/:id", UpdateScheduler)
	webserver.ApiDELETE("/system/schedulers/:id", DeleteScheduler)
	webserver.ApiPOST("/system/schedulers/:id/run", TriggerScheduler)
}

// TriggerScheduler runs the task immediately
func TriggerScheduler(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid scheduler ID", nil)
	}
	if RunSchedulerNow == nil {
		return fail(c, http.StatusServiceUnavailable, "NOT_READY", "Scheduler runner not initialised", nil)
	}
	if err := RunSchedulerNow(id); err != nil {
		return fail(c, http.StatusInternalServerError, "RUN_FAILED", "Failed to run scheduler", err.Error())
	}
	writeOprLog(c, "scheduler:run", c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func ListSchedulers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	query := GetDB(c).Model(&domain.SysScheduler{})
	if name := strings.TrimSpace(c.QueryParam("name")); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		query = query.Where("status = ?", status)
	}
	if taskType := strings.TrimSpace(c.QueryParam("task_type")); taskType != "" {
		query = query.Where("task_type = ?", taskType)
	}

	var total int64
	query.Count(&total)

	var schedulers []domain.SysScheduler
	query.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&schedulers)
	return paged(c, schedulers, total, page, pageSize)
}

func GetScheduler(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid scheduler ID", nil)
	}
	var scheduler domain.SysScheduler
	if err := GetDB(c).First(&scheduler, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Scheduler not found", nil)
	}
	return ok(c, scheduler)
}

func CreateScheduler(c echo.Context) error {
	var payload schedulerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request parameters", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if !schedulerTaskTypes[payload.TaskType] {
		return fail(c, http.StatusBadRequest, "INVALID_TASK_TYPE", "Unknown task type", payload.TaskType)
	}
	if payload.Interval < 10 {
		return fail(c, http.StatusBadRequest, "INVALID_INTERVAL", "Interval must be at least 10 seconds", nil)
	}

	var count int64
	GetDB(c).Model(&domain.SysScheduler{}).Where("name = ?", payload.Name).Count(&count)
	if count > 0 {
		return fail(c, http.StatusConflict, "NAME_EXISTS", "Scheduler name already exists", nil)
	}

	if payload.Status == "" {
		payload.Status = common.ENABLED
	}

	scheduler := domain.SysScheduler{
		ID:        common.UUIDint64(),
		Name:      payload.Name,
		TaskType:  payload.TaskType,
		Interval:  payload.Interval,
		Status:    payload.Status,
		Remark:    payload.Remark,
		NextRunAt: time.Now().Add(time.Duration(payload.Interval) * time.Second),
	}
	if err := GetDB(c).Create(&scheduler).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create scheduler", err.Error())
	}
	writeOprLog(c, "scheduler:create", scheduler.Name)
	return ok(c, scheduler)
}

func UpdateScheduler(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid scheduler ID", nil)
	}
	var scheduler domain.SysScheduler
	if err := GetDB(c).First(&scheduler, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Scheduler not found", nil)
	}

	var payload schedulerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request parameters", err.Error())
	}
	if payload.TaskType != "" && !schedulerTaskTypes[payload.TaskType] {
		return fail(c, http.StatusBadRequest, "INVALID_TASK_TYPE", "Unknown task type", payload.TaskType)
	}

	if payload.Name != "" && payload.Name != scheduler.Name {
		var count int64
		GetDB(c).Model(&domain.SysScheduler{}).Where("name = ? AND id != ?", payload.Name, id).Count(&count)
		if count > 0 {
			return fail(c, http.StatusConflict, "NAME_EXISTS", "Scheduler name already exists", nil)
		}
	}

	updates := make(map[string]interface{})
	if payload.Name != "" {
		updates["name"] = payload.Name
	}
	if payload.TaskType != "" {
		updates["task_type"] = payload.TaskType
	}
	if payload.Interval >= 10 {
		updates["interval"] = payload.Interval
		updates["next_run_at"] = time.Now().Add(time.Duration(payload.Interval) * time.Second)
	}
	if payload.Status == common.ENABLED || payload.Status == common.DISABLED {
		updates["status"] = payload.Status
	}
	if payload.Remark != "" {
		updates["remark"] = payload.Remark
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := GetDB(c).Model(&scheduler).Updates(updates).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update scheduler", err.Error())
		}
	}

	GetDB(c).First(&scheduler, id)
	writeOprLog(c, "scheduler:update", scheduler.Name)
	return ok(c, scheduler)
}

func DeleteScheduler(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid scheduler ID", nil)
	}
	var scheduler domain.SysScheduler
	if err := GetDB(c).First(&scheduler, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Scheduler not found", nil)
	}
	if err := GetDB(c).Delete(&scheduler).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete scheduler", err.Error())
	}
	writeOprLog(c, "scheduler:delete", scheduler.Name)
	return c.NoContent(http.StatusNoContent)
}
