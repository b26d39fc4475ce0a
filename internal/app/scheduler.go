package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
)

// StartSchedulerService runs enabled schedulers periodically
func (a *Application) StartSchedulerService(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.runSchedulers()
			}
		}
	}()
}

// runSchedulers executes enabled schedulers that are due
func (a *Application) runSchedulers() {
	var schedulers []domain.SysScheduler
	a.gormDB.Where("status = ?", "enabled").Find(&schedulers)
	now := time.Now()
	for _, sched := range schedulers {
		if sched.NextRunAt.IsZero() || now.After(sched.NextRunAt) || now.Equal(sched.NextRunAt) {
			a.runSchedulerTask(&sched)
			a.gormDB.Model(&domain.SysScheduler{}).Where("id = ?", sched.ID).
				Update("next_run_at", now.Add(time.Duration(sched.Interval)*time.Second))
		}
	}
}

func (a *Application) runSchedulerTask(sched *domain.SysScheduler) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Errorf("scheduler task %s panic: %v", sched.TaskType, err)
			a.recordSchedulerRun(sched, "failed", fmt.Sprintf("panic: %v", err))
		}
	}()

	var err error
	var msg string
	switch sched.TaskType {
	case domain.TaskBehaviorRollup:
		err = a.runBehaviorRollup()
		msg = "behavior rollup completed"
	case domain.TaskOrderExpire:
		var expired int64
		expired, err = a.runOrderExpire()
		msg = fmt.Sprintf("cancelled %d expired orders", expired)
	case domain.TaskDataPurge:
		err = a.runDataPurge()
		msg = "retention purge completed"
	default:
		a.recordSchedulerRun(sched, "failed", "unsupported task type "+sched.TaskType)
		return
	}

	if err != nil {
		zap.L().Error("scheduler task failed",
			zap.String("task_type", sched.TaskType), zap.Error(err))
		a.recordSchedulerRun(sched, "failed", err.Error())
		return
	}
	a.recordSchedulerRun(sched, "success", msg)
}

func (a *Application) recordSchedulerRun(sched *domain.SysScheduler, result, message string) {
	a.gormDB.Model(&domain.SysScheduler{}).Where("id = ?", sched.ID).Updates(map[string]interface{}{
		"last_run_at":  time.Now(),
		"last_result":  result,
		"last_message": message,
	})
}

func (a *Application) runBehaviorRollup() error {
	if a.behaviorSvc == nil {
		return nil
	}
	return a.behaviorSvc.Rollup()
}

// runOrderExpire cancels pending orders that sat unconfirmed past the
// configured window. Confirmed and shipped orders are never touched.
func (a *Application) runOrderExpire() (int64, error) {
	days := a.ConfigMgr().ShopSettings().OrderExpireDays
	cutoff := time.Now().Add(-time.Hour * 24 * time.Duration(days))

	result := a.gormDB.Model(&domain.Order{}).
		Where("status = ? AND created_at < ?", domain.OrderStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":     domain.OrderStatusCancelled,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		zap.L().Info("expired pending orders cancelled",
			zap.Int64("count", result.RowsAffected),
			zap.Time("cutoff", cutoff))
	}
	return result.RowsAffected, nil
}

func (a *Application) runDataPurge() error {
	settings := a.ConfigMgr().ShopSettings()

	if a.behaviorSvc != nil {
		if err := a.behaviorSvc.Purge(time.Hour * 24 * time.Duration(settings.BehaviorRetentionDays)); err != nil {
			return err
		}
	}

	return a.gormDB.
		Where("opt_time < ?", time.Now().Add(-time.Hour*24*time.Duration(settings.OprLogRetentionDays))).
		Delete(&domain.SysOprLog{}).Error
}
