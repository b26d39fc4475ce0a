package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/auth"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/common"
)

func (a *Application) checkAdmin() {
	const adminEmail = "admin@latoree.shop"
	const defaultPassword = "latoree"

	hashedPassword, err := auth.HashPassword(defaultPassword)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var admin domain.User
	err = a.gormDB.Where("email = ?", adminEmail).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.User{
			ID:       common.UUIDint64(),
			Email:    adminEmail,
			Password: hashedPassword,
			Name:     "administrator",
			Role:     "admin",
			Status:   common.ENABLED,
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("email", adminEmail))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(admin.Password) == ""
	resetRole := !strings.EqualFold(admin.Role, "admin")
	resetStatus := !strings.EqualFold(admin.Status, common.ENABLED)

	if !resetPassword && !resetRole && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = hashedPassword
	}
	if resetRole {
		updates["role"] = "admin"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.User{}).Where("id = ?", admin.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("email", adminEmail),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole),
		zap.Bool("statusEnabled", resetStatus))
}

type settingSchema struct {
	Key         string
	Default     string
	Description string
}

var settingSchemas = []settingSchema{
	{Key: "shop.OrderExpireDays", Default: "7", Description: "Days before an unconfirmed pending order is cancelled"},
	{Key: "shop.BehaviorRetentionDays", Default: "90", Description: "Days to keep raw behavior samples"},
	{Key: "shop.OprLogRetentionDays", Default: "365", Description: "Days to keep the admin audit trail"},
	{Key: "shop.WebhookURL", Default: "", Description: "Fulfillment webhook posted on every new order"},
	{Key: "shop.ResetURL", Default: "https://latoree.shop/reset-password", Description: "Base URL of the password reset page"},
}

func (a *Application) checkSettings() {
	for sortid, schema := range settingSchemas {
		parts := strings.SplitN(schema.Key, ".", 2)
		if len(parts) != 2 {
			zap.L().Warn("invalid config key format", zap.String("key", schema.Key))
			continue
		}
		category := parts[0]
		name := parts[1]

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
}

// checkSchedulers initializes default scheduled tasks
func (a *Application) checkSchedulers() {
	defaultSchedulers := []domain.SysScheduler{
		{
			Name:     "Behavior Rollup",
			TaskType: domain.TaskBehaviorRollup,
			Interval: 3600,
			Status:   common.ENABLED,
			Remark:   "Aggregates tracked browsing sessions into dashboard gauges",
		},
		{
			Name:     "Order Expiry",
			TaskType: domain.TaskOrderExpire,
			Interval: 3600,
			Status:   common.ENABLED,
			Remark:   "Cancels pending orders that were never confirmed",
		},
		{
			Name:     "Data Purge",
			TaskType: domain.TaskDataPurge,
			Interval: 86400,
			Status:   common.ENABLED,
			Remark:   "Drops behavior samples and audit entries past retention",
		},
	}

	for _, sched := range defaultSchedulers {
		var count int64
		a.gormDB.Model(&domain.SysScheduler{}).
			Where("task_type = ?", sched.TaskType).
			Count(&count)

		if count == 0 {
			sched.ID = common.UUIDint64()
			sched.NextRunAt = time.Now().Add(time.Duration(sched.Interval) * time.Second)
			if err := a.gormDB.Create(&sched).Error; err != nil {
				zap.L().Error("failed to create default scheduler",
					zap.String("name", sched.Name),
					zap.Error(err))
			} else {
				zap.L().Info("initialized default scheduler",
					zap.String("name", sched.Name),
					zap.String("task_type", sched.TaskType))
			}
		}
	}
}

// checkProducts seeds the storefront catalog on first boot.
func (a *Application) checkProducts() {
	defaultProducts := []domain.Product{
		{
			ID:          "1",
			Name:        "Camiseta Premium",
			Description: "Camiseta de algodón premium, corte clásico",
			Price:       68000,
			Image:       "/images/camiseta-premium.jpg",
			Category:    "Ropa",
			Stock:       100,
			Active:      true,
		},
		{
			ID:          "2",
			Name:        "Gorra Latoree",
			Description: "Gorra bordada edición básica",
			Price:       15000,
			Image:       "/images/gorra.jpg",
			Category:    "Accesorios",
			Stock:       200,
			Active:      true,
		},
		{
			ID:          "3",
			Name:        "Tote Bag",
			Description: "Bolso de tela estampado",
			Price:       20000,
			Image:       "/images/tote.jpg",
			Category:    "Accesorios",
			Stock:       150,
			Active:      true,
		},
	}

	for _, p := range defaultProducts {
		var count int64
		a.gormDB.Model(&domain.Product{}).Where("id = ?", p.ID).Count(&count)
		if count == 0 {
			p.CreatedAt = time.Now()
			p.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default product", zap.String("id", p.ID), zap.Error(err))
			} else {
				zap.L().Info("initialized default product", zap.String("id", p.ID), zap.String("name", p.Name))
			}
		}
	}
}
