package app

import (
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/common"
)

const settingsCacheTTL = time.Minute

// ShopSettings is the typed view of the "shop" settings category.
type ShopSettings struct {
	OrderExpireDays       int    `mapstructure:"OrderExpireDays"`
	BehaviorRetentionDays int    `mapstructure:"BehaviorRetentionDays"`
	OprLogRetentionDays   int    `mapstructure:"OprLogRetentionDays"`
	WebhookURL            string `mapstructure:"WebhookURL"`
	ResetURL              string `mapstructure:"ResetURL"`
}

// ConfigManager caches the sys_config table and hands out typed values.
// Values are re-read at most once per minute, so admin edits take effect
// without a restart.
type ConfigManager struct {
	app      *Application
	mu       sync.RWMutex
	values   map[string]map[string]string
	loadedAt time.Time
}

func NewConfigManager(app *Application) *ConfigManager {
	return &ConfigManager{app: app}
}

func (m *ConfigManager) ensureFresh() {
	m.mu.RLock()
	fresh := time.Since(m.loadedAt) < settingsCacheTTL && m.values != nil
	m.mu.RUnlock()
	if fresh {
		return
	}

	var rows []domain.SysConfig
	if err := m.app.DB().Find(&rows).Error; err != nil {
		zap.L().Error("failed to load settings", zap.Error(err))
		return
	}

	values := make(map[string]map[string]string)
	for _, row := range rows {
		if values[row.Type] == nil {
			values[row.Type] = make(map[string]string)
		}
		values[row.Type][row.Name] = row.Value
	}

	m.mu.Lock()
	m.values = values
	m.loadedAt = time.Now()
	m.mu.Unlock()
}

func (m *ConfigManager) get(category, name string) string {
	m.ensureFresh()
	m.mu.RLock()
	defer m.mu.RUnlock()
	if cat, ok := m.values[category]; ok {
		return cat[name]
	}
	return ""
}

func (m *ConfigManager) GetString(category, name string) string {
	return m.get(category, name)
}

func (m *ConfigManager) GetInt(category, name string) int {
	return cast.ToInt(m.get(category, name))
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.get(category, name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.get(category, name))
}

// Set persists one value and refreshes the cache.
func (m *ConfigManager) Set(category, name, value string) error {
	var count int64
	m.app.DB().Model(&domain.SysConfig{}).
		Where("type = ? and name = ?", category, name).Count(&count)

	var err error
	if count == 0 {
		err = m.app.DB().Create(&domain.SysConfig{
			ID:    common.UUIDint64(),
			Type:  category,
			Name:  name,
			Value: value,
		}).Error
	} else {
		err = m.app.DB().Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Updates(map[string]interface{}{"value": value, "updated_at": time.Now()}).Error
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.loadedAt = time.Time{}
	m.mu.Unlock()
	return nil
}

// ShopSettings decodes the shop category into its typed form.
func (m *ConfigManager) ShopSettings() ShopSettings {
	m.ensureFresh()
	m.mu.RLock()
	raw := m.values["shop"]
	m.mu.RUnlock()

	var out ShopSettings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err == nil {
		_ = decoder.Decode(raw)
	}
	if out.OrderExpireDays <= 0 {
		out.OrderExpireDays = 7
	}
	if out.BehaviorRetentionDays <= 0 {
		out.BehaviorRetentionDays = 90
	}
	if out.OprLogRetentionDays <= 0 {
		out.OprLogRetentionDays = 365
	}
	return out
}
