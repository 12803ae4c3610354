package app

import (
	"sync"
	"time"

	"github.com/fadakar85/bazaar/internal/domain"
	"github.com/fadakar85/bazaar/pkg/common"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultSettingsCacheTTL = 30 * time.Second

// ConfigManager serves runtime-tunable settings from the bzr_config table
// with a short read cache. Values are keyed by (category, name).
type ConfigManager struct {
	db       *gorm.DB
	ttl      time.Duration
	mu       sync.RWMutex
	cache    map[string]map[string]string
	loadedAt time.Time
}

func NewConfigManager(db *gorm.DB, ttl time.Duration) *ConfigManager {
	return &ConfigManager{db: db, ttl: ttl}
}

func (m *ConfigManager) load() map[string]map[string]string {
	m.mu.RLock()
	if m.cache != nil && time.Since(m.loadedAt) < m.ttl {
		defer m.mu.RUnlock()
		return m.cache
	}
	m.mu.RUnlock()

	var rows []domain.SysConfig
	if err := m.db.Find(&rows).Error; err != nil {
		zap.L().Error("load settings failed", zap.Error(err))
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.cache
	}

	fresh := make(map[string]map[string]string)
	for _, row := range rows {
		if fresh[row.Type] == nil {
			fresh[row.Type] = make(map[string]string)
		}
		fresh[row.Type][row.Name] = row.Value
	}

	m.mu.Lock()
	m.cache = fresh
	m.loadedAt = time.Now()
	m.mu.Unlock()
	return fresh
}

func (m *ConfigManager) GetString(category, name string) string {
	if values := m.load(); values != nil {
		return values[category][name]
	}
	return ""
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.GetString(category, name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.GetString(category, name))
}

// SetValue updates one setting, creating the row when it does not exist
// yet, and invalidates the cache.
func (m *ConfigManager) SetValue(category, name, value string) error {
	res := m.db.Model(&domain.SysConfig{}).
		Where("type = ? AND name = ?", category, name).
		Update("value", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		err := m.db.Create(&domain.SysConfig{
			ID:    common.UUIDint64(),
			Type:  category,
			Name:  name,
			Value: value,
		}).Error
		if err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.cache = nil
	m.mu.Unlock()
	return nil
}

// DecodeCategory decodes all settings of one category into a struct via
// mapstructure (weak typing so "30" fills an int field).
func (m *ConfigManager) DecodeCategory(category string, out interface{}) error {
	values := m.load()[category]
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(values)
}

// PromotionSettings mirrors the "promotion" settings category.
type PromotionSettings struct {
	DefaultDays int `mapstructure:"DefaultDays" json:"default_days"`
	PaidDays    int `mapstructure:"PaidDays" json:"paid_days"`
	ManualDays  int `mapstructure:"ManualDays" json:"manual_days"`
}
