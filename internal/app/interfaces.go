package app

import (
	"time"

	"github.com/fadakar85/bazaar/config"
	"github.com/fadakar85/bazaar/internal/accounts"
	"github.com/fadakar85/bazaar/internal/events"
	"github.com/fadakar85/bazaar/internal/imagestore"
	"github.com/fadakar85/bazaar/internal/listing"
	"github.com/fadakar85/bazaar/internal/messaging"
	"github.com/fadakar85/bazaar/internal/payment"
	"github.com/fadakar85/bazaar/internal/viewcount"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SettingsProvider provides system settings access
type SettingsProvider interface {
	GetSettingsStringValue(category, key string) string
	GetSettingsInt64Value(category, key string) int64
	GetSettingsBoolValue(category, key string) bool
}

// ServiceProvider exposes the marketplace services to the web layer.
type ServiceProvider interface {
	Accounts() *accounts.Service
	Listing() *listing.Service
	Messaging() *messaging.Service
	Payments() *payment.Service
	Images() *imagestore.Store
	Views() *viewcount.Store
	Bus() *events.Bus
}

// AppContext combines all provider interfaces for full application context.
// Handlers should depend on specific providers or this combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	SettingsProvider
	ServiceProvider

	ConfigMgr() *ConfigManager
	StandardPromotionDuration() time.Duration
	ManualPromotionDuration() time.Duration

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
