package app

import (
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/fadakar85/bazaar/config"
	"github.com/fadakar85/bazaar/internal/accounts"
	"github.com/fadakar85/bazaar/internal/domain"
	"github.com/fadakar85/bazaar/internal/events"
	"github.com/fadakar85/bazaar/internal/imagestore"
	"github.com/fadakar85/bazaar/internal/listing"
	"github.com/fadakar85/bazaar/internal/messaging"
	"github.com/fadakar85/bazaar/internal/notify"
	"github.com/fadakar85/bazaar/internal/payment"
	"github.com/fadakar85/bazaar/internal/viewcount"
	"github.com/fadakar85/bazaar/pkg/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

type Application struct {
	appConfig     *config.AppConfig
	gormDB        *gorm.DB
	sched         *cron.Cron
	configManager *ConfigManager
	bus           *events.Bus

	views     *viewcount.Store
	images    *imagestore.Store
	accounts  *accounts.Service
	listing   *listing.Service
	messaging *messaging.Service
	payments  *payment.Service
}

// Ensure Application implements all interfaces
var (
	_ DBProvider       = (*Application)(nil)
	_ ConfigProvider   = (*Application)(nil)
	_ SettingsProvider = (*Application)(nil)
	_ AppContext       = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	if err := cfg.InitDirs(); err != nil {
		return err
	}
	a.initLogger(cfg)

	if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database, cfg.System.Workdir)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.checkSuper()
	a.checkSettings()
	a.checkCategories()

	a.configManager = NewConfigManager(a.gormDB, DefaultSettingsCacheTTL)

	a.bus, err = events.New(8)
	if err != nil {
		return err
	}

	a.views, err = viewcount.Open(filepath.Join(cfg.GetDataDir(), "views.db"))
	if err != nil {
		return err
	}

	a.images, err = imagestore.New(cfg.GetUploadDir())
	if err != nil {
		return err
	}

	a.accounts = accounts.NewService(a.gormDB)
	a.listing = listing.NewService(listing.NewGormProductRepository(a.gormDB), time.Now, a.bus)
	a.messaging = messaging.NewService(a.gormDB, a.bus)

	gateway := payment.NewZibalClient(cfg.Payment.Merchant, cfg.Payment.ApiUrl)
	a.payments = payment.NewService(a.gormDB, gateway, cfg.Payment, time.Now, a.bus)
	if days := a.configManager.GetInt64("promotion", "PaidDays"); days > 0 {
		a.payments.PaidPromotionDays = int(days)
	}

	mailer := notify.NewMailer(cfg.Smtp, a.gormDB)
	if mailer.Enabled() {
		if err := a.bus.Subscribe(events.TopicMessageSent, mailer.HandleMessageSent); err != nil {
			zap.L().Warn("mail notifier subscription failed", zap.Error(err))
		}
	}

	a.initJob()
	return nil
}

func (a *Application) initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

func (a *Application) MigrateDB(track bool) (err error) {
	if track {
		return a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...)
	}
	return a.gormDB.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
		zap.S().Error(err)
	}
}

// ConfigMgr returns the runtime settings manager
func (a *Application) ConfigMgr() *ConfigManager {
	return a.configManager
}

func (a *Application) Bus() *events.Bus                { return a.bus }
func (a *Application) Views() *viewcount.Store         { return a.views }
func (a *Application) Images() *imagestore.Store       { return a.images }
func (a *Application) Accounts() *accounts.Service     { return a.accounts }
func (a *Application) Listing() *listing.Service       { return a.listing }
func (a *Application) Messaging() *messaging.Service   { return a.messaging }
func (a *Application) Payments() *payment.Service      { return a.payments }

// GetSettingsStringValue retrieves a string configuration value
func (a *Application) GetSettingsStringValue(category, key string) string {
	return a.configManager.GetString(category, key)
}

// GetSettingsInt64Value retrieves an int64 configuration value
func (a *Application) GetSettingsInt64Value(category, key string) int64 {
	return a.configManager.GetInt64(category, key)
}

// GetSettingsBoolValue retrieves a boolean configuration value
func (a *Application) GetSettingsBoolValue(category, key string) bool {
	return a.configManager.GetBool(category, key)
}

// StandardPromotionDuration is the grant used by the owner promote flow.
func (a *Application) StandardPromotionDuration() time.Duration {
	days := a.configManager.GetInt64("promotion", "DefaultDays")
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// ManualPromotionDuration is the short grant used by the admin flow.
func (a *Application) ManualPromotionDuration() time.Duration {
	days := a.configManager.GetInt64("promotion", "ManualDays")
	if days <= 0 {
		days = 3
	}
	return time.Duration(days) * 24 * time.Hour
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.bus != nil {
		a.bus.Close()
	}
	if a.views != nil {
		_ = a.views.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
