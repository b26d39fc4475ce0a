package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/eliotaldersonfsociety/tienlatoree/config"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/auth"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/behavior"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/catalog"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/checkout"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/notify"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/order"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/metrics"
)

type Application struct {
	appConfig     *config.AppConfig
	gormDB        *gorm.DB
	sched         *cron.Cron
	configManager *ConfigManager
	bus           EventBus.Bus

	catalogSvc  *catalog.Service
	authSvc     *auth.Service
	orderRepo   order.Repository
	orderSvc    *order.Service
	checkoutSvc *checkout.Service
	behaviorSvc *behavior.Service
	mailer      *notify.Mailer
	notifier    *notify.Notifier
}

// Ensure Application implements all interfaces
var (
	_ DBProvider            = (*Application)(nil)
	_ ConfigProvider        = (*Application)(nil)
	_ SettingsProvider      = (*Application)(nil)
	_ SchedulerProvider     = (*Application)(nil)
	_ ConfigManagerProvider = (*Application)(nil)
	_ AppContext            = (*Application)(nil)
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

func (a *Application) Bus() EventBus.Bus           { return a.bus }
func (a *Application) Catalog() *catalog.Service   { return a.catalogSvc }
func (a *Application) Auth() *auth.Service         { return a.authSvc }
func (a *Application) Orders() order.Repository    { return a.orderRepo }
func (a *Application) Checkout() *checkout.Service { return a.checkoutSvc }
func (a *Application) Behavior() *behavior.Service { return a.behaviorSvc }
func (a *Application) Mailer() *notify.Mailer      { return a.mailer }

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

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
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	// Initialize metrics with workdir convention
	err = metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	// Initialize database connection
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	// wait for database initialization to complete
	go func() {
		time.Sleep(3 * time.Second)
		a.checkAdmin()
		a.checkSettings()
		a.checkProducts()
		a.checkSchedulers()
	}()

	a.configManager = NewConfigManager(a)
	a.bus = EventBus.New()

	a.initServices()
	a.initJob()
}

// initServices wires the storefront services onto the shared database
// handle and event bus.
func (a *Application) initServices() {
	cfg := a.appConfig

	a.catalogSvc = catalog.NewService(a.gormDB)
	a.authSvc = auth.NewService(a.gormDB, cfg.Web.Secret)
	a.orderRepo = order.NewGormRepository(a.gormDB)

	var uploader order.Uploader
	if cfg.Storage.Type == "remote" && cfg.Storage.Endpoint != "" {
		uploader = &order.RemoteUploader{Endpoint: cfg.Storage.Endpoint, ApiKey: cfg.Storage.ApiKey}
	} else {
		uploader = &order.LocalUploader{Dir: cfg.GetProofDir()}
	}

	a.orderSvc = order.NewService(a.gormDB, a.orderRepo, uploader, a.bus)
	a.checkoutSvc = checkout.NewService(a.orderSvc)
	a.behaviorSvc = behavior.NewService(a.gormDB, a.bus)

	mailer, err := notify.NewMailer(cfg.Mail)
	if err != nil {
		zap.L().Error("mailer init failed", zap.Error(err))
	} else {
		a.mailer = mailer
	}

	a.notifier = notify.NewNotifier(a.mailer, a.ConfigMgr().GetString("shop", "WebhookURL"))
	if err := a.notifier.Attach(a.bus); err != nil {
		zap.L().Error("notifier attach failed", zap.Error(err))
	}
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// ConfigMgr returns the configuration manager
func (a *Application) ConfigMgr() *ConfigManager {
	return a.configManager
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

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

// Start scheduler job runner
func (a *Application) StartBackgroundJobs(ctx context.Context) {
	a.StartSchedulerService(ctx)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.mailer != nil {
		a.mailer.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}

// RunSchedulerNow triggers a scheduler execution immediately by ID
func (a *Application) RunSchedulerNow(id int64) error {
	var sched domain.SysScheduler
	if err := a.gormDB.First(&sched, id).Error; err != nil {
		return err
	}
	a.runSchedulerTask(&sched)

	now := time.Now()
	a.gormDB.Model(&domain.SysScheduler{}).Where("id = ?", sched.ID).Updates(map[string]interface{}{
		"last_run_at": now,
		"next_run_at": now.Add(time.Duration(sched.Interval) * time.Second),
	})
	return nil
}
