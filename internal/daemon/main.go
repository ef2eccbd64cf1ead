// Package daemon wires database, services and web server into the running application.
package daemon

import (
	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/acctmgr/acctmgr/internal/activation"
	"github.com/acctmgr/acctmgr/internal/auth"
	"github.com/acctmgr/acctmgr/internal/config"
	"github.com/acctmgr/acctmgr/internal/db/controller/activationcode"
	"github.com/acctmgr/acctmgr/internal/db/controller/override"
	"github.com/acctmgr/acctmgr/internal/db/dsn"
	"github.com/acctmgr/acctmgr/internal/db/models"
	"github.com/acctmgr/acctmgr/internal/logger/adapter/stdlogger"
	"github.com/acctmgr/acctmgr/internal/scheduler"
	"github.com/acctmgr/acctmgr/internal/settings"
	"github.com/acctmgr/acctmgr/internal/web"
	"github.com/acctmgr/acctmgr/internal/web/handler"
	"github.com/acctmgr/acctmgr/internal/web/session"
)

const sessionTable = "sessions"

// ErrConfigNil is returned when the daemon is built without configuration.
var ErrConfigNil = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	scheduler  *scheduler.Scheduler
	webService *web.Service
}

// Start runs the scheduler and serves http until a shutdown signal arrives.
func (d *Daemon) Start() error {
	if err := d.scheduler.Start(d.cfg.Activation.StatsSchedule); err != nil {
		return errors.Wrap(err, "failed to start scheduler")
	}
	defer d.scheduler.Stop()

	errCh := make(chan error, 1)

	go func() {
		errCh <- d.webService.Start()
	}()

	go d.webService.WaitShutdown()

	return <-errCh
}

// New connects and migrates the database, seeds it and builds the web service.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err = seed(cfg, db); err != nil {
		return nil, err
	}

	session.Init(sessionStorage(cfg))

	deps, err := NewDeps(cfg, db)
	if err != nil {
		return nil, err
	}

	webService, err := web.New(deps)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:        cfg,
		scheduler:  scheduler.New(activationcode.New(db)),
		webService: webService,
	}, nil
}

// OpenDB connects to the configured database and migrates the schema.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := dsn.Open(cfg, &gorm.Config{Logger: stdlogger.NewGorm(cfg.DevMode)})
	if err != nil {
		return nil, err
	}

	if err = Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the tables of all models.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.SettingOverride{},
		&models.ActivationCode{},
	)

	return errors.Wrap(err, "failed to migrate database")
}

// NewDeps builds the domain services on top of db.
func NewDeps(cfg *config.Config, db *gorm.DB) (*handler.Deps, error) {
	store, err := override.New(db)
	if err != nil {
		return nil, err
	}

	codes, err := NewActivationService(cfg, db)
	if err != nil {
		return nil, err
	}

	return &handler.Deps{
		Cfg:       cfg,
		DB:        db,
		Settings:  settings.NewEngine(store),
		Overrides: store,
		Codes:     codes,
		Users:     auth.NewLocalProvider(db, codes),
	}, nil
}

// NewActivationService returns the activation code service backed by db.
func NewActivationService(cfg *config.Config, db *gorm.DB) (*activation.Service, error) {
	return activation.NewService(activationcode.New(db), activation.Config{
		CodeLength:   cfg.Activation.CodeLength,
		RedeemWindow: cfg.Activation.RedeemWindow,
	})
}

// sessionStorage keeps sessions next to the data. sqlite keeps them in memory.
func sessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.CreatePostgres(cfg),
			Table:         sessionTable,
		})
	default:
		log.Warn().Str("engine", cfg.DB.GormEngine).Msg("sessions are kept in memory and lost on restart")

		return nil
	}
}
