package store

import (
	"context"
	"fmt"

	"github.com/scienceol/sampletrack/internal/config"
	"github.com/scienceol/sampletrack/pkg/middleware/db"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/repo"
	"github.com/scienceol/sampletrack/pkg/repo/memory"
	"github.com/scienceol/sampletrack/pkg/repo/migrate"
	"github.com/scienceol/sampletrack/pkg/repo/tracking"
)

var (
	driver   config.StoreDriver
	trackRep repo.TrackingRepo
)

func dbConfig(conf *config.GlobalConfig) *db.Config {
	return &db.Config{
		Host:    conf.Database.Host,
		Port:    conf.Database.Port,
		User:    conf.Database.User,
		PW:      conf.Database.Password,
		DBName:  conf.Database.Name,
		LogConf: db.LogConf{Level: conf.Log.LogLevel},
	}
}

// Init opens the record store selected by DATABASE_DRIVER. The memory and
// sqlite stores create their tables on open.
func Init(ctx context.Context, conf *config.GlobalConfig) error {
	driver = conf.Database.Driver
	switch driver {
	case config.DriverPostgres, "":
		driver = config.DriverPostgres
		db.InitPostgres(ctx, dbConfig(conf))
		trackRep = tracking.NewTrackingImpl()
	case config.DriverSQLite:
		db.InitSQLite(ctx, conf.Database.SQLitePath, db.LogConf{Level: conf.Log.LogLevel})
		if err := migrate.Table(ctx); err != nil {
			return err
		}
		trackRep = tracking.NewTrackingImpl()
	case config.DriverMemory:
		trackRep = memory.New()
		logger.Warnf(ctx, "using in-memory store, records are lost on exit")
	default:
		return fmt.Errorf("unknown database driver %q", driver)
	}
	return nil
}

// InitMigrate opens the relational store without building repositories.
func InitMigrate(ctx context.Context, conf *config.GlobalConfig) error {
	switch conf.Database.Driver {
	case config.DriverPostgres, "":
		db.InitPostgres(ctx, dbConfig(conf))
	case config.DriverSQLite:
		db.InitSQLite(ctx, conf.Database.SQLitePath, db.LogConf{Level: conf.Log.LogLevel})
	default:
		return fmt.Errorf("driver %q has no schema to migrate", conf.Database.Driver)
	}
	driver = conf.Database.Driver
	return nil
}

func Tracking() repo.TrackingRepo {
	return trackRep
}

// SetTracking installs r as the process store, used by tests and tools that
// build their own store.
func SetTracking(r repo.TrackingRepo) {
	trackRep = r
}

// Ping checks that the store answers.
func Ping(ctx context.Context) error {
	if driver == config.DriverMemory || db.DB() == nil {
		if trackRep == nil {
			return fmt.Errorf("store not initialised")
		}
		return nil
	}
	sqlDB, err := db.DB().DBIns().DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(ctx context.Context) {
	if driver == config.DriverMemory {
		return
	}
	db.ClosePostgres(ctx)
}
