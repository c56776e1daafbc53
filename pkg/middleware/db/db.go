package db

import (
	"context"
	"fmt"
	"time"

	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	_ "modernc.org/sqlite" // pure go sqlite driver registered as "sqlite"
)

type LogConf struct {
	Level string
	Slow  time.Duration
}

type Config struct {
	Host    string
	Port    int
	User    string
	PW      string
	DBName  string
	LogConf LogConf
}

type txKey struct{}

// Datastore wraps the gorm handle. A transaction opened by ExecTx travels in
// the context so repositories pick it up through DBWithContext.
type Datastore struct {
	db *gorm.DB
}

var datastore *Datastore

func NewDatastore(db *gorm.DB) *Datastore {
	return &Datastore{db: db}
}

func DB() *Datastore {
	return datastore
}

func (d *Datastore) DBIns() *gorm.DB {
	return d.db
}

func (d *Datastore) DBWithContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return d.db.WithContext(ctx)
}

// ExecTx runs fn inside one transaction, committing when fn returns nil and
// rolling back otherwise. Nested calls join the outer transaction.
func (d *Datastore) ExecTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func gormConfig(conf LogConf) *gorm.Config {
	return &gorm.Config{
		Logger:         newGormLogger(conf),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func OpenPostgres(conf *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		conf.Host, conf.Port, conf.User, conf.PW, conf.DBName)
	d, err := gorm.Open(postgres.Open(dsn), gormConfig(conf.LogConf))
	if err != nil {
		return nil, err
	}
	if err := d.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return d, nil
}

// OpenSQLite opens a single-connection sqlite database. path may be a file
// name or ":memory:".
func OpenSQLite(path string, conf LogConf) (*gorm.DB, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	d, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), gormConfig(conf))
	if err != nil {
		return nil, err
	}
	if err := d.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers, and ":memory:" is private to one connection
	sqlDB.SetMaxOpenConns(1)
	return d, nil
}

func InitPostgres(ctx context.Context, conf *Config) {
	d, err := OpenPostgres(conf)
	if err != nil {
		logger.Fatalf(ctx, "init postgres fail err: %+v", err)
	}
	datastore = NewDatastore(d)
	logger.Infof(ctx, "postgres connected host: %s db: %s", conf.Host, conf.DBName)
}

func InitSQLite(ctx context.Context, path string, conf LogConf) {
	d, err := OpenSQLite(path, conf)
	if err != nil {
		logger.Fatalf(ctx, "init sqlite fail err: %+v", err)
	}
	datastore = NewDatastore(d)
	logger.Infof(ctx, "sqlite opened path: %s", path)
}

func ClosePostgres(ctx context.Context) {
	if datastore == nil {
		return
	}
	sqlDB, err := datastore.db.DB()
	if err != nil {
		logger.Errorf(ctx, "get sql db err: %+v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Errorf(ctx, "close db err: %+v", err)
	}
}
