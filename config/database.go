package config

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"blog-cms/migration"
	"blog-cms/models"
)

// InitDB opens the configured database and brings its schema up to date.
// PostgreSQL is migrated with the embedded SQL migrations; sqlite, used for
// local development and tests, is auto-migrated from the models.
func InitDB(ctx context.Context, cfg DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}

	switch cfg.Driver {
	case DriverPostgres:
		var db *gorm.DB
		backoff := retry.WithMaxRetries(cfg.ConnectRetries, retry.NewExponential(500*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			conn, err := openPostgres(ctx, cfg.DSN, gormCfg)
			if err != nil {
				log.Warn("database not ready", "error", err)
				return retry.RetryableError(err)
			}
			db = conn
			return nil
		})
		if err != nil {
			return nil, oops.In("database").Wrapf(err, "connect to postgres")
		}
		if err := migration.Up(cfg.DSN); err != nil {
			return nil, err
		}
		log.Info("database ready", "driver", cfg.Driver)
		return db, nil

	case DriverSQLite:
		db, err := gorm.Open(sqlite.Open(sqliteDSN(cfg.DSN)), gormCfg)
		if err != nil {
			return nil, oops.In("database").Wrapf(err, "open sqlite")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, oops.In("database").Wrap(err)
		}
		// sqlite serialises writers; a single connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)

		if err := db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Category{}, &models.Post{}); err != nil {
			return nil, oops.In("database").Wrapf(err, "auto-migrate sqlite")
		}
		log.Info("database ready", "driver", cfg.Driver)
		return db, nil
	}

	return nil, oops.In("database").With("driver", cfg.Driver).Errorf("unsupported database driver %q", cfg.Driver)
}

// openPostgres opens a pool and pings it. gorm.Open may hand back a live pool
// alongside its error, so every failure closes whatever was opened.
func openPostgres(ctx context.Context, dsn string, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err == nil {
		var sqlDB *sql.DB
		if sqlDB, err = db.DB(); err == nil {
			err = sqlDB.PingContext(ctx)
		}
	}
	if err != nil {
		closeDB(db)
		return nil, err
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if db == nil || db.ConnPool == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
