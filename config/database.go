package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDatabase opens the configured database, tunes the connection pool and
// migrates the given models.
func InitDatabase(cfg AppConfig, log *zap.Logger, modelDefs ...interface{}) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	gLogger := logger.New(
		gormWriter{log.Sugar()},
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s database: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// one connection keeps in-memory databases shared and serializes writers
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if len(modelDefs) > 0 {
		if err := db.AutoMigrate(modelDefs...); err != nil {
			return nil, fmt.Errorf("auto migration failed: %w", err)
		}
	}

	log.Info("database ready", zap.String("driver", cfg.DBDriver))
	return db, nil
}

// BuildDSN assembles the connection string for the configured driver.
// DatabaseURI wins when set.
func BuildDSN(cfg AppConfig) (string, error) {
	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURI != "" {
			return cfg.DatabaseURI, nil
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
			Host:     net.JoinHostPort(cfg.DBHost, cfg.DBPort),
			Path:     "/" + cfg.DBName,
			RawQuery: url.Values{"sslmode": []string{cfg.DBSSLMode}}.Encode(),
		}
		return u.String(), nil
	case "mysql":
		if cfg.DatabaseURI != "" {
			return cfg.DatabaseURI, nil
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			net.JoinHostPort(cfg.DBHost, cfg.DBPort),
			cfg.DBName,
		), nil
	case "sqlite":
		dsn := cfg.DatabaseURI
		if dsn == "" {
			dsn = cfg.DBName
		}
		if strings.Contains(dsn, "_foreign_keys") {
			return dsn, nil
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "_foreign_keys=on", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

func openDialector(cfg AppConfig) (gorm.Dialector, error) {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}
	switch cfg.DBDriver {
	case "postgres":
		connCfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		// Reduce planning overhead by caching prepared statements per connection.
		connCfg.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
		connCfg.StatementCacheCapacity = 256
		return postgres.New(postgres.Config{Conn: stdlib.OpenDB(*connCfg)}), nil
	case "mysql":
		return mysql.Open(dsn), nil
	default:
		return sqlite.Open(dsn), nil
	}
}

// gormWriter routes GORM's logger output through zap.
type gormWriter struct {
	*zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.Infof(format, args...)
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}
