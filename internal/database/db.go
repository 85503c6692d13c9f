package database

import (
	"fmt"
	"time"

	"badgereg/internal/model"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config carries connectivity parameters and pool sizing. MaxOpenConns is
// the hard cap on concurrent connections: once reached, acquiring a
// connection blocks the caller until another unit of work releases one.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// RetryInterval is the pause between connectivity probes while the
	// database is still coming up. MaxWait bounds the total time spent
	// retrying; zero means wait forever, for deployments where the
	// database container may start long after this process.
	RetryInterval time.Duration
	MaxWait       time.Duration
}

// DSN renders the postgres connection string
func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// Connect opens the connection pool, waits for the database to become
// reachable and runs the schema migration. Connectivity is verified with a
// throwaway ping retried on a fixed interval, so the service tolerates the
// database starting later than the process.
func Connect(cfg Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		// Translate driver unique-violation errors into
		// gorm.ErrDuplicatedKey so the repositories can map them to
		// typed sentinels.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := waitForDatabase(sqlDB.Ping, cfg, logger); err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// waitForDatabase pings until the database answers. Interval defaults to
// 10s; MaxWait > 0 turns the historically unbounded wait into a startup
// failure once elapsed.
func waitForDatabase(ping func() error, cfg Config, logger *zap.Logger) error {
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	policy := backoff.NewConstantBackOff(interval)
	attempt := 0
	notify := func(err error, next time.Duration) {
		attempt++
		logger.Warn("database not reachable, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("next_retry_in", next),
		)
	}

	var b backoff.BackOff = policy
	if cfg.MaxWait > 0 {
		b = backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(interval),
			backoff.WithMultiplier(1),
			backoff.WithMaxInterval(interval),
			backoff.WithMaxElapsedTime(cfg.MaxWait),
		)
	}

	if err := backoff.RetryNotify(ping, b, notify); err != nil {
		return fmt.Errorf("database unreachable after %s: %w", cfg.MaxWait, err)
	}
	return nil
}

// Migrate creates or updates the schema for every registry model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Company{},
		&model.Employee{},
		&model.Role{},
		&model.User{},
		&model.AccountRole{},
		&model.Permission{},
		&model.EmailRecipient{},
		&model.OAuthToken{},
		&model.AuditLog{},
	)
}
