package db

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authadapters "helpdesk/internal/feature/auth/adapters"
	authentity "helpdesk/internal/feature/auth/domain/entity"
	ticketentity "helpdesk/internal/feature/ticket/domain/entity"
	"helpdesk/internal/platform/config"
)

// retryInterval は接続リトライの間隔です。
const retryInterval = 3 * time.Second

// Opener opens a gorm connection for a DSN. Swapped out in tests.
type Opener func(dsn string) (*gorm.DB, error)

// GormConfig is shared by the server and by adapter tests so that driver
// errors are translated (gorm.ErrDuplicatedKey etc.) the same way everywhere.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// BuildDSN returns the driver DSN. SQLite DSNs get foreign key enforcement
// switched on so that ON DELETE CASCADE on messages is honored.
func BuildDSN(cfg config.DatabaseConfig) string {
	if cfg.Driver != "sqlite" {
		return cfg.DSN
	}
	if strings.Contains(cfg.DSN, "_foreign_keys") || strings.Contains(cfg.DSN, "_fk=") {
		return cfg.DSN
	}
	sep := "?"
	if strings.Contains(cfg.DSN, "?") {
		sep = "&"
	}
	return cfg.DSN + sep + "_foreign_keys=on"
}

// OpenerFor returns the Opener matching the configured driver.
func OpenerFor(driver string) (Opener, error) {
	switch driver {
	case "sqlite":
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), GormConfig())
		}, nil
	case "postgres":
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), GormConfig())
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// ConnectWithRetry keeps calling open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying...", "error", err)
		time.Sleep(retryInterval)
	}
}

// Open connects to the configured database.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	open, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), cfg.ConnectTimeout, open)
	if err != nil {
		return nil, err
	}
	slog.Info("database connected", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates or updates the users, sessions, chamados and mensagens tables.
func Migrate(db *gorm.DB) error {
	// マイグレーション（User, Session, Ticket, Message）
	if err := db.AutoMigrate(
		&authentity.User{},
		&authadapters.SessionModel{},
		&ticketentity.Ticket{},
		&ticketentity.Message{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
