package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"helpdesk/internal/app/di"
	"helpdesk/internal/platform/config"
	"helpdesk/internal/platform/db"
	"helpdesk/internal/platform/logger"
	infraredis "helpdesk/internal/platform/redis"
)

const (
	shutdownTimeout = 15 * time.Second
	redisTimeout    = 5 * time.Second
)

var skipMigrate bool

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not create or update tables on startup")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := setup()
			if err != nil {
				return err
			}
			defer closeLog()

			gdb, err := db.Open(cfg.Database)
			if err != nil {
				return err
			}
			defer closeDB(gdb)

			if err := db.Migrate(gdb); err != nil {
				return err
			}
			slog.Info("migration completed", "driver", cfg.Database.Driver)
			return nil
		},
	}
}

// setup loads the config and installs the default slog logger.
func setup() (*config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, closer, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(log)
	return cfg, func() { _ = closer.Close() }, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()

	gin.SetMode(cfg.Server.Mode)
	if cfg.Server.Mode != gin.DebugMode {
		gin.DefaultWriter = io.Discard
	}

	// db
	gdb, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB(gdb)

	if !skipMigrate {
		if err := db.Migrate(gdb); err != nil {
			return err
		}
	}

	// Redis（未設定または接続失敗時はDBにセッションを保存）
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
		tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			slog.Warn("Redis unavailable. Sessions are stored in the database.", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	engine, err := di.NewApp(cfg, gdb, rdb)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "address", cfg.Server.Addr, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	slog.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("server exited gracefully")
	return nil
}

func closeDB(gdb *gorm.DB) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
}
