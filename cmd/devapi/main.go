package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_backoffice/internal/config"
	"github.com/Skotchmaster/restaurant_backoffice/internal/db"
	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi"
	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
	"github.com/Skotchmaster/restaurant_backoffice/internal/mykafka"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", os.Stderr).Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, os.Stdout).With("service", "devapi")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("devapi_failed", "error", err)
		os.Exit(1)
	}
}

// run returns once ctx is done or the server fails. Every deferred close
// has run by the time it returns.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("jwt secret: %w", err)
		}
		secret = []byte(hex.EncodeToString(b))
		logger.Warn("jwt_secret_generated", "reason", "JWT_SECRET is empty; tokens will not survive a restart")
	}

	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = "devapi.db"
	}
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(initCtx, dsn)
	cancel()
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer db.Close(gdb)

	producer := mykafka.NewProducer(cfg.Brokers(), cfg.KafkaTopic)
	defer producer.Close()
	if producer == nil {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	srv, err := devapi.New(devapi.Options{
		DB:        gdb,
		JWTSecret: secret,
		Logger:    logger,
		Events:    producer,
		LinkBase:  cfg.ResetLinkBase,
	})
	if err != nil {
		return fmt.Errorf("devapi init: %w", err)
	}

	if cfg.AdminUsername != "" {
		seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := srv.SeedAdmin(seedCtx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
		cancel()
		if err != nil {
			return fmt.Errorf("admin seed: %w", err)
		}
		logger.Info("admin_seeded", "username", cfg.AdminUsername)
	}

	e := srv.Echo
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	return serve(ctx, e, cfg.DevAPIAddr, logger)
}

// serve runs e until ctx is done, then shuts it down. A server that stops
// on its own is reported to the caller instead of ending the process.
func serve(ctx context.Context, e *echo.Echo, addr string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
		return err
	}
	logger.Info("server_stopped")
	return nil
}
