package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kapgel/cmd"
	"kapgel/internal/adapters/out/postgres/courierrepo"
	"kapgel/internal/adapters/out/postgres/orderrepo"
	"kapgel/internal/adapters/out/postgres/pingrepo"
	"kapgel/internal/pkg/logging"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Absent .env is fine; the real environment may carry everything.
	_ = godotenv.Load()

	config, err := cmd.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{Debug: config.LogDebug, File: config.LogFile})
	defer func() {
		_ = logger.Sync()
	}()

	if err = run(config, logger); err != nil {
		logger.Fatal("engine stopped", zap.Error(err))
	}
}

func run(config cmd.Config, logger *zap.Logger) error {
	gormDB, err := gorm.Open(postgresdriver.Open(config.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&courierrepo.CourierDTO{},
		&pingrepo.PingDTO{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	root := cmd.NewCompositionRoot(config, gormDB, logger)
	defer root.Close()

	jobManager := root.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return fmt.Errorf("start jobs: %w", err)
	}
	defer jobManager.StopAll()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	root.CreateServer().RegisterRoutes(e, []byte(config.JWTSecret))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start("0.0.0.0:" + config.HTTPPort)
	}()
	logger.Info("engine started", zap.String("port", config.HTTPPort))

	select {
	case err = <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
