package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"projecthub/config"
	"projecthub/middleware"
	"projecthub/routes"
	"projecthub/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	utils.SetupLogger(cfg.IsProduction())

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			logrus.WithError(err).Warn("Sentry initialization failed")
		}
	}

	// Initialize database connection
	db, err := config.ConnectDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	storage := middleware.NewRateLimitStorage(cfg.Redis)
	app := routes.NewApp(cfg, db, storage)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logrus.Infof("Server starting on port %s", cfg.ServerPort)
		serverErr <- app.Listen(":" + cfg.ServerPort)
	}()

	exitCode := 0
	select {
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("Shutting down server")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
			exitCode = 1
		}
	case err := <-serverErr:
		if err != nil {
			logrus.WithError(err).Error("Failed to start server")
			exitCode = 1
		}
	}

	if storage != nil {
		if err := storage.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close rate limit storage")
		}
	}
	if err := config.CloseDB(db); err != nil {
		logrus.WithError(err).Error("Failed to close database")
		exitCode = 1
	}
	logrus.Info("Server stopped")
	sentry.Flush(2 * time.Second)
	os.Exit(exitCode)
}
