// Package main is the entry point of the game backend.
// It loads the configuration, builds the application and runs it until
// SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/game-backend/internal/app"
	"serotonyl.ru/game-backend/internal/config"
)

func main() {
	setupLogging()

	log.Info("=== Game backend starting ===")

	// .env is optional: in docker-compose the variables come from the environment.
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}
	defer application.Close()

	log.Info("=== Game backend ready ===")

	if err := application.Run(ctx); err != nil {
		log.WithError(err).Error("Application stopped with error")
		return
	}

	log.Info("=== Game backend stopped ===")
}

// setupLogging sets the log format.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
