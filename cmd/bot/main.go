// Package main is the bot entrypoint. It loads configuration, assembles the
// application and runs until SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"royalmint.dev/discord-bot/internal/app"
	"royalmint.dev/discord-bot/internal/config"
)

func main() {
	setupLogging()

	log.Info("=== starting ===")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize application")
	}
	defer application.Close()

	if err := application.Discord.Open(); err != nil {
		log.WithError(err).Fatal("failed to connect to Discord")
	}

	if err := application.Scheduler.Start(ctx); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}

	// Catch up on drawings that came due while the process was down.
	if err := application.Drawings.EndDue(ctx); err != nil {
		log.WithError(err).Error("startup drawing sweep failed")
	}

	log.Info("=== ready ===")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infof("received %s, shutting down", sig)

	cancel()
	log.Info("=== stopped ===")
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
