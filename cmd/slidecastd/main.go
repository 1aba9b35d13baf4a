// Command slidecastd runs the slidecast daemon: it processes queued jobs
// and serves the HTTP API.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"slidecast/internal/config"
	"slidecast/internal/daemon"
	"slidecast/internal/jobstore"
	"slidecast/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, closeLogs, err := logging.New(logging.Options{
		Format: cfg.Logging.Format,
		Level:  cfg.Logging.Level,
		LogDir: cfg.Paths.LogDir,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer closeLogs()

	store, err := jobstore.Open(cfg.DatabasePath())
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return
	}

	d, err := daemon.FromConfig(cfg, store, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("slidecastd shutting down")
	d.Stop()
}
