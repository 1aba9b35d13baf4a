package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"slidecast/internal/config"
	"slidecast/internal/deps"
	"slidecast/internal/jobstore"
	"slidecast/internal/logging"
	"slidecast/internal/pipeline"
	"slidecast/internal/storage"
)

// Daemon coordinates the pipeline manager and the HTTP API and enforces
// single-instance execution through a lock file.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *jobstore.Store
	artifacts *storage.Store
	manager   *pipeline.Manager
	api       *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *jobstore.Store, artifacts *storage.Store, manager *pipeline.Manager, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || artifacts == nil || manager == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, artifacts, manager, and logger")
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "slidecastd.lock")
	d := &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     store,
		artifacts: artifacts,
		manager:   manager,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, launches the worker pool, and brings up
// the API listener.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another slidecast daemon instance is already running")
	}

	// Missing tools fail individual jobs, not startup; the operator may be
	// installing them while the daemon idles.
	for _, status := range deps.Missing(deps.Check(deps.FromConfig(d.cfg))) {
		d.logger.Warn("external tool unavailable",
			logging.String("tool", status.Name),
			logging.String("detail", status.Detail))
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.manager.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start pipeline manager: %w", err)
	}
	if err := d.api.start(runCtx); err != nil {
		d.manager.Stop()
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("slidecast daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API, drains the worker pool, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.api.stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.manager.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("slidecast daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon has started and not yet stopped.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// APIAddr returns the bound API address, empty before Start.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// Submit validates and enqueues a processing request.
func (d *Daemon) Submit(ctx context.Context, req jobstore.Request) (*jobstore.Job, error) {
	if req.URL == "" {
		return nil, errors.New("url is required")
	}
	job, err := d.store.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	d.logger.Info("job queued",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("url", req.URL))
	return job, nil
}

// DeleteJob removes a terminal job and its artifacts.
func (d *Daemon) DeleteJob(ctx context.Context, id string) error {
	if err := d.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := d.artifacts.CleanupJob(id); err != nil {
		d.logger.Warn("artifact cleanup failed",
			logging.String(logging.FieldJobID, id),
			logging.Error(err))
	}
	return nil
}
