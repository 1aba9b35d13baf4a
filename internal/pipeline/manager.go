package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"slidecast/internal/config"
	"slidecast/internal/jobstore"
	"slidecast/internal/logging"
)

// Manager polls the job store and feeds queued jobs to a bounded worker pool.
type Manager struct {
	cfg    *config.Config
	store  *jobstore.Store
	runner *Runner
	logger *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewManager wires a manager over a runner.
func NewManager(cfg *config.Config, store *jobstore.Store, runner *Runner, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		store:  store,
		runner: runner,
		logger: logging.NewComponentLogger(logger, "manager"),
	}
}

// Start launches the worker pool. Jobs left running by a previous process are
// requeued first.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return nil
	}

	if n, err := m.store.ResetRunning(ctx); err != nil {
		return err
	} else if n > 0 {
		m.logger.Info("requeued interrupted jobs", logging.Int64("count", n))
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.started = true

	workers := m.cfg.Workflow.WorkerCount
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			m.workerLoop(runCtx, worker)
		}(i)
	}
	go func() {
		wg.Wait()
		close(m.done)
	}()

	m.logger.Info("pipeline manager started", logging.Int("workers", workers))
	return nil
}

// Stop signals the workers and waits for in-flight jobs to settle.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.started = false
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.logger.Info("pipeline manager stopped")
}

func (m *Manager) workerLoop(ctx context.Context, worker int) {
	poll := time.Duration(m.cfg.Workflow.QueuePollInterval) * time.Second
	if poll <= 0 {
		poll = time.Second
	}
	retry := time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second
	if retry <= 0 {
		retry = poll
	}
	logger := m.logger.With(logging.Int("worker", worker))

	for {
		if ctx.Err() != nil {
			return
		}
		job, err := m.store.NextQueued(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("poll queue", logging.Error(err))
			if !sleepCtx(ctx, retry) {
				return
			}
			continue
		}
		if job == nil {
			if !sleepCtx(ctx, poll) {
				return
			}
			continue
		}

		if err := m.runner.Run(ctx, job); err != nil {
			logger.Error("job run aborted", logging.String(logging.FieldJobID, job.ID), logging.Error(err))
			if !sleepCtx(ctx, retry) {
				return
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
