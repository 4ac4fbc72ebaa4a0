package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Handler ejecuta un job. Un error provoca reintento hasta MaxAttempts.
type Handler func(ctx context.Context, job Job) error

type RunnerConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
	RetryDelay  time.Duration
	// Timeout por job.
	JobTimeout time.Duration
	// Now permite fijar el reloj (tests). Default time.Now.
	Now func() time.Time
}

// Runner drena el Store cada Interval usando cron.
type Runner struct {
	store  Store
	logger *zap.Logger
	cfg    RunnerConfig
	cron   *cron.Cron
	now    func() time.Time

	mu       sync.RWMutex
	handlers map[string]Handler
}

// ErrInterval se devuelve cuando el intervalo es menor que la resolución de cron (1s).
var ErrInterval = errors.New("taskqueue: interval must be at least one second")

func NewRunner(store Store, logger *zap.Logger, cfg RunnerConfig) (*Runner, error) {
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Interval < time.Second {
		return nil, fmt.Errorf("%w: got %s", ErrInterval, cfg.Interval)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Minute
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	r := &Runner{
		store:    store,
		logger:   logger,
		cfg:      cfg,
		now:      cfg.Now,
		handlers: map[string]Handler{},
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
		),
	}

	schedule := fmt.Sprintf("@every %s", cfg.Interval)
	_, err := r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval+cfg.JobTimeout)
		defer cancel()
		if _, err := r.Drain(ctx); err != nil {
			r.logger.Error("task queue drain failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("taskqueue: schedule %q: %w", schedule, err)
	}

	return r, nil
}

// Handle registra el handler para un kind.
func (r *Runner) Handle(kind string, h Handler) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = h
}

func (r *Runner) Start() {
	r.cron.Start()
	r.logger.Info("task queue runner started", zap.Duration("interval", r.cfg.Interval))
}

func (r *Runner) Stop(ctx context.Context) {
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("task queue runner stopped")
}

// Drain ejecuta sincrónicamente los jobs vencidos. Devuelve cuántos corrió.
// Si PopDue falla a mitad de camino, los jobs que alcanzó a reclamar se
// ejecutan igual y el error se devuelve al final.
func (r *Runner) Drain(ctx context.Context) (int, error) {
	jobs, popErr := r.store.PopDue(ctx, r.now(), r.cfg.BatchSize)

	for _, job := range jobs {
		err := r.run(ctx, job)
		if err == nil {
			continue
		}

		log := r.logger.With(
			zap.String("job_id", job.ID),
			zap.String("kind", job.Kind),
			zap.Int("attempts", job.Attempts+1),
		)

		job.Attempts++
		if job.Attempts >= r.cfg.MaxAttempts {
			log.Error("dropping job (max attempts reached)", zap.Error(err))
			continue
		}

		job.RunAt = r.now().Add(r.cfg.RetryDelay)
		if addErr := r.store.Add(ctx, job); addErr != nil {
			log.Error("failed to requeue job", zap.Error(addErr))
			continue
		}
		log.Warn("job failed, requeued", zap.Error(err), zap.Time("run_at", job.RunAt))
	}

	return len(jobs), popErr
}

func (r *Runner) run(ctx context.Context, job Job) (err error) {
	r.mu.RLock()
	h, ok := r.handlers[job.Kind]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("taskqueue: no handler for kind %q", job.Kind)
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("taskqueue: handler panic: %v", rec)
		}
	}()

	jobCtx, cancel := context.WithTimeout(ctx, r.cfg.JobTimeout)
	defer cancel()
	return h(jobCtx, job)
}
