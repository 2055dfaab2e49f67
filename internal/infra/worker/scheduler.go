package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one maintenance task. Run returns the number of entries it removed.
type Job struct {
	Name string
	Run  func(ctx context.Context) (int, error)
}

// Scheduler runs registered jobs on the configured schedule.
type Scheduler struct {
	cron    *cron.Cron
	config  SweepConfig
	metrics *SweepMetrics
	logger  *slog.Logger

	mu   sync.Mutex
	jobs []Job
}

// NewScheduler creates a Scheduler. The config is validated here so a bad
// schedule fails at startup rather than silently never firing.
func NewScheduler(cfg SweepConfig, metrics *SweepMetrics, logger *slog.Logger) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		config:  cfg,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Register adds a job. Jobs registered after Start run from the next tick.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

// Start schedules RunOnce and starts the cron loop in its own goroutine.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.config.Schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("add sweep job: %w", err)
	}
	s.cron.Start()

	s.logger.Info("sweep scheduler started",
		slog.String("schedule", s.config.Schedule),
		slog.String("timezone", s.config.Timezone))
	return nil
}

// Stop stops the cron loop and waits for a running sweep to finish or for
// ctx to end, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce runs every registered job in order.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, job := range jobs {
		s.runJob(ctx, job)
	}
}

func (s *Scheduler) runJob(parent context.Context, job Job) {
	ctx, cancel := context.WithTimeout(parent, s.config.JobTimeout)
	defer cancel()

	start := time.Now()
	removed, err := safeRun(ctx, job)
	elapsed := time.Since(start)
	s.metrics.RecordRun(job.Name, err, elapsed.Seconds(), removed)

	if err != nil {
		s.logger.Error("sweep job failed",
			slog.String("job", job.Name),
			slog.Any("error", err))
		return
	}

	s.logger.Debug("sweep job completed",
		slog.String("job", job.Name),
		slog.Int("removed", removed),
		slog.Duration("duration", elapsed))
}

func safeRun(ctx context.Context, job Job) (removed int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job %s: %v", job.Name, r)
		}
	}()
	return job.Run(ctx)
}
