package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

// entry pairs a job with its per-job mutex. The mutex prevents parallel
// runs of the same job (TryLock — atomic, no race between check and acquire).
type entry struct {
	job  Job
	lock *sync.Mutex
}

// Scheduler manages periodic job execution using cron expressions.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]*entry
	order   []string
	logger  *slog.Logger
	cancel  context.CancelFunc
	runs    *prometheus.CounterVec
}

// NewScheduler creates a scheduler. Jobs must be registered before Start().
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// RegisterJob adds a job to the scheduler. Must be called before Start().
// Returns an error if a job with the same name is already registered.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}
	s.entries[name] = &entry{job: j, lock: &sync.Mutex{}}
	s.order = append(s.order, name)
	return nil
}

// SetMetrics attaches a run counter labeled by job name and outcome.
// Must be called before Start().
func (s *Scheduler) SetMetrics(runs *prometheus.CounterVec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = runs
}

// Names returns the registered job names in sorted order, for the status
// surface.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, len(s.order))
	copy(names, s.order)
	sort.Strings(names)
	return names
}

// Start initializes the cron scheduler and begins executing registered jobs.
// Returns an error if any job has an invalid schedule expression.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s.cron = cron.New(cron.WithParser(parser))

	for _, name := range s.order {
		e := s.entries[name]
		if _, err := s.cron.AddFunc(e.job.Schedule(), s.tick(ctx, e)); err != nil {
			cancel()
			return fmt.Errorf("cron: invalid schedule for job %q: %w", name, err)
		}
	}

	s.cron.Start()
	s.logger.Info("cron: scheduler started", "jobs", len(s.order))
	return nil
}

// tick wraps one job run. When the previous tick of the same job is still
// running, the new tick is skipped rather than queued.
func (s *Scheduler) tick(ctx context.Context, e *entry) func() {
	return func() {
		if !e.lock.TryLock() {
			s.logger.Warn("cron: job still running, skipping tick", "job", e.job.Name())
			s.count(e.job.Name(), "skipped")
			return
		}
		defer e.lock.Unlock()

		s.logger.Debug("cron: job started", "job", e.job.Name())
		if err := e.job.Run(ctx); err != nil {
			s.logger.Error("cron: job failed", "job", e.job.Name(), "error", err)
			s.count(e.job.Name(), "error")
			return
		}
		s.logger.Debug("cron: job completed", "job", e.job.Name())
		s.count(e.job.Name(), "ok")
	}
}

func (s *Scheduler) count(job, outcome string) {
	if s.runs != nil {
		s.runs.WithLabelValues(job, outcome).Inc()
	}
}

// Stop gracefully shuts down the scheduler, waiting for in-flight jobs.
func (s *Scheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		// Wait for running jobs to complete.
		<-s.cron.Stop().Done()
		s.logger.Info("cron: scheduler stopped")
	}
	return nil
}
