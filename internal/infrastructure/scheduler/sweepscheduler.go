// Package scheduler runs the delinquency sweep on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/application/billing/usecases"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/goroutine"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

const defaultSweepTimeout = 30 * time.Minute

// SweepJob is the delinquency sweep as seen by the scheduler.
type SweepJob interface {
	Execute(ctx context.Context, cmd usecases.SweepCommand) (*dto.SweepResultDTO, error)
}

// SweepScheduler runs a global sweep each time the cron expression fires.
// Overlapping runs are skipped rather than queued.
type SweepScheduler struct {
	cron     *cron.Cron
	entry    cron.EntryID
	job      SweepJob
	schedule string
	timeout  time.Duration
	logger   logger.Interface

	mu       sync.Mutex
	ctx      context.Context
	stopOnce sync.Once
}

type Option func(*SweepScheduler)

// WithTimeout bounds a single sweep run.
func WithTimeout(d time.Duration) Option {
	return func(s *SweepScheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSweepScheduler validates schedule (standard five-field cron or a
// descriptor such as @daily) in the business timezone.
func NewSweepScheduler(job SweepJob, schedule string, log logger.Interface, opts ...Option) (*SweepScheduler, error) {
	s := &SweepScheduler{
		job:      job,
		schedule: schedule,
		timeout:  defaultSweepTimeout,
		logger:   log,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	cronLog := cronLogger{log: log}
	s.cron = cron.New(
		cron.WithLocation(biztime.Location()),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.SkipIfStillRunning(cronLog)),
	)
	entry, err := s.cron.AddFunc(schedule, s.tick)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	s.entry = entry
	return s, nil
}

// Start begins firing on schedule. Runs stop being started once ctx is done.
func (s *SweepScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Infow("starting delinquency sweep scheduler",
		"schedule", s.schedule,
		"timezone", biztime.Location().String(),
		"next_run", s.Next(),
	)

	goroutine.SafeGo(s.logger, "sweep-scheduler-watch", func() {
		<-ctx.Done()
		s.Stop()
	})
}

// Stop waits for a running sweep to finish. Safe to call more than once.
func (s *SweepScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping delinquency sweep scheduler")
		<-s.cron.Stop().Done()
		s.logger.Infow("delinquency sweep scheduler stopped")
	})
}

// Next is the time of the next scheduled run; zero until started.
func (s *SweepScheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// RunOnce performs one global sweep for today.
func (s *SweepScheduler) RunOnce(ctx context.Context) (*dto.SweepResultDTO, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	result, err := s.job.Execute(ctx, usecases.SweepCommand{})
	if err != nil {
		s.logger.Errorw("scheduled delinquency sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return result, err
	}

	if result.Affected() > 0 {
		s.logger.Infow("scheduled delinquency sweep processed",
			"count", result.Affected(),
			"notified", result.Notified,
			"duration", time.Since(startTime),
		)
	} else {
		s.logger.Debugw("no delinquent subscribers to process",
			"duration", time.Since(startTime),
		)
	}
	return result, nil
}

func (s *SweepScheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	goroutine.Run(s.logger, "delinquency-sweep", func() {
		_, _ = s.RunOnce(ctx)
	})
}

// cronLogger routes cron's own messages into the application logger.
type cronLogger struct {
	log logger.Interface
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
