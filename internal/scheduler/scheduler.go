package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sevadesk/internal/clock"
	"github.com/smallbiznis/sevadesk/internal/lock"
	obsmetrics "github.com/smallbiznis/sevadesk/internal/observability/metrics"
	reportdomain "github.com/smallbiznis/sevadesk/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const jobMonthlyReport = "monthly_report"

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Reports reportdomain.Service
	Locker  lock.Locker                  `optional:"true"`
	Metrics *obsmetrics.SchedulerMetrics `optional:"true"`
	Config  Config                       `optional:"true"`
}

type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	genID   *snowflake.Node
	clock   clock.Clock
	reports reportdomain.Service
	locker  lock.Locker
	metrics *obsmetrics.SchedulerMetrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.Reports == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     p.Config.withDefaults(),
		genID:   p.GenID,
		clock:   p.Clock,
		reports: p.Reports,
		locker:  p.Locker,
		metrics: p.Metrics,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run, owner := s.ensureJobRun(ctx, name)
	if owner {
		s.logJobStart(ctx, run)
	}
	log := s.logger(ctx).With(
		zap.String("job", name),
		zap.String("run_id", run.runID),
	)
	s.metrics.IncJobRun(name)

	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if owner {
		if err != nil && run.errors == 0 {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	// A deadline is a soft timeout; the next tick retries.
	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		s.metrics.IncJobTimeout(name)
	}
	s.metrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name    string
		Enabled bool
		Run     func(context.Context) error
	}{
		{jobMonthlyReport, s.isJobEnabled(jobMonthlyReport), func(ctx context.Context) error {
			return s.runJob(ctx, jobMonthlyReport, s.cfg.ReportTimeout, s.MonthlyReportJob)
		}},
	}

	for _, job := range jobs {
		if job.Enabled {
			err = errors.Join(err, job.Run(parent))
		}
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)

	for {
		runLag := s.clock.Now().Sub(nextRun)
		if runLag > 0 {
			s.metrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// MonthlyReportJob stores the report of the last complete month once. A month
// is complete as soon as the clock passes into the next one; an already stored
// artifact is left alone.
func (s *Scheduler) MonthlyReportJob(ctx context.Context) error {
	ctx, run, owner := s.ensureJobRun(ctx, jobMonthlyReport)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}

	period := reportdomain.PeriodOf(s.clock.Now()).Previous()

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, "scheduler:"+jobMonthlyReport+":"+period.Key())
		if err != nil {
			if errors.Is(err, lock.ErrLockTimeout) {
				run.AddSkipped(1)
				s.metrics.IncJobSkipped(jobMonthlyReport, "locked")
				return nil
			}
			return err
		}
		defer release()
	}

	exists, err := s.reports.Exists(ctx, period)
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.report.lookup.failed", jobMonthlyReport, err,
			zap.String("period", period.Key()))
		return err
	}
	if exists {
		run.AddSkipped(1)
		s.metrics.IncJobSkipped(jobMonthlyReport, "already_stored")
		return nil
	}

	artifact, err := s.reports.GenerateMonthly(ctx, period.Year, int(period.Month))
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.report.generate.failed", jobMonthlyReport, err,
			zap.String("period", period.Key()))
		return err
	}

	run.AddProcessed(1)
	s.metrics.IncReportWritten(artifact.Storage)
	s.logger(ctx).Info("scheduler.report.stored",
		zap.String("period", period.Key()),
		zap.String("artifact", artifact.Name),
		zap.String("location", artifact.Location),
	)
	return nil
}
