package scheduler

import (
	"context"
	"time"

	obscontext "github.com/smallbiznis/sevadesk/internal/observability/context"
	obslogger "github.com/smallbiznis/sevadesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/sevadesk/internal/observability/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// jobRun tallies one pass of a job. It rides on the context so nested
// helpers add to the same tally.
type jobRun struct {
	job       string
	runID     string
	startedAt time.Time

	processed int
	skipped   int
	errors    int
}

type jobRunKey struct{}

func (r *jobRun) AddProcessed(n int) {
	if r != nil && n > 0 {
		r.processed += n
	}
}

func (r *jobRun) AddSkipped(n int) {
	if r != nil && n > 0 {
		r.skipped += n
	}
}

func (r *jobRun) IncError() {
	if r != nil {
		r.errors++
	}
}

// ensureJobRun reuses the run already on ctx; owner is true when it started one.
func (s *Scheduler) ensureJobRun(ctx context.Context, job string) (_ context.Context, run *jobRun, owner bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	if existing, ok := ctx.Value(jobRunKey{}).(*jobRun); ok {
		return ctx, existing, false
	}
	run = &jobRun{job: job, runID: s.genID.Generate().String(), startedAt: s.clock.Now()}
	ctx = context.WithValue(ctx, jobRunKey{}, run)
	ctx = obscontext.WithActor(ctx, "scheduler")
	ctx = obscontext.WithRequestID(ctx, run.runID)
	return ctx, run, true
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}

func (s *Scheduler) logJobStart(ctx context.Context, run *jobRun) {
	if run == nil {
		return
	}
	s.logger(ctx).Info("scheduler.job.start", zap.String("job", run.job))
}

func (s *Scheduler) logJobFinish(ctx context.Context, run *jobRun) {
	if run == nil {
		return
	}
	level := zapcore.InfoLevel
	if run.errors > 0 {
		level = zapcore.WarnLevel
	}
	if ce := s.logger(ctx).Check(level, "scheduler.job.finish"); ce != nil {
		ce.Write(
			zap.String("job", run.job),
			zap.Int64("duration_ms", s.clock.Now().Sub(run.startedAt).Milliseconds()),
			zap.Int("processed_count", run.processed),
			zap.Int("skipped_count", run.skipped),
			zap.Int("error_count", run.errors),
		)
	}
}

func (s *Scheduler) logSchedulerError(ctx context.Context, run *jobRun, msg string, job string, err error, fields ...zap.Field) {
	if err == nil {
		return
	}
	run.IncError()
	fields = append([]zap.Field{
		zap.String("job", job),
		zap.String("reason", obsmetrics.ClassifySchedulerJobReason(err)),
		zap.Error(err),
	}, fields...)
	s.logger(ctx).Error(msg, fields...)
}
