package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/smallbiznis/sevadesk/internal/alert/domain"
	"github.com/smallbiznis/sevadesk/internal/catalog"
	"github.com/smallbiznis/sevadesk/internal/clock"
	obslogger "github.com/smallbiznis/sevadesk/internal/observability/logger"
	"github.com/smallbiznis/sevadesk/internal/observability/metrics"
	"github.com/smallbiznis/sevadesk/internal/observability/tracing"
	"github.com/smallbiznis/sevadesk/internal/report/aggregate"
	"github.com/smallbiznis/sevadesk/internal/report/domain"
	"github.com/smallbiznis/sevadesk/internal/report/render"
	sevadomain "github.com/smallbiznis/sevadesk/internal/seva/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Records  sevadomain.Repository
	Runs     domain.RunRepository
	Catalog  *catalog.Catalog
	Storage  domain.Storage
	Clock    clock.Clock
	Notifier alertdomain.Notifier
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	records  sevadomain.Repository
	runs     domain.RunRepository
	engine   *aggregate.Engine
	storage  domain.Storage
	clock    clock.Clock
	notifier alertdomain.Notifier
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	notifier := p.Notifier
	if notifier == nil {
		notifier = alertdomain.NopNotifier{}
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("report.service"),
		genID:    p.GenID,
		records:  p.Records,
		runs:     p.Runs,
		engine:   aggregate.NewEngine(p.Catalog),
		storage:  p.Storage,
		clock:    p.Clock,
		notifier: notifier,
		metrics:  p.Metrics,
	}
}

// Build reads the month once and derives every report section from that read.
func (s *Service) Build(ctx context.Context, year, month int) (domain.MonthlyReport, error) {
	period, err := domain.NewPeriod(year, month)
	if err != nil {
		return domain.MonthlyReport{}, err
	}
	return s.build(ctx, period)
}

func (s *Service) build(ctx context.Context, period domain.Period) (domain.MonthlyReport, error) {
	from, to := period.Window()
	records, err := s.records.ListByWindow(ctx, s.db, from, to)
	if err != nil {
		return domain.MonthlyReport{}, fmt.Errorf("%w: list records for %s: %w", domain.ErrReportGeneration, period.Key(), err)
	}
	return s.engine.Build(period, records), nil
}

func (s *Service) GenerateMonthly(ctx context.Context, year, month int) (domain.Artifact, error) {
	period, err := domain.NewPeriod(year, month)
	if err != nil {
		return domain.Artifact{}, err
	}

	ctx, span := tracing.StartSpan(ctx, "report.generate_monthly",
		attribute.String("report.period", period.Key()),
		attribute.String("report.storage", s.storage.Kind()),
	)
	start := s.clock.Now()
	artifact, err := s.generate(ctx, period)
	duration := s.clock.Now().Sub(start)
	tracing.EndSpan(span, err)

	s.recordRun(ctx, period, artifact, err, duration.Milliseconds())
	log := obslogger.WithPeriod(obslogger.WithContext(ctx, s.log), period.Year, int(period.Month))
	if err != nil {
		s.metrics.RecordReport(ctx, domain.RunOutcomeFailed, duration)
		log.Error("monthly report failed", zap.Error(err))
		s.raiseAlert(ctx, period, err)
		return domain.Artifact{}, err
	}

	s.metrics.RecordReport(ctx, domain.RunOutcomeSucceeded, duration)
	log.Info("monthly report generated",
		zap.String("artifact", artifact.Name),
		zap.String("location", artifact.Location),
		zap.Int("total_services", artifact.Summary.TotalCount),
		zap.Int64("size", artifact.Size),
	)
	return artifact, nil
}

func (s *Service) generate(ctx context.Context, period domain.Period) (domain.Artifact, error) {
	artifact, content, err := s.render(ctx, period)
	if err != nil {
		return domain.Artifact{}, err
	}

	location, err := s.storage.Put(ctx, artifact.Name, bytes.NewReader(content), artifact.Size)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: store %s: %w", domain.ErrReportGeneration, artifact.Name, err)
	}
	artifact.Location = location
	artifact.Storage = s.storage.Kind()
	return artifact, nil
}

// render builds the whole workbook in memory. Nothing reaches storage here.
func (s *Service) render(ctx context.Context, period domain.Period) (domain.Artifact, []byte, error) {
	report, err := s.build(ctx, period)
	if err != nil {
		return domain.Artifact{}, nil, err
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, report); err != nil {
		return domain.Artifact{}, nil, err
	}

	return domain.Artifact{
		Name:    domain.ArtifactName(period),
		Size:    int64(buf.Len()),
		Period:  period,
		Summary: report.Summary,
	}, buf.Bytes(), nil
}

// Render returns the workbook for the month without storing it, so a
// download of a month still in progress never replaces the stored artifact.
func (s *Service) Render(ctx context.Context, year, month int) (domain.Artifact, []byte, error) {
	period, err := domain.NewPeriod(year, month)
	if err != nil {
		return domain.Artifact{}, nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "report.render_monthly",
		attribute.String("report.period", period.Key()),
	)
	artifact, content, err := s.render(ctx, period)
	tracing.EndSpan(span, err)
	if err != nil {
		obslogger.WithPeriod(obslogger.WithContext(ctx, s.log), period.Year, int(period.Month)).
			Error("monthly report render failed", zap.Error(err))
		return domain.Artifact{}, nil, err
	}
	return artifact, content, nil
}

func (s *Service) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.storage.Open(ctx, name)
}

// Exists reports whether the stored artifact covers the complete month. An
// artifact written before the month closed is treated as missing. Without a
// run repository the stored file is trusted as is.
func (s *Service) Exists(ctx context.Context, period domain.Period) (bool, error) {
	stored, err := s.storage.Exists(ctx, domain.ArtifactName(period))
	if err != nil || !stored || s.runs == nil {
		return stored, err
	}

	run, err := s.runs.LatestSucceeded(ctx, s.db, period.Key())
	if err != nil {
		return false, fmt.Errorf("latest run for %s: %w", period.Key(), err)
	}
	_, closedAt := period.Window()
	return run != nil && !run.CreatedAt.Before(closedAt), nil
}

func (s *Service) recordRun(ctx context.Context, period domain.Period, artifact domain.Artifact, genErr error, durationMS int64) {
	if s.runs == nil {
		return
	}

	run := &domain.Run{
		ID:           s.genID.Generate(),
		Period:       period.Key(),
		ArtifactName: domain.ArtifactName(period),
		Storage:      s.storage.Kind(),
		Outcome:      domain.RunOutcomeSucceeded,
		DurationMS:   durationMS,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if genErr != nil {
		run.Outcome = domain.RunOutcomeFailed
		run.Error = genErr.Error()
	} else {
		run.Location = artifact.Location
		summary := datatypes.JSONMap{
			"total_services":  artifact.Summary.TotalCount,
			"unique_devotees": artifact.Summary.UniqueDevoteeCount,
			"total_amount":    nil,
		}
		if artifact.Summary.TotalAmount != nil {
			summary["total_amount"] = artifact.Summary.TotalAmount.String()
		}
		run.Summary = summary
	}

	if err := s.runs.Insert(ctx, s.db, run); err != nil {
		s.log.Warn("failed to record report run", zap.String("period", period.Key()), zap.Error(err))
	}
}

func (s *Service) raiseAlert(ctx context.Context, period domain.Period, err error) {
	alert := alertdomain.Alert{
		Kind:     alertdomain.KindReportFailed,
		Severity: alertdomain.SeverityWarning,
		Key:      period.Key(),
		Summary:  fmt.Sprintf("Monthly report for %s could not be generated", period.Label()),
		Detail:   err.Error(),
		RaisedAt: s.clock.Now(),
	}
	if notifyErr := s.notifier.Notify(ctx, alert); notifyErr != nil {
		s.log.Warn("failed to notify operators", zap.Error(notifyErr))
	}
}
