package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	SchedulerJobReasonDeadlineExceeded     = "deadline_exceeded"
	SchedulerJobReasonDBLockTimeout        = "db_lock_timeout"
	SchedulerJobReasonSerializationFailure = "serialization_failure"
	SchedulerJobReasonUniqueViolation      = "unique_violation"
	SchedulerJobReasonStorage              = "storage"
	SchedulerJobReasonUnknown              = "unknown"
)

// SchedulerMetrics tracks the background report loop. Every series carries
// the service and env const labels.
type SchedulerMetrics struct {
	jobRuns        *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	jobTimeouts    *prometheus.CounterVec
	jobErrors      *prometheus.CounterVec
	jobSkipped     *prometheus.CounterVec
	runLoopLag     prometheus.Observer
	reportsWritten *prometheus.CounterVec
}

// Report builds can take minutes on a busy month, hence the long tail.
var schedulerBuckets = []float64{0.05, 0.25, 1, 5, 15, 30, 60, 120, 300, 600}

var (
	schedulerMetricsOnce sync.Once
	schedulerMetrics     *SchedulerMetrics
)

// SchedulerWithConfig registers the scheduler collectors on the default
// registry once per process.
func SchedulerWithConfig(cfg Config) *SchedulerMetrics {
	schedulerMetricsOnce.Do(func() {
		schedulerMetrics = NewSchedulerMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return schedulerMetrics
}

func NewSchedulerMetrics(registerer prometheus.Registerer, cfg Config) *SchedulerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := prometheus.Labels{
		"service": valueOr(cfg.ServiceName, "sevadesk"),
		"env":     valueOr(cfg.Environment, "unknown"),
	}
	counter := func(name, help string, vars ...string) *prometheus.CounterVec {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "sevadesk",
			Subsystem:   "scheduler",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, vars)
		registerer.MustRegister(c)
		return c
	}

	m := &SchedulerMetrics{
		jobRuns:        counter("job_runs_total", "Scheduler job runs by name.", "job"),
		jobTimeouts:    counter("job_timeouts_total", "Scheduler jobs that hit their deadline.", "job"),
		jobErrors:      counter("job_errors_total", "Scheduler job errors by reason.", "job", "reason"),
		jobSkipped:     counter("job_skipped_total", "Scheduler runs with nothing to do.", "job", "reason"),
		reportsWritten: counter("reports_written_total", "Monthly report artifacts written by the scheduler.", "storage"),
	}
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   "sevadesk",
		Subsystem:   "scheduler",
		Name:        "job_duration_seconds",
		Help:        "Scheduler job latency.",
		Buckets:     schedulerBuckets,
		ConstLabels: labels,
	}, []string{"job"})
	runLoopLag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   "sevadesk",
		Subsystem:   "scheduler",
		Name:        "runloop_lag_seconds",
		Help:        "How late a tick started past its slot.",
		Buckets:     schedulerBuckets,
		ConstLabels: labels,
	})
	registerer.MustRegister(jobDuration, runLoopLag)
	m.jobDuration = jobDuration
	m.runLoopLag = runLoopLag
	return m
}

func valueOr(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func (m *SchedulerMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *SchedulerMetrics) IncJobTimeout(job string) {
	if m == nil {
		return
	}
	m.jobTimeouts.WithLabelValues(job).Inc()
}

// IncJobError increments the job error counter with a classified reason.
func (m *SchedulerMetrics) IncJobError(job string, err error) {
	if m == nil || err == nil {
		return
	}
	m.jobErrors.WithLabelValues(job, ClassifySchedulerJobReason(err)).Inc()
}

func (m *SchedulerMetrics) IncJobSkipped(job, reason string) {
	if m == nil {
		return
	}
	m.jobSkipped.WithLabelValues(job, reason).Inc()
}

func (m *SchedulerMetrics) IncReportWritten(storage string) {
	if m == nil {
		return
	}
	m.reportsWritten.WithLabelValues(storage).Inc()
}

// ObserveRunLoopLag records lag between the scheduled tick and actual run start.
func (m *SchedulerMetrics) ObserveRunLoopLag(duration time.Duration) {
	if m == nil {
		return
	}
	if duration < 0 {
		duration = 0
	}
	m.runLoopLag.Observe(duration.Seconds())
}

// ClassifySchedulerJobReason maps scheduler job errors to low-cardinality reasons.
func ClassifySchedulerJobReason(err error) string {
	if err == nil {
		return SchedulerJobReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return SchedulerJobReasonDeadlineExceeded
	}
	if hasPGCode(err, "55P03") {
		return SchedulerJobReasonDBLockTimeout
	}
	if hasPGCode(err, "40001") {
		return SchedulerJobReasonSerializationFailure
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || hasPGCode(err, "23505") {
		return SchedulerJobReasonUniqueViolation
	}
	var storageErr interface{ StorageError() bool }
	if errors.As(err, &storageErr) && storageErr.StorageError() {
		return SchedulerJobReasonStorage
	}
	return SchedulerJobReasonUnknown
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
