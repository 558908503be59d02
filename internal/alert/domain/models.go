package domain

import "time"

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type Kind string

const (
	KindAllocatorExhausted  Kind = "allocator_exhausted"
	KindMalformedIdentifier Kind = "malformed_identifier"
	KindReportFailed        Kind = "report_failed"
)

// Alert is an operator-facing notification. Key groups repeats for throttling.
type Alert struct {
	Kind     Kind
	Severity Severity
	Key      string
	Summary  string
	Detail   string
	RaisedAt time.Time
}
