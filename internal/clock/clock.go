package clock

import "time"

// Clock abstracts wall time so services and jobs can be driven by tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reports the current time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
