package scheduler

import (
	"time"

	"github.com/smallbiznis/sevadesk/internal/config"
)

// Config controls scheduler intervals.
type Config struct {
	Enabled       bool
	RunInterval   time.Duration
	ReportTimeout time.Duration
	EnabledJobs   []string
}

func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		RunInterval:   time.Hour,
		ReportTimeout: 5 * time.Minute,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Enabled:     cfg.Scheduler.Enabled,
		RunInterval: cfg.Scheduler.RunInterval,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.ReportTimeout <= 0 {
		c.ReportTimeout = defaults.ReportTimeout
	}
	return c
}
