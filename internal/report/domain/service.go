package domain

import (
	"context"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service interface {
	// GenerateMonthly builds and stores the workbook for the month, replacing
	// any earlier artifact for the same month.
	GenerateMonthly(ctx context.Context, year, month int) (Artifact, error)
	// Render builds the workbook for the month without storing it.
	Render(ctx context.Context, year, month int) (Artifact, []byte, error)
	// Build aggregates the month without emitting a workbook.
	Build(ctx context.Context, year, month int) (MonthlyReport, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Exists reports whether a complete artifact for the month is stored.
	Exists(ctx context.Context, period Period) (bool, error)
}

// Storage keeps emitted workbooks. Put must not expose a partially written artifact.
type Storage interface {
	Kind() string
	Put(ctx context.Context, name string, r io.Reader, size int64) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Exists(ctx context.Context, name string) (bool, error)
}

const (
	RunOutcomeSucceeded = "succeeded"
	RunOutcomeFailed    = "failed"
)

// Run is one generation attempt, kept as an audit trail.
type Run struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	Period       string       `gorm:"size:7;not null;index"`
	ArtifactName string       `gorm:"size:100;not null"`
	Storage      string       `gorm:"size:20;not null"`
	Location     string       `gorm:"size:255"`
	Outcome      string       `gorm:"size:20;not null"`
	Summary      datatypes.JSONMap
	Error        string    `gorm:"type:text"`
	DurationMS   int64     `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (Run) TableName() string {
	return "report_runs"
}

type RunRepository interface {
	Insert(ctx context.Context, db *gorm.DB, run *Run) error
	LatestSucceeded(ctx context.Context, db *gorm.DB, period string) (*Run, error)
}
