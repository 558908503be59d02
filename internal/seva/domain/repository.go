package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// Insert fails with ErrDuplicateKey when the invoice id is taken.
	Insert(ctx context.Context, db *gorm.DB, record *ServiceRecord) error
	MaxInvoiceID(ctx context.Context, db *gorm.DB, prefix string) (string, bool, error)
	// ListByWindow returns records with from <= created_at < to ordered by created_at, invoice_id.
	ListByWindow(ctx context.Context, db *gorm.DB, from, to time.Time) ([]ServiceRecord, error)
	FindByInvoiceID(ctx context.Context, db *gorm.DB, invoiceID string) (*ServiceRecord, error)
}
