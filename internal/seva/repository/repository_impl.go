package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/sevadesk/internal/seva/domain"
	"github.com/smallbiznis/sevadesk/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, record *domain.ServiceRecord) error {
	err := conn.WithContext(ctx).Create(record).Error
	if err != nil && db.IsDuplicateKeyErr(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateKey, record.InvoiceID)
	}
	return err
}

func (r *repo) MaxInvoiceID(ctx context.Context, conn *gorm.DB, prefix string) (string, bool, error) {
	var max sql.NullString
	err := conn.WithContext(ctx).Raw(
		`SELECT MAX(invoice_id) FROM service_records WHERE invoice_id LIKE ?`,
		prefix+"%",
	).Row().Scan(&max)
	if err != nil {
		return "", false, err
	}
	if !max.Valid || max.String == "" {
		return "", false, nil
	}
	return max.String, true, nil
}

func (r *repo) ListByWindow(ctx context.Context, conn *gorm.DB, from, to time.Time) ([]domain.ServiceRecord, error) {
	var records []domain.ServiceRecord
	err := conn.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Order("created_at asc, invoice_id asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) FindByInvoiceID(ctx context.Context, conn *gorm.DB, invoiceID string) (*domain.ServiceRecord, error) {
	var record domain.ServiceRecord
	err := conn.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
