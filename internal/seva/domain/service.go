package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/sevadesk/internal/catalog"
)

type CreateServiceRequest struct {
	Category      catalog.Category
	Kind          string
	Frequency     string
	PaymentMethod string
	DevoteeName   string
	ContactNumber string
	Gothram       string
	PujaDetails   string
	Address       *Address
}

type Service interface {
	Create(context.Context, CreateServiceRequest) (ServiceRecord, error)
	GetByInvoiceID(ctx context.Context, invoiceID string) (ServiceRecord, error)
}

var (
	ErrDuplicateKey         = errors.New("duplicate_invoice_id")
	ErrNotFound             = errors.New("not_found")
	ErrInvalidKind          = errors.New("invalid_invoice_kind")
	ErrInvalidFrequency     = errors.New("invalid_frequency")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrInvalidAddress       = errors.New("invalid_address")
	ErrInvalidField         = errors.New("invalid_field")
	ErrInvalidInvoiceID     = errors.New("invalid_invoice_id")
)
