package invoicenumber

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Source reads the lexicographically greatest stored identifier for prefix.
type Source interface {
	MaxInvoiceID(ctx context.Context, tx *gorm.DB, prefix string) (string, bool, error)
}

// Allocator derives the next identifier from the store. Callers must hold the
// per-prefix lock and insert within tx so the read and write share a snapshot.
type Allocator struct {
	source Source
}

func NewAllocator(source Source) *Allocator {
	return &Allocator{source: source}
}

func (a *Allocator) Allocate(ctx context.Context, tx *gorm.DB, kind Kind) (string, error) {
	prefix, err := Prefix(kind)
	if err != nil {
		return "", err
	}

	last, found, err := a.source.MaxInvoiceID(ctx, tx, prefix)
	if err != nil {
		return "", fmt.Errorf("read max invoice id for %s: %w", prefix, err)
	}
	if !found {
		last = ""
	}
	return Next(prefix, last)
}
