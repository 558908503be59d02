package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	alertdomain "github.com/smallbiznis/sevadesk/internal/alert/domain"
	"github.com/smallbiznis/sevadesk/internal/catalog"
	"github.com/smallbiznis/sevadesk/internal/clock"
	"github.com/smallbiznis/sevadesk/internal/config"
	"github.com/smallbiznis/sevadesk/internal/invoicenumber"
	"github.com/smallbiznis/sevadesk/internal/lock"
	obscontext "github.com/smallbiznis/sevadesk/internal/observability/context"
	obslogger "github.com/smallbiznis/sevadesk/internal/observability/logger"
	"github.com/smallbiznis/sevadesk/internal/observability/metrics"
	"github.com/smallbiznis/sevadesk/internal/observability/tracing"
	"github.com/smallbiznis/sevadesk/internal/pricing"
	"github.com/smallbiznis/sevadesk/internal/seva/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultMaxAttempts = 5

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Catalog   *catalog.Catalog
	Resolver  *pricing.Resolver
	Allocator *invoicenumber.Allocator
	Locker    lock.Locker
	Clock     clock.Clock
	Notifier  alertdomain.Notifier
	Config    config.Config
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	catalog     *catalog.Catalog
	resolver    *pricing.Resolver
	allocator   *invoicenumber.Allocator
	locker      lock.Locker
	clock       clock.Clock
	notifier    alertdomain.Notifier
	metrics     *metrics.Metrics
	maxAttempts int
}

func New(p Params) domain.Service {
	maxAttempts := p.Config.Allocation.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	notifier := p.Notifier
	if notifier == nil {
		notifier = alertdomain.NopNotifier{}
	}
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("seva.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		catalog:     p.Catalog,
		resolver:    p.Resolver,
		allocator:   p.Allocator,
		locker:      p.Locker,
		clock:       p.Clock,
		notifier:    notifier,
		metrics:     p.Metrics,
		maxAttempts: maxAttempts,
	}
}

type validatedRequest struct {
	entry     catalog.Entry
	kind      domain.InvoiceKind
	prefix    string
	frequency domain.Frequency
	method    domain.PaymentMethod
	devotee   string
	contact   string
	gothram   string
	puja      string
	address   domain.Address
}

func (s *Service) Create(ctx context.Context, req domain.CreateServiceRequest) (domain.ServiceRecord, error) {
	in, err := s.validate(req)
	if err != nil {
		return domain.ServiceRecord{}, err
	}

	amount, err := s.resolver.ResolveAmount(in.entry.ID, in.frequency)
	if err != nil {
		return domain.ServiceRecord{}, err
	}

	ctx, span := tracing.StartSpan(ctx, "seva.create",
		attribute.String("seva.kind", string(in.kind)),
		attribute.Int("seva.category", int(in.entry.ID)),
	)
	record, err := s.allocateAndInsert(ctx, in, amount)
	tracing.EndSpan(span, err)
	if err != nil {
		return domain.ServiceRecord{}, err
	}

	s.metrics.RecordServiceCreated(ctx, string(record.InvoiceKind))
	obslogger.WithInvoice(obslogger.WithContext(ctx, s.log), record.InvoiceID).Info("service created",
		zap.String("service_name", record.ServiceName),
		zap.String("frequency", string(record.Frequency)),
		zap.String("payment_method", string(record.PaymentMethod)),
		zap.String("amount", record.Amount.String()),
	)
	return record, nil
}

// allocateAndInsert holds the prefix lock while it reads the current maximum
// and inserts in one transaction. A duplicate key means another writer won
// the identifier, so the whole sequence is repeated with a fresh read.
func (s *Service) allocateAndInsert(ctx context.Context, in validatedRequest, amount decimal.Decimal) (domain.ServiceRecord, error) {
	release, err := s.locker.Acquire(ctx, "invoice:"+in.prefix)
	if err != nil {
		return domain.ServiceRecord{}, fmt.Errorf("acquire allocation lock for %s: %w", in.prefix, err)
	}
	defer release()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		now := s.clock.Now().UTC()
		record := domain.ServiceRecord{
			ID:              s.genID.Generate(),
			ServiceCategory: in.entry.ID,
			ServiceName:     in.entry.Name,
			InvoiceKind:     in.kind,
			Frequency:       in.frequency,
			ValidUntil:      pricing.ResolveValidity(in.frequency, now),
			DevoteeName:     in.devotee,
			ContactNumber:   in.contact,
			Gothram:         in.gothram,
			PujaDetails:     in.puja,
			Address:         in.address,
			PaymentMethod:   in.method,
			Amount:          amount,
			Metadata: datatypes.JSONMap{
				"catalog_version": s.catalog.Version(),
				"actor":           obscontext.ActorFromContext(ctx),
				"request_id":      obscontext.RequestIDFromContext(ctx),
			},
			CreatedAt: now,
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			invoiceID, err := s.allocator.Allocate(ctx, tx, in.kind)
			if err != nil {
				return err
			}
			record.InvoiceID = invoiceID
			return s.repo.Insert(ctx, tx, &record)
		})
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, domain.ErrDuplicateKey) {
			s.raiseAllocatorAlert(ctx, in.prefix, err)
			return domain.ServiceRecord{}, err
		}

		s.metrics.RecordAllocationRetry(ctx, in.prefix)
		s.log.Warn("invoice id collision, retrying allocation",
			zap.String("prefix", in.prefix),
			zap.String("invoice_id", record.InvoiceID),
			zap.Int("attempt", attempt),
		)
	}

	s.metrics.RecordAllocationFailure(ctx, in.prefix, "retries_exhausted")
	return domain.ServiceRecord{}, fmt.Errorf("allocate %s invoice id after %d attempts: %w", in.kind, s.maxAttempts, err)
}

func (s *Service) raiseAllocatorAlert(ctx context.Context, prefix string, err error) {
	var alert alertdomain.Alert
	switch {
	case errors.Is(err, invoicenumber.ErrAllocatorExhausted):
		s.metrics.RecordAllocationFailure(ctx, prefix, "exhausted")
		alert = alertdomain.Alert{
			Kind:     alertdomain.KindAllocatorExhausted,
			Severity: alertdomain.SeverityCritical,
			Summary:  fmt.Sprintf("Invoice identifiers for prefix %s are exhausted; new services of this kind cannot be issued", prefix),
		}
	case errors.Is(err, invoicenumber.ErrMalformedIdentifier):
		s.metrics.RecordAllocationFailure(ctx, prefix, "malformed")
		alert = alertdomain.Alert{
			Kind:     alertdomain.KindMalformedIdentifier,
			Severity: alertdomain.SeverityCritical,
			Summary:  fmt.Sprintf("Stored invoice identifier for prefix %s is malformed", prefix),
		}
	default:
		return
	}
	alert.Key = prefix
	alert.Detail = err.Error()
	alert.RaisedAt = s.clock.Now()

	s.log.Error("invoice allocation halted", zap.String("prefix", prefix), zap.Error(err))
	if notifyErr := s.notifier.Notify(ctx, alert); notifyErr != nil {
		s.log.Warn("failed to notify operators", zap.Error(notifyErr))
	}
}

func (s *Service) GetByInvoiceID(ctx context.Context, invoiceID string) (domain.ServiceRecord, error) {
	invoiceID = strings.ToUpper(strings.TrimSpace(invoiceID))
	if _, err := invoicenumber.Parse(invoiceID); err != nil {
		return domain.ServiceRecord{}, domain.ErrInvalidInvoiceID
	}

	record, err := s.repo.FindByInvoiceID(ctx, s.db, invoiceID)
	if err != nil {
		return domain.ServiceRecord{}, err
	}
	if record == nil {
		return domain.ServiceRecord{}, domain.ErrNotFound
	}
	return *record, nil
}

func (s *Service) validate(req domain.CreateServiceRequest) (validatedRequest, error) {
	entry, err := s.catalog.Lookup(req.Category)
	if err != nil {
		return validatedRequest{}, err
	}

	kind, err := invoicenumber.ParseKind(req.Kind)
	if err != nil {
		return validatedRequest{}, fmt.Errorf("%w: %q", domain.ErrInvalidKind, req.Kind)
	}
	prefix, err := invoicenumber.Prefix(kind)
	if err != nil {
		return validatedRequest{}, fmt.Errorf("%w: %q", domain.ErrInvalidKind, req.Kind)
	}

	frequency, ok := pricing.ParseFrequency(req.Frequency)
	if !ok {
		return validatedRequest{}, fmt.Errorf("%w: %q", domain.ErrInvalidFrequency, req.Frequency)
	}

	method, ok := domain.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return validatedRequest{}, fmt.Errorf("%w: %q", domain.ErrInvalidPaymentMethod, req.PaymentMethod)
	}

	in := validatedRequest{
		entry:     entry,
		kind:      kind,
		prefix:    prefix,
		frequency: frequency,
		method:    method,
		devotee:   strings.TrimSpace(req.DevoteeName),
		contact:   strings.TrimSpace(req.ContactNumber),
		gothram:   strings.TrimSpace(req.Gothram),
		puja:      strings.TrimSpace(req.PujaDetails),
	}

	if err := checkLength("devotee_name", in.devotee, 100); err != nil {
		return validatedRequest{}, err
	}
	if err := checkLength("contact_number", in.contact, 15); err != nil {
		return validatedRequest{}, err
	}
	if err := checkLength("gothram", in.gothram, 50); err != nil {
		return validatedRequest{}, err
	}

	if req.Address != nil {
		address, err := normalizeAddress(*req.Address)
		if err != nil {
			return validatedRequest{}, err
		}
		in.address = address
	}
	return in, nil
}

// normalizeAddress keeps an address only when address1 is present. Any other
// field without address1 is rejected rather than stored half-filled.
func normalizeAddress(a domain.Address) (domain.Address, error) {
	a = domain.Address{
		Address1: strings.TrimSpace(a.Address1),
		Address2: strings.TrimSpace(a.Address2),
		Address3: strings.TrimSpace(a.Address3),
		Address4: strings.TrimSpace(a.Address4),
		City:     strings.TrimSpace(a.City),
		District: strings.TrimSpace(a.District),
		State:    strings.TrimSpace(a.State),
		Pincode:  strings.TrimSpace(a.Pincode),
	}
	if a.IsZero() {
		return a, nil
	}
	if a.Address1 == "" {
		return domain.Address{}, fmt.Errorf("%w: address1 is required when an address is given", domain.ErrInvalidAddress)
	}

	limits := []struct {
		field string
		value string
		max   int
	}{
		{"address1", a.Address1, 100},
		{"address2", a.Address2, 100},
		{"address3", a.Address3, 100},
		{"address4", a.Address4, 100},
		{"city", a.City, 50},
		{"district", a.District, 50},
		{"state", a.State, 50},
		{"pincode", a.Pincode, 10},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			return domain.Address{}, fmt.Errorf("%w: %s exceeds %d characters", domain.ErrInvalidAddress, l.field, l.max)
		}
	}
	return a, nil
}

func checkLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%w: %s exceeds %d characters", domain.ErrInvalidField, field, max)
	}
	return nil
}
