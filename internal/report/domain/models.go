package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/sevadesk/internal/catalog"
	sevadomain "github.com/smallbiznis/sevadesk/internal/seva/domain"
)

var (
	ErrReportGeneration = errors.New("report_generation_failed")
	ErrInvalidPeriod    = errors.New("invalid_period")
	ErrArtifactNotFound = errors.New("report_artifact_not_found")
)

// Period is a calendar month. Windows are always computed in UTC.
type Period struct {
	Year  int
	Month time.Month
}

func NewPeriod(year, month int) (Period, error) {
	if year < 1 || year > 9999 {
		return Period{}, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// PeriodOf returns the month containing t, evaluated in UTC.
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: t.Month()}
}

// Window returns [first instant of the month, first instant of the next month).
func (p Period) Window() (time.Time, time.Time) {
	from := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func (p Period) Previous() Period {
	from, _ := p.Window()
	return PeriodOf(from.AddDate(0, -1, 0))
}

// Label renders the period as "January 2024".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", p.Month.String(), p.Year)
}

// Key renders the period as "2024-01".
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Summary totals one window. TotalAmount is nil when the window holds no
// records, which keeps "nothing issued" apart from "issued for zero".
type Summary struct {
	TotalCount         int              `json:"total_services"`
	TotalAmount        *decimal.Decimal `json:"total_amount"`
	UniqueDevoteeCount int              `json:"unique_devotees"`
}

type CategoryBreakdown struct {
	Category    catalog.Category `json:"service_category"`
	Name        string           `json:"service_name"`
	DisplayName string           `json:"display_name"`
	Count       int              `json:"count"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
}

type PaymentMethodBreakdown struct {
	Method      sevadomain.PaymentMethod `json:"payment_method"`
	DisplayName string                   `json:"display_name"`
	Count       int                      `json:"count"`
	TotalAmount decimal.Decimal          `json:"total_amount"`
}

// CategoryRecord is a record as listed on a per-category sheet.
type CategoryRecord struct {
	InvoiceID     string
	CreatedAt     time.Time
	DevoteeName   string
	Gothram       string
	ContactNumber string
	Amount        decimal.Decimal
	PaymentMethod sevadomain.PaymentMethod
	PujaDetails   string
}

// PaymentRecord is a record as listed on a per-payment-method sheet.
type PaymentRecord struct {
	InvoiceID   string
	CreatedAt   time.Time
	ServiceName string
	DevoteeName string
	Amount      decimal.Decimal
	PujaDetails string
}

type CategorySection struct {
	Breakdown CategoryBreakdown
	Records   []CategoryRecord
}

type PaymentSection struct {
	Breakdown PaymentMethodBreakdown
	Records   []PaymentRecord
}

// MonthlyReport is everything the emitter needs, derived from one read of the window.
type MonthlyReport struct {
	Period           Period
	Summary          Summary
	Categories       []CategoryBreakdown
	PaymentMethods   []PaymentMethodBreakdown
	CategorySections []CategorySection
	PaymentSections  []PaymentSection
}

// Artifact is the handle to a stored report.
type Artifact struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Storage  string  `json:"storage"`
	Size     int64   `json:"size"`
	Period   Period  `json:"-"`
	Summary  Summary `json:"summary"`
}

// ArtifactName follows the historical file naming: Temple_Report_January_2024.xlsx.
func ArtifactName(p Period) string {
	return fmt.Sprintf("Temple_Report_%s_%d.xlsx", p.Month.String(), p.Year)
}
