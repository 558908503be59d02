// Package aggregate derives report figures from the records of one window.
// Every function is pure and deterministic for a given input slice.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/sevadesk/internal/catalog"
	"github.com/smallbiznis/sevadesk/internal/report/domain"
	sevadomain "github.com/smallbiznis/sevadesk/internal/seva/domain"
)

// Engine resolves category labels through the catalog.
type Engine struct {
	catalog *catalog.Catalog
}

func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Build assembles every section of the monthly report from records already
// restricted to the period's window.
func (e *Engine) Build(period domain.Period, records []sevadomain.ServiceRecord) domain.MonthlyReport {
	records = sortedCopy(records)

	report := domain.MonthlyReport{
		Period:         period,
		Summary:        Summarize(records),
		Categories:     e.BreakdownByCategory(records),
		PaymentMethods: BreakdownByPaymentMethod(records),
	}

	// Sheets follow catalog order so the workbook layout does not shift
	// with the month's totals.
	categories := make([]domain.CategoryBreakdown, len(report.Categories))
	copy(categories, report.Categories)
	sort.Slice(categories, func(i, j int) bool { return categories[i].Category < categories[j].Category })
	for _, c := range categories {
		report.CategorySections = append(report.CategorySections, domain.CategorySection{
			Breakdown: c,
			Records:   RecordsByCategory(records, c.Category),
		})
	}

	methods := make([]domain.PaymentMethodBreakdown, len(report.PaymentMethods))
	copy(methods, report.PaymentMethods)
	sort.Slice(methods, func(i, j int) bool { return methods[i].Method < methods[j].Method })
	for _, m := range methods {
		report.PaymentSections = append(report.PaymentSections, domain.PaymentSection{
			Breakdown: m,
			Records:   e.RecordsByPaymentMethod(records, m.Method),
		})
	}

	return report
}

// Summarize counts records, sums amounts and counts distinct non-empty
// devotee names. Names are compared exactly.
func Summarize(records []sevadomain.ServiceRecord) domain.Summary {
	if len(records) == 0 {
		return domain.Summary{}
	}

	total := decimal.Zero
	devotees := make(map[string]struct{}, len(records))
	for _, r := range records {
		total = total.Add(r.Amount)
		if r.DevoteeName != "" {
			devotees[r.DevoteeName] = struct{}{}
		}
	}

	return domain.Summary{
		TotalCount:         len(records),
		TotalAmount:        &total,
		UniqueDevoteeCount: len(devotees),
	}
}

// BreakdownByCategory groups by category, ordered by total amount descending
// then category id ascending.
func (e *Engine) BreakdownByCategory(records []sevadomain.ServiceRecord) []domain.CategoryBreakdown {
	groups := make(map[catalog.Category]*domain.CategoryBreakdown)
	for _, r := range records {
		g, ok := groups[r.ServiceCategory]
		if !ok {
			g = &domain.CategoryBreakdown{
				Category:    r.ServiceCategory,
				Name:        r.ServiceName,
				DisplayName: e.displayName(r),
				TotalAmount: decimal.Zero,
			}
			groups[r.ServiceCategory] = g
		}
		g.Count++
		g.TotalAmount = g.TotalAmount.Add(r.Amount)
	}

	out := make([]domain.CategoryBreakdown, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalAmount.Cmp(out[j].TotalAmount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// BreakdownByPaymentMethod groups by method, ordered by total amount
// descending then method name ascending.
func BreakdownByPaymentMethod(records []sevadomain.ServiceRecord) []domain.PaymentMethodBreakdown {
	groups := make(map[sevadomain.PaymentMethod]*domain.PaymentMethodBreakdown)
	for _, r := range records {
		g, ok := groups[r.PaymentMethod]
		if !ok {
			g = &domain.PaymentMethodBreakdown{
				Method:      r.PaymentMethod,
				DisplayName: r.PaymentMethod.DisplayName(),
				TotalAmount: decimal.Zero,
			}
			groups[r.PaymentMethod] = g
		}
		g.Count++
		g.TotalAmount = g.TotalAmount.Add(r.Amount)
	}

	out := make([]domain.PaymentMethodBreakdown, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalAmount.Cmp(out[j].TotalAmount); c != 0 {
			return c > 0
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// RecordsByCategory lists one category ordered by created_at then invoice id.
func RecordsByCategory(records []sevadomain.ServiceRecord, category catalog.Category) []domain.CategoryRecord {
	out := []domain.CategoryRecord{}
	for _, r := range sortedCopy(records) {
		if r.ServiceCategory != category {
			continue
		}
		out = append(out, domain.CategoryRecord{
			InvoiceID:     r.InvoiceID,
			CreatedAt:     r.CreatedAt,
			DevoteeName:   r.DevoteeName,
			Gothram:       r.Gothram,
			ContactNumber: r.ContactNumber,
			Amount:        r.Amount,
			PaymentMethod: r.PaymentMethod,
			PujaDetails:   r.PujaDetails,
		})
	}
	return out
}

// RecordsByPaymentMethod lists one method ordered by created_at then invoice id.
func (e *Engine) RecordsByPaymentMethod(records []sevadomain.ServiceRecord, method sevadomain.PaymentMethod) []domain.PaymentRecord {
	out := []domain.PaymentRecord{}
	for _, r := range sortedCopy(records) {
		if r.PaymentMethod != method {
			continue
		}
		out = append(out, domain.PaymentRecord{
			InvoiceID:   r.InvoiceID,
			CreatedAt:   r.CreatedAt,
			ServiceName: e.displayName(r),
			DevoteeName: r.DevoteeName,
			Amount:      r.Amount,
			PujaDetails: r.PujaDetails,
		})
	}
	return out
}

func (e *Engine) displayName(r sevadomain.ServiceRecord) string {
	if e != nil && e.catalog != nil {
		if entry, err := e.catalog.Lookup(r.ServiceCategory); err == nil {
			return entry.DisplayName
		}
	}
	return r.DisplayName()
}

func sortedCopy(records []sevadomain.ServiceRecord) []sevadomain.ServiceRecord {
	out := make([]sevadomain.ServiceRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].InvoiceID < out[j].InvoiceID
	})
	return out
}
