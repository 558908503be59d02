// Package render writes a MonthlyReport as an xlsx workbook.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/sevadesk/internal/report/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"

	maxSheetName        = 31
	maxCategorySheet    = 28
	maxPaymentSheetBody = 20
	paymentSheetPrefix  = "Payment_"

	timestampLayout = "2006-01-02 15:04:05"
)

var (
	summaryHeaders   = []interface{}{"Total Services", "Total Amount", "Unique Devotees"}
	categoryHeaders  = []interface{}{"Service Type", "Count", "Total Amount"}
	paymentHeaders   = []interface{}{"Payment Method", "Count", "Total Amount"}
	categorySheetCol = []interface{}{"Invoice Number", "Date", "Devotee Name", "Gothram", "Contact", "Amount", "Payment Method", "Puja Details"}
	paymentSheetCol  = []interface{}{"Invoice Number", "Date", "Service Type", "Devotee Name", "Amount", "Puja Details"}
)

type colWidth struct {
	col   string
	width float64
}

var (
	categoryWidths = []colWidth{{"A", 15}, {"B", 20}, {"C", 25}, {"H", 30}}
	paymentWidths  = []colWidth{{"A", 15}, {"B", 20}, {"C", 25}, {"D", 25}, {"F", 30}}
)

// Write renders the report and streams the workbook to w. Any failure is
// returned wrapped in domain.ErrReportGeneration.
func Write(w io.Writer, report domain.MonthlyReport) error {
	f, err := build(report)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrReportGeneration, err)
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: write workbook: %v", domain.ErrReportGeneration, err)
	}
	return nil
}

func build(report domain.MonthlyReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	b := &builder{f: f, bold: bold, used: map[string]struct{}{strings.ToLower(SummarySheet): {}}}
	b.summary(report)
	for _, section := range report.CategorySections {
		if len(section.Records) == 0 {
			continue
		}
		b.categorySheet(section)
	}
	for _, section := range report.PaymentSections {
		if len(section.Records) == 0 {
			continue
		}
		b.paymentSheet(section)
	}
	if b.err != nil {
		f.Close()
		return nil, b.err
	}
	return f, nil
}

// builder keeps the first error so sheet code reads top to bottom.
type builder struct {
	f    *excelize.File
	bold int
	used map[string]struct{}
	err  error
}

func (b *builder) summary(report domain.MonthlyReport) {
	s := SummarySheet
	b.set(s, 1, 1, "Monthly Report: "+report.Period.Label())
	b.style(s, 1, 1, 1)

	b.row(s, 2, summaryHeaders)
	b.style(s, 2, 1, len(summaryHeaders))
	var total interface{}
	if report.Summary.TotalAmount != nil {
		total = *report.Summary.TotalAmount
	}
	b.row(s, 3, []interface{}{report.Summary.TotalCount, total, report.Summary.UniqueDevoteeCount})

	b.set(s, 1, 5, "Service Type Breakdown:")
	b.style(s, 5, 1, 1)
	b.row(s, 6, categoryHeaders)
	b.style(s, 6, 1, len(categoryHeaders))
	for i, c := range report.Categories {
		b.row(s, 7+i, []interface{}{c.DisplayName, c.Count, c.TotalAmount})
	}

	label := len(report.Categories) + 8
	b.set(s, 1, label, "Payment Method Breakdown:")
	b.style(s, label, 1, 1)
	b.row(s, label+1, paymentHeaders)
	b.style(s, label+1, 1, len(paymentHeaders))
	for i, m := range report.PaymentMethods {
		b.row(s, label+2+i, []interface{}{m.DisplayName, m.Count, m.TotalAmount})
	}
	b.width(s, colWidth{"A", 25})
}

func (b *builder) categorySheet(section domain.CategorySection) {
	name := b.claim(CategorySheetName(section.Breakdown.DisplayName))
	b.newSheet(name)
	b.row(name, 1, categorySheetCol)
	b.style(name, 1, 1, len(categorySheetCol))
	for i, r := range section.Records {
		b.row(name, i+2, []interface{}{
			r.InvoiceID,
			r.CreatedAt.UTC().Format(timestampLayout),
			r.DevoteeName,
			r.Gothram,
			r.ContactNumber,
			r.Amount,
			r.PaymentMethod.DisplayName(),
			r.PujaDetails,
		})
	}
	b.width(name, categoryWidths...)
}

func (b *builder) paymentSheet(section domain.PaymentSection) {
	name := b.claim(PaymentSheetName(section.Breakdown.DisplayName))
	b.newSheet(name)
	b.row(name, 1, paymentSheetCol)
	b.style(name, 1, 1, len(paymentSheetCol))
	for i, r := range section.Records {
		b.row(name, i+2, []interface{}{
			r.InvoiceID,
			r.CreatedAt.UTC().Format(timestampLayout),
			r.ServiceName,
			r.DevoteeName,
			r.Amount,
			r.PujaDetails,
		})
	}
	b.width(name, paymentWidths...)
}

func (b *builder) newSheet(name string) {
	if b.err != nil {
		return
	}
	_, b.err = b.f.NewSheet(name)
}

func (b *builder) set(sheet string, col, row int, value interface{}) {
	if b.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetCellValue(sheet, cell, value)
}

// row writes values from column A. Decimal amounts go in as their exact
// text in a numeric cell.
func (b *builder) row(sheet string, row int, values []interface{}) {
	if b.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		b.err = err
		return
	}

	plain := make([]interface{}, len(values))
	copy(plain, values)
	for i, v := range plain {
		if _, ok := v.(decimal.Decimal); ok {
			plain[i] = nil
		}
	}
	if b.err = b.f.SetSheetRow(sheet, cell, &plain); b.err != nil {
		return
	}

	for i, v := range values {
		d, ok := v.(decimal.Decimal)
		if !ok {
			continue
		}
		if cell, b.err = excelize.CoordinatesToCellName(i+1, row); b.err != nil {
			return
		}
		if b.err = b.f.SetCellDefault(sheet, cell, d.String()); b.err != nil {
			return
		}
	}
}

func (b *builder) style(sheet string, row, fromCol, toCol int) {
	if b.err != nil {
		return
	}
	from, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		b.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetCellStyle(sheet, from, to, b.bold)
}

func (b *builder) width(sheet string, widths ...colWidth) {
	for _, w := range widths {
		if b.err != nil {
			return
		}
		b.err = b.f.SetColWidth(sheet, w.col, w.col, w.width)
	}
}

// claim reserves a unique sheet name. Excel compares names case-insensitively,
// so a collision gets " (2)", " (3)" and so on, trimmed to stay within 31 characters.
func (b *builder) claim(base string) string {
	name := base
	for n := 2; ; n++ {
		if _, taken := b.used[strings.ToLower(name)]; !taken {
			break
		}
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetName-utf8.RuneCountInString(suffix)) + suffix
	}
	b.used[strings.ToLower(name)] = struct{}{}
	return name
}

// CategorySheetName is the display name made sheet-safe and cut to 28 characters.
func CategorySheetName(display string) string {
	return truncate(sanitize(display), maxCategorySheet)
}

// PaymentSheetName prefixes the method label cut to 20 characters, e.g. Payment_Cash.
func PaymentSheetName(display string) string {
	return paymentSheetPrefix + truncate(sanitize(display), maxPaymentSheetBody)
}

var sheetNameReplacer = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

func sanitize(name string) string {
	name = strings.TrimSpace(sheetNameReplacer.Replace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		return "Sheet"
	}
	return name
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return strings.TrimRight(string([]rune(s)[:max]), " ")
}
