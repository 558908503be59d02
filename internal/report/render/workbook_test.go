package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/sevadesk/internal/catalog"
	"github.com/smallbiznis/sevadesk/internal/report/aggregate"
	"github.com/smallbiznis/sevadesk/internal/report/domain"
	sevadomain "github.com/smallbiznis/sevadesk/internal/seva/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var jan = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func sampleReport() domain.MonthlyReport {
	records := []sevadomain.ServiceRecord{
		{InvoiceID: "TA0001", ServiceCategory: 1, ServiceName: "ABHISHEKAM", PaymentMethod: sevadomain.PaymentMethodCash,
			Amount: decimal.NewFromInt(16), DevoteeName: "Ravi", Gothram: "Kashyapa", ContactNumber: "9000000001", CreatedAt: jan.Add(time.Hour)},
		{InvoiceID: "TA0002", ServiceCategory: 1, ServiceName: "ABHISHEKAM", PaymentMethod: sevadomain.PaymentMethodCash,
			Amount: decimal.NewFromInt(16), DevoteeName: "Sita", CreatedAt: jan.Add(2 * time.Hour), PujaDetails: "family"},
		{InvoiceID: "RA0001", ServiceCategory: 8, ServiceName: "RUDRABHISHEKAM", PaymentMethod: sevadomain.PaymentMethodUPI,
			Amount: decimal.NewFromInt(2000), DevoteeName: "Lakshmi", CreatedAt: jan.Add(3 * time.Hour)},
	}
	return aggregate.NewEngine(catalog.Default()).Build(domain.Period{Year: 2024, Month: time.January}, records)
}

func open(t *testing.T, report domain.MonthlyReport) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, report))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis)
	require.NoError(t, err)
	return v
}

func TestWriteSheets(t *testing.T) {
	f := open(t, sampleReport())

	assert.Equal(t, []string{"Summary", "Abhishekam", "Rudrabhishekam", "Payment_Cash", "Payment_Upi"}, f.GetSheetList())
}

func TestWriteSummarySheet(t *testing.T) {
	f := open(t, sampleReport())

	assert.Equal(t, "Monthly Report: January 2024", cell(t, f, "Summary", "A1"))
	assert.Equal(t, "Total Services", cell(t, f, "Summary", "A2"))
	assert.Equal(t, "3", cell(t, f, "Summary", "A3"))
	assert.Equal(t, "2032", cell(t, f, "Summary", "B3"))
	assert.Equal(t, "3", cell(t, f, "Summary", "C3"))

	assert.Equal(t, "Service Type Breakdown:", cell(t, f, "Summary", "A5"))
	assert.Equal(t, "Service Type", cell(t, f, "Summary", "A6"))
	assert.Equal(t, "Rudrabhishekam", cell(t, f, "Summary", "A7"))
	assert.Equal(t, "2000", cell(t, f, "Summary", "C7"))
	assert.Equal(t, "Abhishekam", cell(t, f, "Summary", "A8"))
	assert.Equal(t, "2", cell(t, f, "Summary", "B8"))

	assert.Equal(t, "Payment Method Breakdown:", cell(t, f, "Summary", "A10"))
	assert.Equal(t, "Payment Method", cell(t, f, "Summary", "A11"))
	assert.Equal(t, "Upi", cell(t, f, "Summary", "A12"))
	assert.Equal(t, "Cash", cell(t, f, "Summary", "A13"))
	assert.Equal(t, "32", cell(t, f, "Summary", "C13"))
}

func TestWriteKeepsExactFractionalAmounts(t *testing.T) {
	records := []sevadomain.ServiceRecord{
		{InvoiceID: "TA0001", ServiceCategory: 1, ServiceName: "ABHISHEKAM", PaymentMethod: sevadomain.PaymentMethodCash,
			Amount: decimal.RequireFromString("10.1"), DevoteeName: "Ravi", CreatedAt: jan.Add(time.Hour)},
		{InvoiceID: "TA0002", ServiceCategory: 1, ServiceName: "ABHISHEKAM", PaymentMethod: sevadomain.PaymentMethodCash,
			Amount: decimal.RequireFromString("20.2"), DevoteeName: "Sita", CreatedAt: jan.Add(2 * time.Hour)},
	}
	report := aggregate.NewEngine(catalog.Default()).Build(domain.Period{Year: 2024, Month: time.January}, records)
	f := open(t, report)

	raw := func(sheet, axis string) string {
		v, err := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "30.3", raw("Summary", "B3"))
	assert.Equal(t, "30.3", raw("Summary", "C7"))
	assert.Equal(t, "10.1", raw("Abhishekam", "F2"))
	assert.Equal(t, "20.2", raw("Payment_Cash", "E3"))

	typ, err := f.GetCellType("Summary", "B3")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeInlineString, typ)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
}

func TestWriteCategoryAndPaymentSheets(t *testing.T) {
	f := open(t, sampleReport())

	rows, err := f.GetRows("Abhishekam")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Invoice Number", "Date", "Devotee Name", "Gothram", "Contact", "Amount", "Payment Method", "Puja Details"}, rows[0])
	require.GreaterOrEqual(t, len(rows[1]), 7)
	assert.Equal(t, []string{"TA0001", "2024-01-01 01:00:00", "Ravi", "Kashyapa", "9000000001", "16", "Cash"}, rows[1][:7])
	require.Len(t, rows[2], 8)
	assert.Equal(t, "family", rows[2][7])

	width, err := f.GetColWidth("Abhishekam", "H")
	require.NoError(t, err)
	assert.Equal(t, float64(30), width)

	rows, err = f.GetRows("Payment_Upi")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Invoice Number", "Date", "Service Type", "Devotee Name", "Amount", "Puja Details"}, rows[0])
	require.GreaterOrEqual(t, len(rows[1]), 5)
	assert.Equal(t, []string{"RA0001", "2024-01-01 03:00:00", "Rudrabhishekam", "Lakshmi", "2000"}, rows[1][:5])
}

func TestWriteEmptyReport(t *testing.T) {
	report := aggregate.NewEngine(catalog.Default()).Build(domain.Period{Year: 2024, Month: time.February}, nil)
	f := open(t, report)

	assert.Equal(t, []string{"Summary"}, f.GetSheetList())
	assert.Equal(t, "Monthly Report: February 2024", cell(t, f, "Summary", "A1"))
	assert.Equal(t, "0", cell(t, f, "Summary", "A3"))
	assert.Equal(t, "", cell(t, f, "Summary", "B3"))
	assert.Equal(t, "Payment Method Breakdown:", cell(t, f, "Summary", "A8"))
}

func TestWriteIsDeterministicInContent(t *testing.T) {
	first := open(t, sampleReport())
	second := open(t, sampleReport())

	for _, sheet := range first.GetSheetList() {
		a, err := first.GetRows(sheet)
		require.NoError(t, err)
		b, err := second.GetRows(sheet)
		require.NoError(t, err)
		assert.Equal(t, a, b, sheet)
	}
}

func TestSheetNames(t *testing.T) {
	assert.Equal(t, "Vishnusahasranamam With Post", CategorySheetName("Vishnusahasranamam With Post"))
	assert.Equal(t, "Saswatha Annadanam Allfestiv", CategorySheetName("Saswatha Annadanam Allfestivals"))
	assert.Equal(t, "Payment_Cash", PaymentSheetName("Cash"))
	assert.Equal(t, "Payment_A_B", PaymentSheetName("A/B"))

	b := &builder{used: map[string]struct{}{"summary": {}}}
	long := strings.Repeat("x", 28)
	assert.Equal(t, long, b.claim(long))
	second := b.claim(long)
	assert.Equal(t, strings.Repeat("x", 27)+" (2)", second)
	assert.LessOrEqual(t, len(second), 31)
	assert.Equal(t, "Summary (2)", b.claim("Summary"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteFailureIsReportGenerationError(t *testing.T) {
	err := Write(failingWriter{}, sampleReport())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrReportGeneration))
	assert.Contains(t, err.Error(), "disk full")
}
