package pdf

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/sevadesk/internal/config"
	sevadomain "github.com/smallbiznis/sevadesk/internal/seva/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() sevadomain.ServiceRecord {
	issued := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	return sevadomain.ServiceRecord{
		ServiceCategory: 7,
		ServiceName:     "ANNADANAM",
		InvoiceKind:     sevadomain.InvoiceKindReceipt,
		InvoiceID:       "RA0001",
		Frequency:       sevadomain.FrequencyWeekly,
		ValidUntil:      issued.AddDate(0, 0, 7),
		DevoteeName:     "Lakshmi",
		Gothram:         "Bharadwaja",
		PaymentMethod:   sevadomain.PaymentMethodUPI,
		Amount:          decimal.NewFromInt(7812),
		Address: sevadomain.Address{
			Address1: "12 Temple Street",
			City:     "Tirupati",
			State:    "Andhra Pradesh",
			Pincode:  "517501",
		},
		CreatedAt: issued,
	}
}

func TestNewSlip(t *testing.T) {
	slip := NewSlip("Sri Venkateswara Temple", sampleRecord())

	assert.Equal(t, "Receipt", slip.Title)
	assert.Equal(t, "RA0001", slip.InvoiceID)
	assert.Equal(t, "Annadanam", slip.ServiceName)
	assert.Equal(t, "Weekly", slip.Frequency)
	assert.Equal(t, "7812.00", slip.Amount)
	assert.Equal(t, "Upi", slip.PaymentMethod)
	assert.Equal(t, "15 Jan 2024", slip.IssuedOn)
	assert.Equal(t, "22 Jan 2024", slip.ValidTill)
	assert.Equal(t, []string{"12 Temple Street", "Tirupati, Andhra Pradesh 517501"}, slip.AddressLines)
}

func TestNewSlipWithoutAddress(t *testing.T) {
	record := sampleRecord()
	record.Address = sevadomain.Address{}
	record.InvoiceKind = sevadomain.InvoiceKindToken

	slip := NewSlip("", record)
	assert.Equal(t, "Token", slip.Title)
	assert.Nil(t, slip.AddressLines)
}

func TestGenerateSlip(t *testing.T) {
	provider := New(config.Config{TempleName: "Sri Venkateswara Temple"})

	r, err := provider.GenerateSlip(context.Background(), NewSlip("", sampleRecord()))
	require.NoError(t, err)
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(body[:4]))
}

func TestGenerateSlipRequiresInvoiceID(t *testing.T) {
	provider := New(config.Config{})

	_, err := provider.GenerateSlip(context.Background(), Slip{})
	assert.Error(t, err)
}
