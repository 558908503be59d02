package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/sevadesk/internal/catalog"
	"github.com/smallbiznis/sevadesk/internal/invoicenumber"
	"github.com/smallbiznis/sevadesk/internal/pricing"
	"gorm.io/datatypes"
)

type InvoiceKind = invoicenumber.Kind

const (
	InvoiceKindToken   = invoicenumber.KindToken
	InvoiceKindReceipt = invoicenumber.KindReceipt
)

type Frequency = pricing.Frequency

const (
	FrequencySingle  = pricing.FrequencySingle
	FrequencyWeekly  = pricing.FrequencyWeekly
	FrequencyMonthly = pricing.FrequencyMonthly
)

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "CARD"
	PaymentMethodCash PaymentMethod = "CASH"
	PaymentMethodUPI  PaymentMethod = "UPI"
)

// PaymentMethods lists every method in name order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentMethodCard, PaymentMethodCash, PaymentMethodUPI}
}

func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	method := PaymentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	switch method {
	case PaymentMethodCard, PaymentMethodCash, PaymentMethodUPI:
		return method, true
	default:
		return "", false
	}
}

// DisplayName renders the method the way printed slips and reports show it (Cash, Upi, Card).
func (m PaymentMethod) DisplayName() string {
	return catalog.DisplayName(string(m))
}

// Address is optional. When present address1 is mandatory.
type Address struct {
	Address1 string `gorm:"column:address1;size:100" json:"address1"`
	Address2 string `gorm:"column:address2;size:100" json:"address2"`
	Address3 string `gorm:"column:address3;size:100" json:"address3"`
	Address4 string `gorm:"column:address4;size:100" json:"address4"`
	City     string `gorm:"column:city;size:50" json:"city"`
	District string `gorm:"column:district;size:50" json:"district"`
	State    string `gorm:"column:state;size:50" json:"state"`
	Pincode  string `gorm:"column:pincode;size:10" json:"pincode"`
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// ServiceRecord is one issued seva. Rows are insert-only.
type ServiceRecord struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	ServiceCategory catalog.Category  `gorm:"not null;index" json:"service_category"`
	ServiceName     string            `gorm:"size:100;not null" json:"service_name"`
	InvoiceKind     InvoiceKind       `gorm:"size:10;not null" json:"invoice_kind"`
	InvoiceID       string            `gorm:"size:10;not null;uniqueIndex" json:"invoice_id"`
	Frequency       Frequency         `gorm:"size:10;not null" json:"frequency"`
	ValidUntil      time.Time         `gorm:"not null" json:"valid_until"`
	DevoteeName     string            `gorm:"size:100" json:"devotee_name"`
	ContactNumber   string            `gorm:"size:15" json:"contact_number"`
	Gothram         string            `gorm:"size:50" json:"gothram"`
	PujaDetails     string            `gorm:"type:text" json:"puja_details,omitempty"`
	Address         Address           `gorm:"embedded" json:"address"`
	PaymentMethod   PaymentMethod     `gorm:"size:10;not null" json:"payment_method"`
	Amount          decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Metadata        datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;index" json:"created_at"`
}

func (ServiceRecord) TableName() string {
	return "service_records"
}

// DisplayName is the catalog label of the record's category.
func (r ServiceRecord) DisplayName() string {
	return catalog.DisplayName(r.ServiceName)
}
