package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/sevadesk/internal/catalog"
	appconfig "github.com/smallbiznis/sevadesk/internal/config"
	sevadomain "github.com/smallbiznis/sevadesk/internal/seva/domain"
)

const slipDateLayout = "02 Jan 2006"

// Slip is what gets printed for the devotee after a service is issued.
type Slip struct {
	TempleName    string
	Title         string
	InvoiceID     string
	ServiceName   string
	Frequency     string
	Amount        string
	PaymentMethod string
	IssuedOn      string
	ValidTill     string
	DevoteeName   string
	Gothram       string
	PujaDetails   string
	AddressLines  []string
}

// NewSlip maps a stored record onto the printed layout.
func NewSlip(templeName string, r sevadomain.ServiceRecord) Slip {
	title := "Token"
	if r.InvoiceKind == sevadomain.InvoiceKindReceipt {
		title = "Receipt"
	}
	return Slip{
		TempleName:    templeName,
		Title:         title,
		InvoiceID:     r.InvoiceID,
		ServiceName:   r.DisplayName(),
		Frequency:     catalog.DisplayName(string(r.Frequency)),
		Amount:        r.Amount.StringFixed(2),
		PaymentMethod: r.PaymentMethod.DisplayName(),
		IssuedOn:      r.CreatedAt.UTC().Format(slipDateLayout),
		ValidTill:     r.ValidUntil.UTC().Format(slipDateLayout),
		DevoteeName:   r.DevoteeName,
		Gothram:       r.Gothram,
		PujaDetails:   r.PujaDetails,
		AddressLines:  addressLines(r.Address),
	}
}

func addressLines(a sevadomain.Address) []string {
	if a.Address1 == "" {
		return nil
	}
	lines := []string{}
	for _, l := range []string{a.Address1, a.Address2, a.Address3, a.Address4} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	var place []string
	for _, p := range []string{a.City, a.District, a.State} {
		if p != "" {
			place = append(place, p)
		}
	}
	last := strings.Join(place, ", ")
	if a.Pincode != "" {
		last = strings.TrimSpace(last + " " + a.Pincode)
	}
	if last != "" {
		lines = append(lines, last)
	}
	return lines
}

type PDFProvider struct {
	templeName string
}

func New(cfg appconfig.Config) Provider {
	return &PDFProvider{templeName: cfg.TempleName}
}

func (p *PDFProvider) GenerateSlip(ctx context.Context, slip Slip) (io.Reader, error) {
	if strings.TrimSpace(slip.InvoiceID) == "" {
		return nil, fmt.Errorf("slip without invoice id")
	}
	if slip.TempleName == "" {
		slip.TempleName = p.templeName
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, slip.TempleName, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	m.AddRow(10,
		text.NewCol(12, slip.Title, props.Text{
			Size:  13,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	m.AddRow(2, line.NewCol(12))

	m.AddRow(16,
		col.New(6).Add(
			text.New("No: "+slip.InvoiceID, props.Text{Style: fontstyle.Bold}),
			text.New("Issued: "+slip.IssuedOn, props.Text{Top: 5}),
			text.New("Valid till: "+slip.ValidTill, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New(slip.ServiceName, props.Text{Style: fontstyle.Bold, Align: align.Right}),
			text.New(slip.Frequency, props.Text{Top: 5, Align: align.Right}),
			text.New("Paid by "+slip.PaymentMethod, props.Text{Top: 10, Align: align.Right}),
		),
	)

	m.AddRow(8,
		text.NewCol(4, "Devotee", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(8, slip.DevoteeName, props.Text{Size: 9}),
	)
	if slip.Gothram != "" {
		m.AddRow(8,
			text.NewCol(4, "Gothram", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.NewCol(8, slip.Gothram, props.Text{Size: 9}),
		)
	}
	if slip.PujaDetails != "" {
		m.AddRow(12,
			text.NewCol(4, "Puja details", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.NewCol(8, slip.PujaDetails, props.Text{Size: 9}),
		)
	}
	for i, l := range slip.AddressLines {
		label := ""
		if i == 0 {
			label = "Address"
		}
		m.AddRow(6,
			text.NewCol(4, label, props.Text{Style: fontstyle.Bold, Size: 9}),
			text.NewCol(8, l, props.Text{Size: 9}),
		)
	}

	m.AddRow(2, line.NewCol(12))
	m.AddRow(12,
		col.New(8),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 11, Top: 3}),
		text.NewCol(2, slip.Amount, props.Text{Style: fontstyle.Bold, Size: 11, Top: 3, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
