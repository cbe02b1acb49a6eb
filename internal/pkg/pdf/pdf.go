// Package pdf renders invoices and printable check-in passes with maroto.
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

var (
	colorPrimary = &props.Color{Red: 20, Green: 110, Blue: 90}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// InvoiceLine is one billed plan with the number of employees on it.
type InvoiceLine struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

type InvoiceDocument struct {
	Number         string
	IssuedAt       time.Time
	DueAt          time.Time
	Period         string
	CompanyName    string
	CompanyCode    string
	BillingDetails string
	Lines          []InvoiceLine
	Total          decimal.Decimal
}

// PassDocument is a printable version of a live QR check-in token.
type PassDocument struct {
	HolderName  string
	CompanyName string
	PlanName    string
	TokenID     string
	Token       string
	ExpiresAt   time.Time
}

type Renderer interface {
	RenderInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error)
	RenderPass(ctx context.Context, doc PassDocument) ([]byte, error)
}

type MarotoRenderer struct {
	issuer string
}

func NewMarotoRenderer(issuer string) *MarotoRenderer {
	if issuer == "" {
		issuer = "Wellpass"
	}
	return &MarotoRenderer{issuer: issuer}
}

func (g *MarotoRenderer) RenderInvoice(_ context.Context, doc InvoiceDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Invoice "+doc.Number, true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(invoiceHeaderRow(g.issuer, doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(billToRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(doc.Lines)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(doc.Total))
	m.AddRows(row.New(10).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Payment due by %s.", doc.DueAt.Format("02 Jan 2006")), props.Text{
			Size: 8, Top: 4, Color: colorGray,
		}),
	)))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate invoice: %w", err)
	}
	return out.GetBytes(), nil
}

func (g *MarotoRenderer) RenderPass(_ context.Context, doc PassDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle("Check-in pass", true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(row.New(14).Add(col.New(12).Add(
		text.New(g.issuer+" check-in pass", props.Text{
			Style: fontstyle.Bold, Size: 15, Align: align.Center, Color: colorPrimary, Top: 2,
		}),
	)))
	m.AddRows(row.New(16).Add(col.New(12).Add(
		text.New(doc.HolderName, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Center, Top: 1}),
		text.New(nonEmpty(doc.CompanyName, "-")+"  |  "+nonEmpty(doc.PlanName, "No Plan"), props.Text{
			Size: 9, Align: align.Center, Top: 8, Color: colorGray,
		}),
	)))
	m.AddRows(row.New(90).Add(col.New(12).Add(
		code.NewQr(doc.Token, props.Rect{Percent: 95, Center: true}),
	)))
	m.AddRows(row.New(14).Add(col.New(12).Add(
		text.New(doc.TokenID, props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		text.New("Valid until "+doc.ExpiresAt.UTC().Format("15:04:05 MST, 02 Jan 2006"), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 7,
		}),
	)))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate pass: %w", err)
	}
	return out.GetBytes(), nil
}

func invoiceHeaderRow(issuer string, doc InvoiceDocument) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(issuer, props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
			text.New("Corporate wellness memberships", props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("INVOICE", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(doc.Number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6}),
			text.New("Issued: "+doc.IssuedAt.Format("02 Jan 2006"), props.Text{Size: 8, Align: align.Right, Top: 13, Color: colorGray}),
		),
	)
}

func billToRow(doc InvoiceDocument) core.Row {
	return row.New(18).Add(
		col.New(8).Add(
			text.New("BILL TO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(doc.CompanyName+" ("+doc.CompanyCode+")", props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(nonEmpty(doc.BillingDetails, "-"), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("PERIOD", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(doc.Period, props.Text{Size: 10, Align: align.Right, Top: 6}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Plan", 6, align.Left),
		h("Employees", 2, align.Center),
		h("Monthly price", 2, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

func tableRows(lines []InvoiceLine) []core.Row {
	if len(lines) == 0 {
		return []core.Row{row.New(8).Add(col.New(12).Add(
			text.New("No active memberships in this period.", props.Text{Size: 8, Top: 2, Color: colorGray}),
		))}
	}
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(7).Add(
			col.New(6).Add(text.New(l.Description, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(fmt.Sprintf("%d", l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(l.UnitPrice.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(l.Subtotal.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func totalRow(total decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(8),
		col.New(2).Add(text.New("TOTAL", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2,
		})),
		col.New(2).Add(text.New(total.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2,
		})),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
