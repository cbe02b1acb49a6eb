package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderInvoice(t *testing.T) {
	r := NewMarotoRenderer("")
	issued := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	out, err := r.RenderInvoice(context.Background(), InvoiceDocument{
		Number:      "INV-202610-ACME",
		IssuedAt:    issued,
		DueAt:       issued.AddDate(0, 0, 30),
		Period:      "2026-10",
		CompanyName: "Acme",
		CompanyCode: "ACME",
		Lines: []InvoiceLine{{
			Description: "Gold",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("89.90"),
			Subtotal:    decimal.RequireFromString("179.80"),
		}},
		Total: decimal.RequireFromString("179.80"),
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderPass(t *testing.T) {
	r := NewMarotoRenderer("Wellpass")

	out, err := r.RenderPass(context.Background(), PassDocument{
		HolderName: "Ana Lima",
		TokenID:    "QR-01J00000000000000000000000",
		Token:      "header.payload.signature",
		ExpiresAt:  time.Now().Add(5 * time.Minute),
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
