package invoice

import (
	"context"
	"time"
)

type InvoiceRepository interface {
	// Create fails with ErrInvoiceExists when the number is taken.
	Create(ctx context.Context, inv Invoice) (Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	// ListByCompany returns the company's invoices, newest first.
	ListByCompany(ctx context.Context, companyID string) ([]Invoice, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Invoice, error)
	// MarkOverdue flags pending invoices due before now.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}
