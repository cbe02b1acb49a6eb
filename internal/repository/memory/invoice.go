package memory

import (
	"context"
	"sort"
	"time"

	"github.com/wellpass/wellpass-backend/internal/domain/invoice"
	"github.com/wellpass/wellpass-backend/internal/pkg/ids"
)

type invoiceRepository struct {
	s *Store
}

func NewInvoiceRepository(s *Store) invoice.InvoiceRepository {
	return &invoiceRepository{s: s}
}

func copyInvoice(inv invoice.Invoice) invoice.Invoice {
	inv.PDFPath = cloneString(inv.PDFPath)
	return inv
}

func (r *invoiceRepository) Create(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.invoices {
		if existing.Number == inv.Number {
			return invoice.Invoice{}, invoice.ErrInvoiceExists
		}
	}
	if inv.ID == "" {
		inv.ID = ids.NewUUID()
	}
	now := r.s.now()
	inv.CreatedAt, inv.UpdatedAt = now, now

	r.s.invoices[inv.ID] = copyInvoice(inv)
	return copyInvoice(inv), nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id string) (invoice.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inv, ok := r.s.invoices[id]
	if !ok {
		return invoice.Invoice{}, invoice.ErrInvoiceNotFound
	}
	return copyInvoice(inv), nil
}

func (r *invoiceRepository) ListByCompany(ctx context.Context, companyID string) ([]invoice.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]invoice.Invoice, 0)
	for _, inv := range r.s.invoices {
		if inv.CompanyID == companyID {
			out = append(out, copyInvoice(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Number > out[j].Number
	})
	return out, nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id string, status invoice.Status) (invoice.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.invoices[id]
	if !ok {
		return invoice.Invoice{}, invoice.ErrInvoiceNotFound
	}
	if inv.Status == status {
		return copyInvoice(inv), nil
	}
	if !invoice.CanTransition(inv.Status, status) {
		return invoice.Invoice{}, invoice.ErrInvalidStatusTransition
	}
	inv.Status = status
	inv.UpdatedAt = r.s.now()
	r.s.invoices[id] = inv
	return copyInvoice(inv), nil
}

func (r *invoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, inv := range r.s.invoices {
		if inv.Status == invoice.StatusPending && inv.DueDate.Before(now) {
			inv.Status = invoice.StatusOverdue
			inv.UpdatedAt = now
			r.s.invoices[id] = inv
			n++
		}
	}
	return n, nil
}
