package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/wellpass/wellpass-backend/internal/domain/invoice"
	"github.com/wellpass/wellpass-backend/internal/pkg/database"
	"github.com/wellpass/wellpass-backend/internal/pkg/ids"
)

const invoiceColumns = `id, company_id, number, period, issued_at, due_at, amount, status, pdf_path, created_at, updated_at`

type invoiceRepositoryImpl struct {
	db *database.DB
}

func NewInvoiceRepository(db *database.DB) invoice.InvoiceRepository {
	return &invoiceRepositoryImpl{db: db}
}

func scanInvoice(row pgx.Row) (invoice.Invoice, error) {
	var inv invoice.Invoice
	err := row.Scan(
		&inv.ID,
		&inv.CompanyID,
		&inv.Number,
		&inv.Period,
		&inv.Date,
		&inv.DueDate,
		&inv.Amount,
		&inv.Status,
		&inv.PDFPath,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	return inv, err
}

// Create implements invoice.InvoiceRepository.
func (r *invoiceRepositoryImpl) Create(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	q := GetQuerier(ctx, r.db)

	if inv.ID == "" {
		inv.ID = ids.NewUUID()
	}

	query := `
		INSERT INTO invoices (id, company_id, number, period, issued_at, due_at, amount, status, pdf_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + invoiceColumns

	created, err := scanInvoice(q.QueryRow(ctx, query,
		inv.ID,
		inv.CompanyID,
		inv.Number,
		inv.Period,
		inv.Date,
		inv.DueDate,
		inv.Amount,
		inv.Status,
		inv.PDFPath,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return invoice.Invoice{}, invoice.ErrInvoiceExists
		}
		return invoice.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	return created, nil
}

// GetByID implements invoice.InvoiceRepository.
func (r *invoiceRepositoryImpl) GetByID(ctx context.Context, id string) (invoice.Invoice, error) {
	q := GetQuerier(ctx, r.db)

	inv, err := scanInvoice(q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		return invoice.Invoice{}, notFound(err, invoice.ErrInvoiceNotFound)
	}
	return inv, nil
}

// ListByCompany implements invoice.InvoiceRepository.
func (r *invoiceRepositoryImpl) ListByCompany(ctx context.Context, companyID string) ([]invoice.Invoice, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE company_id = $1 ORDER BY issued_at DESC, number DESC`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]invoice.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// UpdateStatus implements invoice.InvoiceRepository.
func (r *invoiceRepositoryImpl) UpdateStatus(ctx context.Context, id string, status invoice.Status) (invoice.Invoice, error) {
	var result invoice.Invoice
	err := NewTransactor(r.db).WithinTransaction(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		current, err := scanInvoice(q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return notFound(err, invoice.ErrInvoiceNotFound)
		}
		if current.Status == status {
			result = current
			return nil
		}
		if !invoice.CanTransition(current.Status, status) {
			return invoice.ErrInvalidStatusTransition
		}

		result, err = scanInvoice(q.QueryRow(ctx,
			`UPDATE invoices SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING `+invoiceColumns,
			id, status,
		))
		return err
	})
	if err != nil {
		return invoice.Invoice{}, err
	}
	return result, nil
}

// MarkOverdue implements invoice.InvoiceRepository.
func (r *invoiceRepositoryImpl) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE invoices
		SET status = $1, updated_at = $3
		WHERE status = $2 AND due_at < $3`,
		invoice.StatusOverdue, invoice.StatusPending, now,
	)
	if err != nil {
		return 0, fmt.Errorf("mark overdue invoices: %w", err)
	}
	return tag.RowsAffected(), nil
}
