package invoice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/invoice"
	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/domain/session"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/pkg/ids"
	"github.com/wellpass/wellpass-backend/internal/pkg/pdf"
	"github.com/wellpass/wellpass-backend/internal/pkg/storage"
	"github.com/wellpass/wellpass-backend/internal/pkg/validator"
)

const pdfContentType = "application/pdf"

type InvoiceServiceImpl struct {
	invoice.InvoiceRepository
	companies company.CompanyRepository
	users     user.UserRepository
	plans     plan.PlanRepository
	renderer  pdf.Renderer
	storage   storage.FileStorage
	now       func() time.Time
}

func NewInvoiceService(
	invoiceRepository invoice.InvoiceRepository,
	companyRepository company.CompanyRepository,
	userRepository user.UserRepository,
	planRepository plan.PlanRepository,
	renderer pdf.Renderer,
	fileStorage storage.FileStorage,
) invoice.InvoiceService {
	return &InvoiceServiceImpl{
		InvoiceRepository: invoiceRepository,
		companies:         companyRepository,
		users:             userRepository,
		plans:             planRepository,
		renderer:          renderer,
		storage:           fileStorage,
		now:               time.Now,
	}
}

// ListForCompany implements invoice.InvoiceService.
func (s *InvoiceServiceImpl) ListForCompany(ctx context.Context) ([]invoice.InvoiceResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	companyID := sess.CompanyIDValue()
	if companyID == "" {
		return nil, session.ErrForbidden
	}

	invoices, err := s.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	out := make([]invoice.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, invoice.NewInvoiceResponse(inv))
	}
	return out, nil
}

// DownloadPDF implements invoice.InvoiceService. Company admins only see their own
// company's invoices; platform admins see all.
func (s *InvoiceServiceImpl) DownloadPDF(ctx context.Context, id string) (invoice.PDFDownload, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return invoice.PDFDownload{}, err
	}

	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return invoice.PDFDownload{}, err
	}
	if sess.Role != user.RolePlatformAdmin && sess.CompanyIDValue() != inv.CompanyID {
		return invoice.PDFDownload{}, invoice.ErrInvoiceNotFound
	}
	if inv.PDFPath == nil {
		return invoice.PDFDownload{}, invoice.ErrPDFNotAvailable
	}

	body, err := s.storage.Download(ctx, *inv.PDFPath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return invoice.PDFDownload{}, invoice.ErrPDFNotAvailable
		}
		return invoice.PDFDownload{}, fmt.Errorf("failed to open invoice pdf: %w", err)
	}
	return invoice.PDFDownload{
		Filename: inv.Number + ".pdf",
		Body:     body,
		ModTime:  inv.UpdatedAt,
	}, nil
}

// Generate implements invoice.InvoiceService.
func (s *InvoiceServiceImpl) Generate(ctx context.Context, req invoice.GenerateInvoiceRequest) (invoice.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return invoice.InvoiceResponse{}, err
	}

	now := s.now().UTC()
	period := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if req.Period != "" {
		period, _ = validator.IsValidPeriod(req.Period)
	}

	c, err := s.companies.GetByID(ctx, req.CompanyID)
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}

	number := invoice.Number(period, c.Code)
	if err := s.ensureNumberFree(ctx, c.ID, number); err != nil {
		return invoice.InvoiceResponse{}, err
	}

	lines, total, err := s.billableLines(ctx, c.ID)
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}

	inv := invoice.Invoice{
		ID:        ids.NewUUID(),
		CompanyID: c.ID,
		Number:    number,
		Period:    period.Format("2006-01"),
		Date:      now,
		DueDate:   now.Add(invoice.PaymentTerm),
		Amount:    total,
		Status:    invoice.StatusPending,
	}

	// The PDF is stored before the row is created, so an invoice never exists without one
	// and a failed attempt can simply be retried.
	key, err := s.storePDF(ctx, c, inv, lines)
	if err != nil {
		return invoice.InvoiceResponse{}, fmt.Errorf("failed to store invoice pdf: %w", err)
	}
	inv.PDFPath = &key

	created, err := s.Create(ctx, inv)
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			slog.Warn("failed to remove orphaned invoice pdf", "path", key, "error", delErr)
		}
		return invoice.InvoiceResponse{}, err
	}
	slog.Info("invoice generated", "invoice_id", created.ID, "number", created.Number, "amount", created.Amount.StringFixed(2))
	return invoice.NewInvoiceResponse(created), nil
}

func (s *InvoiceServiceImpl) ensureNumberFree(ctx context.Context, companyID, number string) error {
	existing, err := s.ListByCompany(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to list invoices: %w", err)
	}
	for _, inv := range existing {
		if inv.Number == number {
			return invoice.ErrInvoiceExists
		}
	}
	return nil
}

// billableLines groups the company's active employees with a plan by plan.
func (s *InvoiceServiceImpl) billableLines(ctx context.Context, companyID string) ([]pdf.InvoiceLine, decimal.Decimal, error) {
	users, err := s.users.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to list employees: %w", err)
	}

	seats := make(map[string]int)
	for _, u := range users {
		if u.Role == user.RoleEmployee && u.IsActive() && u.HasPlan() {
			seats[*u.PlanID]++
		}
	}

	lines := make([]pdf.InvoiceLine, 0, len(seats))
	total := decimal.Zero
	for planID, qty := range seats {
		p, err := s.plans.GetByID(ctx, planID)
		if err != nil {
			if errors.Is(err, plan.ErrPlanNotFound) {
				continue
			}
			return nil, decimal.Zero, err
		}
		subtotal := p.MonthlyPrice.Mul(decimal.NewFromInt(int64(qty)))
		lines = append(lines, pdf.InvoiceLine{
			Description: p.Name + " plan",
			Quantity:    qty,
			UnitPrice:   p.MonthlyPrice,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Description < lines[j].Description })
	return lines, total, nil
}

func (s *InvoiceServiceImpl) storePDF(ctx context.Context, c company.Company, inv invoice.Invoice, lines []pdf.InvoiceLine) (string, error) {
	billing := ""
	if c.BillingDetails != nil {
		billing = *c.BillingDetails
	}
	doc, err := s.renderer.RenderInvoice(ctx, pdf.InvoiceDocument{
		Number:         inv.Number,
		IssuedAt:       inv.Date,
		DueAt:          inv.DueDate,
		Period:         inv.Period,
		CompanyName:    c.Name,
		CompanyCode:    c.Code,
		BillingDetails: billing,
		Lines:          lines,
		Total:          inv.Amount,
	})
	if err != nil {
		return "", err
	}

	// Keyed by invoice ID so a losing concurrent attempt cannot overwrite the winner's file.
	return s.storage.Upload(ctx, bytes.NewReader(doc), path.Join("invoices", c.ID, inv.ID+".pdf"), pdfContentType)
}

// UpdateStatus implements invoice.InvoiceService.
// Subtle: this method shadows the method (InvoiceRepository).UpdateStatus of InvoiceServiceImpl.InvoiceRepository.
func (s *InvoiceServiceImpl) UpdateStatus(ctx context.Context, req invoice.UpdateInvoiceStatusRequest) (invoice.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return invoice.InvoiceResponse{}, err
	}

	updated, err := s.InvoiceRepository.UpdateStatus(ctx, req.ID, invoice.Status(req.Status))
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}
	slog.Info("invoice status updated", "invoice_id", updated.ID, "status", updated.Status)
	return invoice.NewInvoiceResponse(updated), nil
}

// MarkOverdue implements invoice.InvoiceService.
// Subtle: this method shadows the method (InvoiceRepository).MarkOverdue of InvoiceServiceImpl.InvoiceRepository.
func (s *InvoiceServiceImpl) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.InvoiceRepository.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue invoices: %w", err)
	}
	if n > 0 {
		slog.Info("invoices marked overdue", "count", n)
	}
	return n, nil
}
