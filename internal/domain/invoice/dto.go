package invoice

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wellpass/wellpass-backend/internal/pkg/validator"
)

type InvoiceResponse struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Period        string          `json:"period"`
	Date          string          `json:"date"`
	DueDate       string          `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	HasPDF        bool            `json:"has_pdf"`
}

func NewInvoiceResponse(inv Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		CompanyID:     inv.CompanyID,
		InvoiceNumber: inv.Number,
		Period:        inv.Period,
		Date:          inv.Date.Format("2006-01-02"),
		DueDate:       inv.DueDate.Format("2006-01-02"),
		Amount:        inv.Amount,
		Status:        string(inv.Status),
		HasPDF:        inv.PDFPath != nil,
	}
}

type GenerateInvoiceRequest struct {
	CompanyID string `json:"company_id"`
	// Period is YYYY-MM; empty means the current month.
	Period string `json:"period"`
}

func (r *GenerateInvoiceRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.CompanyID) {
		errs.Add("company_id", "company_id is required")
	}
	if r.Period != "" {
		if _, ok := validator.IsValidPeriod(r.Period); !ok {
			errs.Add("period", "period must be in YYYY-MM format")
		}
	}
	return errs.Err()
}

type UpdateInvoiceStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r *UpdateInvoiceStatusRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if !validator.IsInSlice(r.Status, []string{string(StatusPaid), string(StatusOverdue), string(StatusPending)}) {
		errs.Add("status", "status must be one of pending, paid, overdue")
	}
	return errs.Err()
}

// PDFDownload is an open invoice document.
type PDFDownload struct {
	Filename string
	Body     io.ReadCloser
	ModTime  time.Time
}
