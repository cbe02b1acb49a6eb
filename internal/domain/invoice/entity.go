package invoice

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// PaymentTerm is the time between issue and due date.
const PaymentTerm = 30 * 24 * time.Hour

func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusPaid || to == StatusOverdue
	case StatusOverdue:
		return to == StatusPaid
	}
	return false
}

type Invoice struct {
	ID        string
	CompanyID string
	Number    string
	// Period is the billed month in YYYY-MM form.
	Period    string
	Date      time.Time
	DueDate   time.Time
	Amount    decimal.Decimal
	Status    Status
	PDFPath   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Number formats an invoice number such as INV-202610-ACME.
func Number(period time.Time, companyCode string) string {
	return fmt.Sprintf("INV-%s-%s", period.Format("200601"), companyCode)
}
