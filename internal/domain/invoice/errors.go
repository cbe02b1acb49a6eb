package invoice

import "errors"

var (
	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrInvoiceExists           = errors.New("invoice already generated for this period")
	ErrInvalidStatusTransition = errors.New("invalid invoice status transition")
	ErrPDFNotAvailable         = errors.New("invoice PDF is not available")
)
