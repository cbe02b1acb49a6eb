package invoice

import "context"

type InvoiceService interface {
	// ListForCompany lists the session company's invoices.
	ListForCompany(ctx context.Context) ([]InvoiceResponse, error)
	// DownloadPDF opens an invoice PDF of the session company. The caller closes Body.
	DownloadPDF(ctx context.Context, id string) (PDFDownload, error)
	Generate(ctx context.Context, req GenerateInvoiceRequest) (InvoiceResponse, error)
	UpdateStatus(ctx context.Context, req UpdateInvoiceStatusRequest) (InvoiceResponse, error)
	MarkOverdue(ctx context.Context) (int64, error)
}
