package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wellpass/wellpass-backend/internal/domain/invoice"
	"github.com/wellpass/wellpass-backend/internal/handler/http/response"
)

type InvoiceHandler interface {
	ListForCompany(w http.ResponseWriter, r *http.Request)
	DownloadPDF(w http.ResponseWriter, r *http.Request)
	Generate(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
}

type InvoiceHandlerImpl struct {
	invoiceService invoice.InvoiceService
}

func NewInvoiceHandler(invoiceService invoice.InvoiceService) InvoiceHandler {
	return &InvoiceHandlerImpl{
		invoiceService: invoiceService,
	}
}

// ListForCompany implements InvoiceHandler.
func (h *InvoiceHandlerImpl) ListForCompany(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoiceService.ListForCompany(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, invoices, &response.Meta{TotalItems: int64(len(invoices))})
}

// DownloadPDF implements InvoiceHandler.
func (h *InvoiceHandlerImpl) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	dl, err := h.invoiceService.DownloadPDF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer dl.Body.Close()
	response.PDF(w, dl.Filename, dl.ModTime, dl.Body)
}

// Generate implements InvoiceHandler.
func (h *InvoiceHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req invoice.GenerateInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	generated, err := h.invoiceService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Invoice generated", generated)
}

// UpdateStatus implements InvoiceHandler.
func (h *InvoiceHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req invoice.UpdateInvoiceStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.invoiceService.UpdateStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Invoice status updated", updated)
}
