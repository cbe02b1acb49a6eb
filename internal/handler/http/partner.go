package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/handler/http/response"
)

type PartnerHandler interface {
	// Directory
	ListApproved(w http.ResponseWriter, r *http.Request)
	GetApproved(w http.ResponseWriter, r *http.Request)

	// Platform admin
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	RotateTerminalKey(w http.ResponseWriter, r *http.Request)
}

type PartnerHandlerImpl struct {
	partnerService partner.PartnerService
}

func NewPartnerHandler(partnerService partner.PartnerService) PartnerHandler {
	return &PartnerHandlerImpl{
		partnerService: partnerService,
	}
}

// parseListQuery reads city, type, status, lat, lng and radius_km.
func parseListQuery(r *http.Request) (partner.ListPartnersQuery, map[string]string) {
	q := partner.ListPartnersQuery{
		City:   r.URL.Query().Get("city"),
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
	}
	invalid := map[string]string{}
	var ok bool
	if q.Lat, ok = queryFloat(r, "lat"); !ok {
		invalid["lat"] = "lat must be a number"
	}
	if q.Lng, ok = queryFloat(r, "lng"); !ok {
		invalid["lng"] = "lng must be a number"
	}
	if q.RadiusKm, ok = queryFloat(r, "radius_km"); !ok {
		invalid["radius_km"] = "radius_km must be a number"
	}
	if len(invalid) > 0 {
		return q, invalid
	}
	return q, nil
}

func (h *PartnerHandlerImpl) list(w http.ResponseWriter, r *http.Request, fn func(partner.ListPartnersQuery) ([]partner.PartnerResponse, error)) {
	q, invalid := parseListQuery(r)
	if invalid != nil {
		response.ValidationError(w, invalid)
		return
	}
	if err := q.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	partners, err := fn(q)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, partners, &response.Meta{TotalItems: int64(len(partners))})
}

// ListApproved implements PartnerHandler.
func (h *PartnerHandlerImpl) ListApproved(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(q partner.ListPartnersQuery) ([]partner.PartnerResponse, error) {
		return h.partnerService.ListApproved(r.Context(), q)
	})
}

// GetApproved implements PartnerHandler.
func (h *PartnerHandlerImpl) GetApproved(w http.ResponseWriter, r *http.Request) {
	found, err := h.partnerService.GetApproved(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

// List implements PartnerHandler.
func (h *PartnerHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(q partner.ListPartnersQuery) ([]partner.PartnerResponse, error) {
		return h.partnerService.List(r.Context(), q)
	})
}

// Create implements PartnerHandler.
func (h *PartnerHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req partner.CreatePartnerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.partnerService.Create(r.Context(), req)
	if err != nil {
		slog.Error("Failed to create partner", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Partner created successfully", created)
}

// Update implements PartnerHandler.
func (h *PartnerHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req partner.UpdatePartnerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.partnerService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Partner updated successfully", updated)
}

// Delete implements PartnerHandler.
func (h *PartnerHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.partnerService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Partner deleted successfully", nil)
}

// UpdateStatus implements PartnerHandler.
func (h *PartnerHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req partner.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.partnerService.UpdateStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Partner status updated", updated)
}

// RotateTerminalKey implements PartnerHandler. The key is only ever shown in this response.
func (h *PartnerHandlerImpl) RotateTerminalKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.partnerService.RotateTerminalKey(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	response.Created(w, "Terminal key generated", key)
}
