package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/handler/http/response"
)

type PlanHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type PlanHandlerImpl struct {
	planService plan.PlanService
}

func NewPlanHandler(planService plan.PlanService) PlanHandler {
	return &PlanHandlerImpl{
		planService: planService,
	}
}

// List implements PlanHandler.
func (h *PlanHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.planService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, plans, &response.Meta{TotalItems: int64(len(plans))})
}

// GetByID implements PlanHandler.
func (h *PlanHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	found, err := h.planService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

// Create implements PlanHandler.
func (h *PlanHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req plan.CreatePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.planService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Plan created successfully", created)
}

// Update implements PlanHandler.
func (h *PlanHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req plan.UpdatePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.planService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Plan updated successfully", updated)
}

// Delete implements PlanHandler.
func (h *PlanHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.planService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Plan deleted successfully", nil)
}
