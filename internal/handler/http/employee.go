package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wellpass/wellpass-backend/internal/domain/employee"
	"github.com/wellpass/wellpass-backend/internal/handler/http/response"
)

// EmployeeHandler serves the company admin's view of their own employees.
type EmployeeHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Invite(w http.ResponseWriter, r *http.Request)
	AssignPlan(w http.ResponseWriter, r *http.Request)
	Deactivate(w http.ResponseWriter, r *http.Request)
	Usage(w http.ResponseWriter, r *http.Request)
}

type EmployeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &EmployeeHandlerImpl{
		employeeService: employeeService,
	}
}

// List implements EmployeeHandler.
func (h *EmployeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeService.ListEmployees(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, employees, &response.Meta{TotalItems: int64(len(employees))})
}

// Invite implements EmployeeHandler.
func (h *EmployeeHandlerImpl) Invite(w http.ResponseWriter, r *http.Request) {
	var req employee.InviteEmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	invited, err := h.employeeService.InviteEmployee(r.Context(), req)
	if err != nil {
		slog.Error("Failed to invite employee", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Invitation sent", invited)
}

// AssignPlan implements EmployeeHandler.
func (h *EmployeeHandlerImpl) AssignPlan(w http.ResponseWriter, r *http.Request) {
	var req employee.AssignPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.EmployeeID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.employeeService.AssignPlan(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Plan assigned", updated)
}

// Deactivate implements EmployeeHandler.
func (h *EmployeeHandlerImpl) Deactivate(w http.ResponseWriter, r *http.Request) {
	updated, err := h.employeeService.DeactivateEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee deactivated", updated)
}

// Usage implements EmployeeHandler.
func (h *EmployeeHandlerImpl) Usage(w http.ResponseWriter, r *http.Request) {
	rangeDays, ok := queryInt(r, "range_days", employee.DefaultUsageRangeDays)
	if !ok {
		response.ValidationError(w, map[string]string{"range_days": "range_days must be an integer"})
		return
	}

	rows, err := h.employeeService.GetCompanyUsage(r.Context(), rangeDays)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, rows, &response.Meta{TotalItems: int64(len(rows))})
}
