package employee

import (
	"strings"
	"time"

	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/pkg/validator"
)

// NoPlanLabel is reported in usage rows for employees without a plan.
const NoPlanLabel = "No Plan"

const (
	DefaultUsageRangeDays = 30
	MaxUsageRangeDays     = 366
)

type EmployeeResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Status    string  `json:"status"`
	PlanID    *string `json:"plan_id,omitempty"`
	PlanName  string  `json:"plan_name"`
	CreatedAt string  `json:"created_at"`
}

func NewEmployeeResponse(u user.User, planName string) EmployeeResponse {
	return EmployeeResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Status:    string(u.Status),
		PlanID:    u.PlanID,
		PlanName:  planName,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

type InviteEmployeeRequest struct {
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	PlanID *string `json:"plan_id,omitempty"`
}

func (r *InviteEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}
	if r.PlanID != nil && validator.IsEmpty(*r.PlanID) {
		errs.Add("plan_id", "plan_id must not be empty")
	}

	return errs.Err()
}

type AssignPlanRequest struct {
	EmployeeID string `json:"-"`
	PlanID     string `json:"plan_id"`
}

func (r *AssignPlanRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if validator.IsEmpty(r.PlanID) {
		errs.Add("plan_id", "plan_id is required")
	}
	return errs.Err()
}

// UsageRow is one employee's activity in the requested range.
type UsageRow struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	CheckIns     int     `json:"check_ins"`
	LastCheckIn  *string `json:"last_check_in"`
	Plan         string  `json:"plan"`
}
