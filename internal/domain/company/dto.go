package company

import (
	"strings"
	"time"

	"github.com/wellpass/wellpass-backend/internal/pkg/validator"
)

type CompanyResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Code           string  `json:"code"`
	AdminEmail     string  `json:"admin_email"`
	BillingDetails *string `json:"billing_details,omitempty"`
	Status         string  `json:"status"`
	EmployeeCount  int64   `json:"employee_count"`
	Version        int     `json:"version"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func NewCompanyResponse(c Company, employeeCount int64) CompanyResponse {
	return CompanyResponse{
		ID:             c.ID,
		Name:           c.Name,
		Code:           c.Code,
		AdminEmail:     c.AdminEmail,
		BillingDetails: c.BillingDetails,
		Status:         string(c.Status),
		EmployeeCount:  employeeCount,
		Version:        c.Version,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      c.UpdatedAt.Format(time.RFC3339),
	}
}

type CreateCompanyRequest struct {
	Name           string  `json:"name"`
	Code           string  `json:"code"`
	AdminEmail     string  `json:"admin_email"`
	BillingDetails *string `json:"billing_details,omitempty"`
}

func (r *CreateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	r.AdminEmail = strings.ToLower(strings.TrimSpace(r.AdminEmail))

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}
	if !validator.IsValidCompanyCode(r.Code) {
		errs.Add("code", "code must be 3-20 characters of A-Z, 0-9 or -")
	}
	if !validator.IsValidEmail(r.AdminEmail) {
		errs.Add("admin_email", "admin_email must be a valid email address")
	}

	return errs.Err()
}

// UpdateCompanyRequest changes the given fields when Version matches the stored one.
type UpdateCompanyRequest struct {
	ID             string  `json:"-"`
	Name           *string `json:"name,omitempty"`
	AdminEmail     *string `json:"admin_email,omitempty"`
	BillingDetails *string `json:"billing_details,omitempty"`
	Status         *string `json:"status,omitempty"`
	Version        int     `json:"version"`
}

func (r *UpdateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.AdminEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*r.AdminEmail))
		r.AdminEmail = &email
		if !validator.IsValidEmail(email) {
			errs.Add("admin_email", "admin_email must be a valid email address")
		}
	}
	if r.Status != nil && !validator.IsInSlice(*r.Status, []string{string(StatusActive), string(StatusInactive)}) {
		errs.Add("status", "status must be active or inactive")
	}
	if r.Version < 1 {
		errs.Add("version", "version is required")
	}

	return errs.Err()
}
