package user

import (
	"time"

	"github.com/wellpass/wellpass-backend/internal/pkg/validator"
)

type UserResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	CompanyID     *string `json:"company_id,omitempty"`
	PlanID        *string `json:"plan_id,omitempty"`
	Status        string  `json:"status"`
	OAuthProvider *string `json:"oauth_provider,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		CompanyID:     u.CompanyID,
		PlanID:        u.PlanID,
		Status:        string(u.Status),
		OAuthProvider: u.OAuthProvider,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     u.UpdatedAt.Format(time.RFC3339),
	}
}

// ProfileResponse is the current user together with the names the client displays.
type ProfileResponse struct {
	UserResponse
	CompanyName *string      `json:"company_name,omitempty"`
	Plan        *ProfilePlan `json:"plan,omitempty"`
}

type ProfilePlan struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Tier             string `json:"tier"`
	CheckInsPerMonth int    `json:"check_ins_per_month"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 120 {
		errs.Add("name", "name must not exceed 120 characters")
	}

	return errs.Err()
}
