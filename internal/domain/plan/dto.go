package plan

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/pkg/validator"
)

type PlanResponse struct {
	ID                 string          `json:"id"`
	Tier               string          `json:"tier"`
	Name               string          `json:"name"`
	MonthlyPrice       decimal.Decimal `json:"monthly_price"`
	CheckInsPerMonth   int             `json:"check_ins_per_month"`
	IncludedCategories []string        `json:"included_categories"`
	Description        string          `json:"description"`
	Notes              *string         `json:"notes,omitempty"`
	Version            int             `json:"version"`
	UpdatedAt          string          `json:"updated_at"`
}

func NewPlanResponse(p Plan) PlanResponse {
	categories := make([]string, 0, len(p.IncludedCategories))
	for _, c := range p.IncludedCategories {
		categories = append(categories, string(c))
	}
	return PlanResponse{
		ID:                 p.ID,
		Tier:               string(p.Tier),
		Name:               p.Name,
		MonthlyPrice:       p.MonthlyPrice,
		CheckInsPerMonth:   p.CheckInsPerMonth,
		IncludedCategories: categories,
		Description:        p.Description,
		Notes:              p.Notes,
		Version:            p.Version,
		UpdatedAt:          p.UpdatedAt.Format(time.RFC3339),
	}
}

type CreatePlanRequest struct {
	Tier               string          `json:"tier"`
	Name               string          `json:"name"`
	MonthlyPrice       decimal.Decimal `json:"monthly_price"`
	CheckInsPerMonth   int             `json:"check_ins_per_month"`
	IncludedCategories []string        `json:"included_categories"`
	Description        string          `json:"description"`
	Notes              *string         `json:"notes,omitempty"`
}

func (r *CreatePlanRequest) Validate() error {
	var errs validator.ValidationErrors

	if !Tier(r.Tier).Valid() {
		errs.Add("tier", "tier must be one of bronze, silver, gold, club_plus, digital")
	}
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if r.MonthlyPrice.IsNegative() {
		errs.Add("monthly_price", "monthly_price must not be negative")
	}
	if r.CheckInsPerMonth < 0 {
		errs.Add("check_ins_per_month", "check_ins_per_month must not be negative")
	}
	validateCategories(&errs, r.IncludedCategories)

	return errs.Err()
}

type UpdatePlanRequest struct {
	ID                 string           `json:"-"`
	Tier               *string          `json:"tier,omitempty"`
	Name               *string          `json:"name,omitempty"`
	MonthlyPrice       *decimal.Decimal `json:"monthly_price,omitempty"`
	CheckInsPerMonth   *int             `json:"check_ins_per_month,omitempty"`
	IncludedCategories []string         `json:"included_categories,omitempty"`
	Description        *string          `json:"description,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
	Version            int              `json:"version"`
}

func (r *UpdatePlanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.Tier != nil && !Tier(*r.Tier).Valid() {
		errs.Add("tier", "tier must be one of bronze, silver, gold, club_plus, digital")
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.MonthlyPrice != nil && r.MonthlyPrice.IsNegative() {
		errs.Add("monthly_price", "monthly_price must not be negative")
	}
	if r.CheckInsPerMonth != nil && *r.CheckInsPerMonth < 0 {
		errs.Add("check_ins_per_month", "check_ins_per_month must not be negative")
	}
	validateCategories(&errs, r.IncludedCategories)
	if r.Version < 1 {
		errs.Add("version", "version is required")
	}

	return errs.Err()
}

// ParseCategories converts validated category names to partner types.
func ParseCategories(categories []string) []partner.Type {
	out := make([]partner.Type, 0, len(categories))
	for _, c := range categories {
		out = append(out, partner.Type(c))
	}
	return out
}

func validateCategories(errs *validator.ValidationErrors, categories []string) {
	for _, c := range categories {
		if !partner.Type(c).Valid() {
			errs.Add("included_categories", "unknown category "+c)
			return
		}
	}
}
