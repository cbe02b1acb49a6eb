// Package fixtures loads the demo data set into the repositories.
package fixtures

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// DataSet is the YAML shape of a seed file.
type DataSet struct {
	Plans     []PlanSeed    `yaml:"plans"`
	Partners  []PartnerSeed `yaml:"partners"`
	Companies []CompanySeed `yaml:"companies"`
	Users     []UserSeed    `yaml:"users"`
}

type PlanSeed struct {
	Tier               string          `yaml:"tier"`
	Name               string          `yaml:"name"`
	MonthlyPrice       decimal.Decimal `yaml:"monthly_price"`
	CheckInsPerMonth   int             `yaml:"check_ins_per_month"`
	IncludedCategories []string        `yaml:"included_categories"`
	Description        string          `yaml:"description"`
}

type PartnerSeed struct {
	Name      string  `yaml:"name"`
	Type      string  `yaml:"type"`
	City      string  `yaml:"city"`
	Address   string  `yaml:"address"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Rating    float64 `yaml:"rating"`
	OpenHours string  `yaml:"open_hours"`
	ImageURL  string  `yaml:"image_url"`
	Status    string  `yaml:"status"`
}

type CompanySeed struct {
	Name           string `yaml:"name"`
	Code           string `yaml:"code"`
	AdminEmail     string `yaml:"admin_email"`
	BillingDetails string `yaml:"billing_details"`
}

// UserSeed references its company by code and its plan by name.
type UserSeed struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Company  string `yaml:"company"`
	Plan     string `yaml:"plan"`
	Status   string `yaml:"status"`
	Password string `yaml:"password"`
}

// Demo returns the embedded demo data set.
func Demo() (DataSet, error) {
	return Parse(demoYAML)
}

// Parse decodes a seed file and checks its references.
func Parse(data []byte) (DataSet, error) {
	var ds DataSet
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return DataSet{}, fmt.Errorf("failed to parse seed data: %w", err)
	}
	if err := ds.validate(); err != nil {
		return DataSet{}, err
	}
	return ds, nil
}

func (ds DataSet) validate() error {
	plans := make(map[string]bool, len(ds.Plans))
	for _, p := range ds.Plans {
		if !plan.Tier(p.Tier).Valid() {
			return fmt.Errorf("plan %q: unknown tier %q", p.Name, p.Tier)
		}
		for _, c := range p.IncludedCategories {
			if !partner.Type(c).Valid() {
				return fmt.Errorf("plan %q: unknown category %q", p.Name, c)
			}
		}
		plans[p.Name] = true
	}
	for _, p := range ds.Partners {
		if !partner.Type(p.Type).Valid() {
			return fmt.Errorf("partner %q: unknown type %q", p.Name, p.Type)
		}
	}
	companies := make(map[string]bool, len(ds.Companies))
	for _, c := range ds.Companies {
		companies[c.Code] = true
	}
	for _, u := range ds.Users {
		if !user.Role(u.Role).Valid() {
			return fmt.Errorf("user %q: unknown role %q", u.Email, u.Role)
		}
		if u.Company != "" && !companies[u.Company] {
			return fmt.Errorf("user %q: unknown company %q", u.Email, u.Company)
		}
		if u.Plan != "" && !plans[u.Plan] {
			return fmt.Errorf("user %q: unknown plan %q", u.Email, u.Plan)
		}
	}
	return nil
}

// Repositories are the stores a data set is written to.
type Repositories struct {
	Users     user.UserRepository
	Companies company.CompanyRepository
	Plans     plan.PlanRepository
	Partners  partner.PartnerRepository
}

// SeededIDs holds the IDs of the seeded rows by their natural key.
type SeededIDs struct {
	PlanIDs    map[string]string // by name
	PartnerIDs map[string]string // by name
	CompanyIDs map[string]string // by code
	UserIDs    map[string]string // by email
}

func newSeededIDs() *SeededIDs {
	return &SeededIDs{
		PlanIDs:    make(map[string]string),
		PartnerIDs: make(map[string]string),
		CompanyIDs: make(map[string]string),
		UserIDs:    make(map[string]string),
	}
}

// Seed writes ds to repos. Rows whose natural key already exists are left alone, so
// seeding twice is harmless.
func Seed(ctx context.Context, repos Repositories, ds DataSet) (*SeededIDs, error) {
	ids := newSeededIDs()

	existingPlans, err := repos.Plans.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	for _, p := range existingPlans {
		ids.PlanIDs[p.Name] = p.ID
	}
	for _, p := range ds.Plans {
		if _, ok := ids.PlanIDs[p.Name]; ok {
			continue
		}
		created, err := repos.Plans.Create(ctx, plan.Plan{
			Tier:               plan.Tier(p.Tier),
			Name:               p.Name,
			MonthlyPrice:       p.MonthlyPrice,
			CheckInsPerMonth:   p.CheckInsPerMonth,
			IncludedCategories: plan.ParseCategories(p.IncludedCategories),
			Description:        p.Description,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed plan %q: %w", p.Name, err)
		}
		ids.PlanIDs[p.Name] = created.ID
	}

	existingPartners, err := repos.Partners.List(ctx, partner.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	for _, p := range existingPartners {
		ids.PartnerIDs[p.Name] = p.ID
	}
	for _, p := range ds.Partners {
		if _, ok := ids.PartnerIDs[p.Name]; ok {
			continue
		}
		status := partner.Status(p.Status)
		if status == "" {
			status = partner.StatusApproved
		}
		created, err := repos.Partners.Create(ctx, partner.Partner{
			Name:      p.Name,
			Type:      partner.Type(p.Type),
			City:      p.City,
			Address:   p.Address,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Rating:    p.Rating,
			OpenHours: strPtr(p.OpenHours),
			ImageURL:  strPtr(p.ImageURL),
			Status:    status,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed partner %q: %w", p.Name, err)
		}
		ids.PartnerIDs[p.Name] = created.ID
	}

	for _, c := range ds.Companies {
		existing, err := repos.Companies.GetByCode(ctx, c.Code)
		if err == nil {
			ids.CompanyIDs[c.Code] = existing.ID
			continue
		}
		if !errors.Is(err, company.ErrCompanyNotFound) {
			return nil, fmt.Errorf("failed to look up company %q: %w", c.Code, err)
		}
		created, err := repos.Companies.Create(ctx, company.Company{
			Name:           c.Name,
			Code:           c.Code,
			AdminEmail:     c.AdminEmail,
			BillingDetails: strPtr(c.BillingDetails),
			Status:         company.StatusActive,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed company %q: %w", c.Code, err)
		}
		ids.CompanyIDs[c.Code] = created.ID
	}

	for _, u := range ds.Users {
		existing, err := repos.Users.GetByEmail(ctx, u.Email)
		if err == nil {
			ids.UserIDs[u.Email] = existing.ID
			continue
		}
		if !errors.Is(err, user.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user %q: %w", u.Email, err)
		}

		newUser := user.User{
			Email:  u.Email,
			Name:   u.Name,
			Role:   user.Role(u.Role),
			Status: user.Status(u.Status),
		}
		if newUser.Status == "" {
			newUser.Status = user.StatusActive
		}
		if u.Company != "" {
			companyID := ids.CompanyIDs[u.Company]
			newUser.CompanyID = &companyID
		}
		if u.Plan != "" {
			planID := ids.PlanIDs[u.Plan]
			newUser.PlanID = &planID
		}
		if u.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password of %q: %w", u.Email, err)
			}
			h := string(hash)
			newUser.PasswordHash = &h
		}

		created, err := repos.Users.Create(ctx, newUser)
		if err != nil {
			return nil, fmt.Errorf("failed to seed user %q: %w", u.Email, err)
		}
		ids.UserIDs[u.Email] = created.ID
	}

	slog.Info("demo data seeded",
		"plans", len(ids.PlanIDs),
		"partners", len(ids.PartnerIDs),
		"companies", len(ids.CompanyIDs),
		"users", len(ids.UserIDs),
	)
	return ids, nil
}
