package company

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/pkg/database"
)

type CompanyServiceImpl struct {
	db database.Transactor
	company.CompanyRepository
	users user.UserRepository
}

func NewCompanyService(db database.Transactor, companyRepository company.CompanyRepository, userRepository user.UserRepository) company.CompanyService {
	return &CompanyServiceImpl{
		db:                db,
		CompanyRepository: companyRepository,
		users:             userRepository,
	}
}

func (c *CompanyServiceImpl) response(ctx context.Context, co company.Company) (company.CompanyResponse, error) {
	count, err := c.users.CountByCompany(ctx, co.ID)
	if err != nil {
		return company.CompanyResponse{}, fmt.Errorf("failed to count employees: %w", err)
	}
	return company.NewCompanyResponse(co, count), nil
}

// List implements company.CompanyService.
func (c *CompanyServiceImpl) List(ctx context.Context) ([]company.CompanyResponse, error) {
	companies, err := c.CompanyRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	out := make([]company.CompanyResponse, 0, len(companies))
	for _, co := range companies {
		resp, err := c.response(ctx, co)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// Get implements company.CompanyService.
func (c *CompanyServiceImpl) Get(ctx context.Context, id string) (company.CompanyResponse, error) {
	co, err := c.GetByID(ctx, id)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	return c.response(ctx, co)
}

// Create implements company.CompanyService.
// Subtle: this method shadows the method (CompanyRepository).Create of CompanyServiceImpl.CompanyRepository.
func (c *CompanyServiceImpl) Create(ctx context.Context, req company.CreateCompanyRequest) (company.CompanyResponse, error) {
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	created, err := c.CompanyRepository.Create(ctx, company.Company{
		Name:           strings.TrimSpace(req.Name),
		Code:           req.Code,
		AdminEmail:     req.AdminEmail,
		BillingDetails: req.BillingDetails,
		Status:         company.StatusActive,
	})
	if err != nil {
		return company.CompanyResponse{}, err
	}

	slog.Info("company created", "company_id", created.ID, "code", created.Code)
	return company.NewCompanyResponse(created, 0), nil
}

// Update implements company.CompanyService.
// Subtle: this method shadows the method (CompanyRepository).Update of CompanyServiceImpl.CompanyRepository.
func (c *CompanyServiceImpl) Update(ctx context.Context, req company.UpdateCompanyRequest) (company.CompanyResponse, error) {
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	co, err := c.GetByID(ctx, req.ID)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	if req.Name != nil {
		co.Name = strings.TrimSpace(*req.Name)
	}
	if req.AdminEmail != nil {
		co.AdminEmail = *req.AdminEmail
	}
	if req.BillingDetails != nil {
		co.BillingDetails = req.BillingDetails
	}
	if req.Status != nil {
		co.Status = company.Status(*req.Status)
	}

	updated, err := c.CompanyRepository.Update(ctx, co, req.Version)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	return c.response(ctx, updated)
}

// Delete implements company.CompanyService.
// Subtle: this method shadows the method (CompanyRepository).Delete of CompanyServiceImpl.CompanyRepository.
func (c *CompanyServiceImpl) Delete(ctx context.Context, id string) error {
	return c.db.WithinTransaction(ctx, func(ctx context.Context) error {
		count, err := c.users.CountByCompany(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count employees: %w", err)
		}
		if count > 0 {
			return company.ErrCompanyInUse
		}
		if err := c.CompanyRepository.Delete(ctx, id); err != nil {
			return err
		}
		slog.Info("company deleted", "company_id", id)
		return nil
	})
}
