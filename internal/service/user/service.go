package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
)

type UserServiceImpl struct {
	user.UserRepository
	companies company.CompanyRepository
	plans     plan.PlanRepository
}

func NewUserService(userRepository user.UserRepository, companyRepository company.CompanyRepository, planRepository plan.PlanRepository) user.UserService {
	return &UserServiceImpl{
		UserRepository: userRepository,
		companies:      companyRepository,
		plans:          planRepository,
	}
}

// GetProfile implements user.UserService.
func (s *UserServiceImpl) GetProfile(ctx context.Context, userID string) (user.ProfileResponse, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return user.ProfileResponse{}, err
	}
	return s.profile(ctx, u)
}

// UpdateProfile implements user.UserService.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID string, req user.UpdateProfileRequest) (user.ProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return user.ProfileResponse{}, err
	}

	u, err := s.UserRepository.UpdateProfile(ctx, userID, strings.TrimSpace(req.Name))
	if err != nil {
		return user.ProfileResponse{}, err
	}
	return s.profile(ctx, u)
}

func (s *UserServiceImpl) profile(ctx context.Context, u user.User) (user.ProfileResponse, error) {
	resp := user.ProfileResponse{UserResponse: user.NewUserResponse(u)}

	if u.CompanyID != nil {
		c, err := s.companies.GetByID(ctx, *u.CompanyID)
		switch {
		case err == nil:
			resp.CompanyName = &c.Name
		case !errors.Is(err, company.ErrCompanyNotFound):
			return user.ProfileResponse{}, fmt.Errorf("failed to get company: %w", err)
		}
	}

	if u.HasPlan() {
		p, err := s.plans.GetByID(ctx, *u.PlanID)
		switch {
		case err == nil:
			resp.Plan = &user.ProfilePlan{
				ID:               p.ID,
				Name:             p.Name,
				Tier:             string(p.Tier),
				CheckInsPerMonth: p.CheckInsPerMonth,
			}
		case !errors.Is(err, plan.ErrPlanNotFound):
			return user.ProfileResponse{}, fmt.Errorf("failed to get plan: %w", err)
		}
	}

	return resp, nil
}
