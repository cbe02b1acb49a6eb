package plan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/pkg/database"
)

type PlanServiceImpl struct {
	db database.Transactor
	plan.PlanRepository
	users user.UserRepository
}

func NewPlanService(db database.Transactor, planRepository plan.PlanRepository, userRepository user.UserRepository) plan.PlanService {
	return &PlanServiceImpl{
		db:             db,
		PlanRepository: planRepository,
		users:          userRepository,
	}
}

// List implements plan.PlanService.
func (s *PlanServiceImpl) List(ctx context.Context) ([]plan.PlanResponse, error) {
	plans, err := s.PlanRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	out := make([]plan.PlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, plan.NewPlanResponse(p))
	}
	return out, nil
}

// Get implements plan.PlanService.
func (s *PlanServiceImpl) Get(ctx context.Context, id string) (plan.PlanResponse, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return plan.PlanResponse{}, err
	}
	return plan.NewPlanResponse(p), nil
}

// Create implements plan.PlanService.
// Subtle: this method shadows the method (PlanRepository).Create of PlanServiceImpl.PlanRepository.
func (s *PlanServiceImpl) Create(ctx context.Context, req plan.CreatePlanRequest) (plan.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return plan.PlanResponse{}, err
	}

	created, err := s.PlanRepository.Create(ctx, plan.Plan{
		Tier:               plan.Tier(req.Tier),
		Name:               strings.TrimSpace(req.Name),
		MonthlyPrice:       req.MonthlyPrice,
		CheckInsPerMonth:   req.CheckInsPerMonth,
		IncludedCategories: plan.ParseCategories(req.IncludedCategories),
		Description:        req.Description,
		Notes:              req.Notes,
	})
	if err != nil {
		return plan.PlanResponse{}, err
	}

	slog.Info("plan created", "plan_id", created.ID, "tier", created.Tier)
	return plan.NewPlanResponse(created), nil
}

// Update implements plan.PlanService.
// Subtle: this method shadows the method (PlanRepository).Update of PlanServiceImpl.PlanRepository.
func (s *PlanServiceImpl) Update(ctx context.Context, req plan.UpdatePlanRequest) (plan.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return plan.PlanResponse{}, err
	}

	p, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return plan.PlanResponse{}, err
	}

	if req.Tier != nil {
		p.Tier = plan.Tier(*req.Tier)
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.MonthlyPrice != nil {
		p.MonthlyPrice = *req.MonthlyPrice
	}
	if req.CheckInsPerMonth != nil {
		p.CheckInsPerMonth = *req.CheckInsPerMonth
	}
	if req.IncludedCategories != nil {
		p.IncludedCategories = plan.ParseCategories(req.IncludedCategories)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}

	updated, err := s.PlanRepository.Update(ctx, p, req.Version)
	if err != nil {
		return plan.PlanResponse{}, err
	}
	return plan.NewPlanResponse(updated), nil
}

// Delete implements plan.PlanService.
// Subtle: this method shadows the method (PlanRepository).Delete of PlanServiceImpl.PlanRepository.
func (s *PlanServiceImpl) Delete(ctx context.Context, id string) error {
	return s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		count, err := s.users.CountByPlan(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count plan members: %w", err)
		}
		if count > 0 {
			return plan.ErrPlanInUse
		}
		return s.PlanRepository.Delete(ctx, id)
	})
}
