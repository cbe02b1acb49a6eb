package plan

import "context"

type PlanService interface {
	List(ctx context.Context) ([]PlanResponse, error)
	Get(ctx context.Context, id string) (PlanResponse, error)
	Create(ctx context.Context, req CreatePlanRequest) (PlanResponse, error)
	// Update fails with ErrPlanVersionConflict when req.Version is stale.
	Update(ctx context.Context, req UpdatePlanRequest) (PlanResponse, error)
	Delete(ctx context.Context, id string) error
}
