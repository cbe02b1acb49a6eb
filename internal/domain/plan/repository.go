package plan

import "context"

type PlanRepository interface {
	Create(ctx context.Context, p Plan) (Plan, error)
	GetByID(ctx context.Context, id string) (Plan, error)
	// List returns plans ordered by monthly price.
	List(ctx context.Context) ([]Plan, error)
	Update(ctx context.Context, p Plan, expectedVersion int) (Plan, error)
	Delete(ctx context.Context, id string) error
}
