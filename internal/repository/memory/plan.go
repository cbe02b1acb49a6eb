package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/pkg/ids"
)

type planRepository struct {
	s *Store
}

func NewPlanRepository(s *Store) plan.PlanRepository {
	return &planRepository{s: s}
}

func copyPlan(p plan.Plan) plan.Plan {
	p.IncludedCategories = slices.Clone(p.IncludedCategories)
	p.Notes = cloneString(p.Notes)
	return p
}

func (r *planRepository) Create(ctx context.Context, p plan.Plan) (plan.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.ID == "" {
		p.ID = ids.NewUUID()
	}
	now := r.s.now()
	p.Version = 1
	p.CreatedAt, p.UpdatedAt = now, now

	r.s.plans[p.ID] = copyPlan(p)
	return copyPlan(p), nil
}

func (r *planRepository) GetByID(ctx context.Context, id string) (plan.Plan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.plans[id]
	if !ok {
		return plan.Plan{}, plan.ErrPlanNotFound
	}
	return copyPlan(p), nil
}

func (r *planRepository) List(ctx context.Context) ([]plan.Plan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]plan.Plan, 0, len(r.s.plans))
	for _, p := range r.s.plans {
		out = append(out, copyPlan(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].MonthlyPrice.Cmp(out[j].MonthlyPrice); c != 0 {
			return c < 0
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *planRepository) Update(ctx context.Context, p plan.Plan, expectedVersion int) (plan.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.plans[p.ID]
	if !ok {
		return plan.Plan{}, plan.ErrPlanNotFound
	}
	if stored.Version != expectedVersion {
		return plan.Plan{}, plan.ErrPlanVersionConflict
	}
	p.CreatedAt = stored.CreatedAt
	p.Version = stored.Version + 1
	p.UpdatedAt = r.s.now()

	r.s.plans[p.ID] = copyPlan(p)
	return copyPlan(p), nil
}

func (r *planRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.plans[id]; !ok {
		return plan.ErrPlanNotFound
	}
	delete(r.s.plans, id)
	return nil
}
