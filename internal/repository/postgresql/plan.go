package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/pkg/database"
	"github.com/wellpass/wellpass-backend/internal/pkg/ids"
)

const planColumns = `id, tier, name, monthly_price, check_ins_per_month, included_categories,
	description, notes, version, created_at, updated_at`

type planRepositoryImpl struct {
	db *database.DB
}

func NewPlanRepository(db *database.DB) plan.PlanRepository {
	return &planRepositoryImpl{db: db}
}

func scanPlan(row pgx.Row) (plan.Plan, error) {
	var (
		p          plan.Plan
		categories []string
	)
	err := row.Scan(
		&p.ID,
		&p.Tier,
		&p.Name,
		&p.MonthlyPrice,
		&p.CheckInsPerMonth,
		&categories,
		&p.Description,
		&p.Notes,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return plan.Plan{}, err
	}
	for _, c := range categories {
		p.IncludedCategories = append(p.IncludedCategories, partner.Type(c))
	}
	return p, nil
}

func categoryStrings(types []partner.Type) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}

// Create implements plan.PlanRepository.
func (r *planRepositoryImpl) Create(ctx context.Context, p plan.Plan) (plan.Plan, error) {
	q := GetQuerier(ctx, r.db)

	if p.ID == "" {
		p.ID = ids.NewUUID()
	}

	query := `
		INSERT INTO plans (
			id, tier, name, monthly_price, check_ins_per_month, included_categories,
			description, notes, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, NOW(), NOW())
		RETURNING ` + planColumns

	created, err := scanPlan(q.QueryRow(ctx, query,
		p.ID,
		p.Tier,
		p.Name,
		p.MonthlyPrice,
		p.CheckInsPerMonth,
		categoryStrings(p.IncludedCategories),
		p.Description,
		p.Notes,
	))
	if err != nil {
		return plan.Plan{}, fmt.Errorf("create plan: %w", err)
	}
	return created, nil
}

// GetByID implements plan.PlanRepository.
func (r *planRepositoryImpl) GetByID(ctx context.Context, id string) (plan.Plan, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPlan(q.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
	if err != nil {
		return plan.Plan{}, notFound(err, plan.ErrPlanNotFound)
	}
	return p, nil
}

// List implements plan.PlanRepository.
func (r *planRepositoryImpl) List(ctx context.Context) ([]plan.Plan, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+planColumns+` FROM plans ORDER BY monthly_price, name`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []plan.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Update implements plan.PlanRepository.
func (r *planRepositoryImpl) Update(ctx context.Context, p plan.Plan, expectedVersion int) (plan.Plan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE plans
		SET tier = $2, name = $3, monthly_price = $4, check_ins_per_month = $5,
			included_categories = $6, description = $7, notes = $8,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $9
		RETURNING ` + planColumns

	updated, err := scanPlan(q.QueryRow(ctx, query,
		p.ID,
		p.Tier,
		p.Name,
		p.MonthlyPrice,
		p.CheckInsPerMonth,
		categoryStrings(p.IncludedCategories),
		p.Description,
		p.Notes,
		expectedVersion,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return plan.Plan{}, fmt.Errorf("update plan %s: %w", p.ID, err)
	}
	if _, getErr := r.GetByID(ctx, p.ID); getErr != nil {
		return plan.Plan{}, getErr
	}
	return plan.Plan{}, plan.ErrPlanVersionConflict
}

// Delete implements plan.PlanRepository.
func (r *planRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return plan.ErrPlanInUse
		}
		return fmt.Errorf("delete plan %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return plan.ErrPlanNotFound
	}
	return nil
}
