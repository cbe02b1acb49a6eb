package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/pkg/database"
	"github.com/wellpass/wellpass-backend/internal/pkg/ids"
)

const companyColumns = `id, name, code, admin_email, billing_details, status, version, created_at, updated_at`

type companyRepositoryImpl struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepositoryImpl{db: db}
}

func scanCompany(row pgx.Row) (company.Company, error) {
	var c company.Company
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Code,
		&c.AdminEmail,
		&c.BillingDetails,
		&c.Status,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

// Create implements company.CompanyRepository.
func (r *companyRepositoryImpl) Create(ctx context.Context, newCompany company.Company) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	if newCompany.ID == "" {
		newCompany.ID = ids.NewUUID()
	}

	query := `
		INSERT INTO companies (id, name, code, admin_email, billing_details, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, NOW(), NOW())
		RETURNING ` + companyColumns

	created, err := scanCompany(q.QueryRow(ctx, query,
		newCompany.ID,
		newCompany.Name,
		newCompany.Code,
		newCompany.AdminEmail,
		newCompany.BillingDetails,
		newCompany.Status,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return company.Company{}, company.ErrCompanyCodeExists
		}
		return company.Company{}, fmt.Errorf("create company: %w", err)
	}
	return created, nil
}

// GetByID implements company.CompanyRepository.
func (r *companyRepositoryImpl) GetByID(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanCompany(q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		return company.Company{}, notFound(err, company.ErrCompanyNotFound)
	}
	return c, nil
}

// GetByCode implements company.CompanyRepository.
func (r *companyRepositoryImpl) GetByCode(ctx context.Context, code string) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanCompany(q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE code = $1`, code))
	if err != nil {
		return company.Company{}, notFound(err, company.ErrCompanyNotFound)
	}
	return c, nil
}

// List implements company.CompanyRepository.
func (r *companyRepositoryImpl) List(ctx context.Context) ([]company.Company, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []company.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// Update implements company.CompanyRepository.
func (r *companyRepositoryImpl) Update(ctx context.Context, c company.Company, expectedVersion int) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE companies
		SET name = $2, admin_email = $3, billing_details = $4, status = $5,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $6
		RETURNING ` + companyColumns

	updated, err := scanCompany(q.QueryRow(ctx, query,
		c.ID,
		c.Name,
		c.AdminEmail,
		c.BillingDetails,
		c.Status,
		expectedVersion,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return company.Company{}, fmt.Errorf("update company %s: %w", c.ID, err)
	}

	// No row matched: tell a missing company from a stale version.
	if _, getErr := r.GetByID(ctx, c.ID); getErr != nil {
		return company.Company{}, getErr
	}
	return company.Company{}, company.ErrCompanyVersionConflict
}

// Delete implements company.CompanyRepository.
func (r *companyRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return company.ErrCompanyInUse
		}
		return fmt.Errorf("delete company %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}

// CountActive implements company.CompanyRepository.
func (r *companyRepositoryImpl) CountActive(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM companies WHERE status = $1`, company.StatusActive).Scan(&n)
	return n, err
}
