package company

import "context"

type CompanyRepository interface {
	Create(ctx context.Context, newCompany Company) (Company, error)
	GetByID(ctx context.Context, id string) (Company, error)
	GetByCode(ctx context.Context, code string) (Company, error)
	List(ctx context.Context) ([]Company, error)
	// Update stores c when the stored version equals expectedVersion and bumps the version.
	Update(ctx context.Context, c Company, expectedVersion int) (Company, error)
	Delete(ctx context.Context, id string) error
	CountActive(ctx context.Context) (int64, error)
}
